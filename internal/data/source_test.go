package data

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFactory(t *testing.T) {
	factory := NewSourceFactory()
	assert.Equal(t, []string{"csv", "json", "mock"}, factory.List())

	source, err := factory.Create("mock", SourceConfig{Bars: 3})
	require.NoError(t, err)
	assert.Equal(t, "mock", source.Name())

	_, err = factory.Create("kafka", SourceConfig{})
	assert.ErrorIs(t, err, ErrUnknownSource)

	err = factory.Register("csv", NewCSVSource)
	assert.Error(t, err, "duplicate registration")
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"timestamp,open,high,low,close,volume",
		"2024-01-02 09:30:00,100,101,99,100.5,1000",
		"# comment",
		"2024-01-02T09:31:00Z,100.5,102,100,101.5,1200",
		"1704188040,101.5,103,101,102,",
	}, "\n")

	// The empty trailing volume field is rejected
	_, err := ReadCSV(context.Background(), strings.NewReader(input), "AAPL", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "line 5")

	input = strings.TrimSuffix(input, ",") + ",900"
	bars, err := ReadCSV(context.Background(), strings.NewReader(input), "AAPL", 0)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, "AAPL", bars[0].Symbol)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), bars[0].Timestamp)
	assert.Equal(t, 102.0, bars[1].High)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 34, 0, 0, time.UTC), bars[2].Timestamp)
	assert.Equal(t, 900.0, bars[2].Volume)
	// Inferred from the smallest gap
	assert.Equal(t, time.Minute, bars[0].Period)
}

func TestReadCSV_NoHeaderNoVolume(t *testing.T) {
	input := "2024-01-02,10,11,9,10.5\n2024-01-03,10.5,12,10,11\n"
	bars, err := ReadCSV(context.Background(), strings.NewReader(input), "X", 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 0.0, bars[0].Volume)
	assert.Equal(t, 24*time.Hour, bars[1].Period)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few fields", "2024-01-02,1,2,3\n"},
		{"bad timestamp", "yesterday,1,2,1,1.5\n"},
		{"bad number", "2024-01-02,1,x,1,1.5\n"},
		{"high below low", "2024-01-02,1,1,2,1.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(context.Background(), strings.NewReader(tt.input), "X", 0)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"2024-01-02", "2024-01-02T00:00:00Z", "2024-01-02 00:00:00", "1704153600", "1704153600000"} {
		ts, err := ParseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(ts), raw)
	}
}

func TestReadJSON(t *testing.T) {
	array := `[
		{"t": "2024-01-02T09:30:00Z", "o": 1, "h": 2, "l": 0.5, "c": 1.5, "v": 10},
		{"timestamp": 1704187860, "open": "1.5", "high": 2.5, "low": 1, "close": 2}
	]`
	bars, err := ReadJSON(context.Background(), strings.NewReader(array), "aapl", 0)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "aapl", bars[0].Symbol)
	assert.Equal(t, 1.5, bars[1].Open)
	assert.Equal(t, 0.0, bars[1].Volume)
	assert.Equal(t, time.Minute, bars[0].Period)

	ndjson := `{"S": "msft", "t": "2024-01-02", "o": 1, "h": 1, "l": 1, "c": 1}
{"S": "msft", "t": "2024-01-03", "o": 1, "h": 1, "l": 1, "c": 1}`
	bars, err = ReadJSON(context.Background(), strings.NewReader(ndjson), "", 0)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "MSFT", bars[1].Symbol)
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing close", `[{"t": "2024-01-02", "o": 1, "h": 1, "l": 1}]`},
		{"missing timestamp", `[{"o": 1, "h": 1, "l": 1, "c": 1}]`},
		{"missing symbol", `[{"t": "2024-01-02", "o": 1, "h": 1, "l": 1, "c": 1}]`},
		{"bad price", `[{"S": "X", "t": "2024-01-02", "o": "one", "h": 1, "l": 1, "c": 1}]`},
		{"malformed", `[{"t": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbol := "X"
			if tt.name == "missing symbol" {
				symbol = ""
			}
			_, err := ReadJSON(context.Background(), strings.NewReader(tt.input), symbol, 0)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestMockSource_Deterministic(t *testing.T) {
	config := SourceConfig{Symbol: "SPY", Bars: 50, Seed: 7, Period: 5 * time.Minute}

	first, err := NewMockSource(config)
	require.NoError(t, err)
	second, err := NewMockSource(config)
	require.NoError(t, err)

	a, err := first.Load(context.Background())
	require.NoError(t, err)
	b, err := second.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, a, 50)
	assert.Equal(t, a, b)

	for i, bar := range a {
		require.NoError(t, bar.Validate())
		assert.GreaterOrEqual(t, bar.High, bar.Close)
		assert.LessOrEqual(t, bar.Low, bar.Close)
		if i > 0 {
			assert.Equal(t, 5*time.Minute, bar.Timestamp.Sub(a[i-1].Timestamp))
		}
	}

	_, err = NewMockSource(SourceConfig{})
	assert.Error(t, err)
}

func TestMockSource_Canceled(t *testing.T) {
	source, err := NewMockSource(SourceConfig{Bars: 10})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = source.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte("2024-01-02,1,2,1,1.5,10\n2024-01-03,1.5,2,1,1.8,10\n"), 0o600))

	source, err := NewCSVSource(SourceConfig{Path: path, Symbol: "X"})
	require.NoError(t, err)

	series, err := LoadSeries(context.Background(), source, "X")
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())
	assert.Equal(t, 1.8, series.LastBar().Close)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("timestamp,open,high,low,close\n"), 0o600))
	source, err = NewCSVSource(SourceConfig{Path: empty, Symbol: "X"})
	require.NoError(t, err)
	_, err = LoadSeries(context.Background(), source, "X")
	assert.ErrorIs(t, err, ErrNoBars)

	source, err = NewCSVSource(SourceConfig{Path: filepath.Join(t.TempDir(), "missing.csv"), Symbol: "X"})
	require.NoError(t, err)
	_, err = LoadSeries(context.Background(), source, "X")
	assert.Error(t, err)

	_, err = NewCSVSource(SourceConfig{Symbol: "X"})
	assert.Error(t, err)
}
