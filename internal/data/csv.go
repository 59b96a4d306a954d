package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mohamedkhairy/trading-rules/internal/models"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CSVSource reads bars from a file with the columns
// timestamp,open,high,low,close[,volume]. A header row is optional.
type CSVSource struct {
	path   string
	symbol string
	period time.Duration
}

// NewCSVSource creates a CSV source
func NewCSVSource(config SourceConfig) (Source, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("csv source requires a path")
	}
	if config.Symbol == "" {
		return nil, fmt.Errorf("csv source requires a symbol")
	}
	return &CSVSource{
		path:   config.Path,
		symbol: config.Symbol,
		period: config.Period,
	}, nil
}

// Name returns "csv"
func (s *CSVSource) Name() string {
	return "csv"
}

// Load reads and parses the whole file
func (s *CSVSource) Load(ctx context.Context) ([]*models.Bar, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	return ReadCSV(ctx, f, s.symbol, s.period)
}

// ReadCSV parses CSV bars from r
func ReadCSV(ctx context.Context, r io.Reader, symbol string, period time.Duration) ([]*models.Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var bars []*models.Bar
	for first := true; ; first = false {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if first && isHeader(record) {
			continue
		}

		bar, err := parseRecord(record, symbol, period)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	fillPeriods(bars, period)
	return bars, nil
}

func isHeader(record []string) bool {
	if len(record) < 2 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	return err != nil
}

func parseRecord(record []string, symbol string, period time.Duration) (*models.Bar, error) {
	if len(record) < 5 {
		return nil, fmt.Errorf("%w: expected at least 5 fields, got %d", ErrInvalidRecord, len(record))
	}

	ts, err := ParseTimestamp(record[0])
	if err != nil {
		return nil, err
	}

	values := make([]float64, 5)
	for i := 1; i < len(record) && i <= 5; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %v", ErrInvalidRecord, i+1, err)
		}
		values[i-1] = v
	}

	bar := &models.Bar{
		Symbol:    symbol,
		Timestamp: ts,
		Period:    period,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}
	if err := bar.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return bar, nil
}

// ParseTimestamp accepts RFC3339, "2006-01-02 15:04:05", "2006-01-02" or unix
// seconds/milliseconds
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		// Millisecond timestamps are past year 2286 in seconds
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q", ErrInvalidRecord, raw)
}

// fillPeriods sets the period of every bar to the smallest gap between
// consecutive timestamps when none was configured
func fillPeriods(bars []*models.Bar, period time.Duration) {
	if period > 0 || len(bars) < 2 {
		return
	}
	var inferred time.Duration
	for i := 1; i < len(bars); i++ {
		gap := bars[i].Timestamp.Sub(bars[i-1].Timestamp)
		if gap > 0 && (inferred == 0 || gap < inferred) {
			inferred = gap
		}
	}
	if inferred == 0 {
		return
	}
	for _, bar := range bars {
		if bar.Period == 0 {
			bar.Period = inferred
		}
	}
}
