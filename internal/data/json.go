package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mohamedkhairy/trading-rules/internal/models"
)

// Field names accepted for each bar attribute, first match wins
var (
	timestampFields = []string{"timestamp", "t", "time", "date"}
	openFields      = []string{"open", "o"}
	highFields      = []string{"high", "h"}
	lowFields       = []string{"low", "l"}
	closeFields     = []string{"close", "c"}
	volumeFields    = []string{"volume", "v"}
	symbolFields    = []string{"symbol", "S", "sym"}
)

// JSONSource reads bars from a JSON array or from newline-delimited JSON
// objects. Field names follow the common vendor spellings (close or c, ...).
type JSONSource struct {
	path   string
	symbol string
	period time.Duration
}

// NewJSONSource creates a JSON source
func NewJSONSource(config SourceConfig) (Source, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("json source requires a path")
	}
	return &JSONSource{
		path:   config.Path,
		symbol: config.Symbol,
		period: config.Period,
	}, nil
}

// Name returns "json"
func (s *JSONSource) Name() string {
	return "json"
}

// Load reads and parses the whole file
func (s *JSONSource) Load(ctx context.Context) ([]*models.Bar, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	return ReadJSON(ctx, f, s.symbol, s.period)
}

// ReadJSON parses JSON bars from r. symbol is used for objects that carry none.
func ReadJSON(ctx context.Context, r io.Reader, symbol string, period time.Duration) ([]*models.Bar, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var objects []map[string]interface{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &objects); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
	} else {
		decoder := json.NewDecoder(bytes.NewReader(trimmed))
		for decoder.More() {
			var object map[string]interface{}
			if err := decoder.Decode(&object); err != nil {
				return nil, fmt.Errorf("%w: object %d: %v", ErrInvalidRecord, len(objects)+1, err)
			}
			objects = append(objects, object)
		}
	}

	bars := make([]*models.Bar, 0, len(objects))
	for i, object := range objects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bar, err := normalizeBar(object, symbol, period)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i+1, err)
		}
		bars = append(bars, bar)
	}

	fillPeriods(bars, period)
	return bars, nil
}

func normalizeBar(data map[string]interface{}, symbol string, period time.Duration) (*models.Bar, error) {
	bar := &models.Bar{Symbol: symbol, Period: period}

	if s, ok := lookupString(data, symbolFields); ok && s != "" {
		bar.Symbol = strings.ToUpper(s)
	}
	if bar.Symbol == "" {
		return nil, fmt.Errorf("%w: missing symbol", ErrInvalidRecord)
	}

	ts, err := lookupTimestamp(data)
	if err != nil {
		return nil, err
	}
	bar.Timestamp = ts

	prices := []struct {
		target *float64
		fields []string
	}{
		{&bar.Open, openFields},
		{&bar.High, highFields},
		{&bar.Low, lowFields},
		{&bar.Close, closeFields},
	}
	for _, p := range prices {
		v, ok, err := lookupFloat(data, p.fields)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidRecord, p.fields[0])
		}
		*p.target = v
	}

	volume, _, err := lookupFloat(data, volumeFields)
	if err != nil {
		return nil, err
	}
	bar.Volume = volume

	if err := bar.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return bar, nil
}

func lookupString(data map[string]interface{}, fields []string) (string, bool) {
	for _, field := range fields {
		if s, ok := data[field].(string); ok {
			return s, true
		}
	}
	return "", false
}

func lookupFloat(data map[string]interface{}, fields []string) (float64, bool, error) {
	for _, field := range fields {
		switch v := data[field].(type) {
		case float64:
			return v, true, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return 0, false, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, field, err)
			}
			return f, true, nil
		}
	}
	return 0, false, nil
}

func lookupTimestamp(data map[string]interface{}) (time.Time, error) {
	for _, field := range timestampFields {
		switch v := data[field].(type) {
		case string:
			return ParseTimestamp(v)
		case float64:
			return ParseTimestamp(strconv.FormatInt(int64(v), 10))
		}
	}
	return time.Time{}, fmt.Errorf("%w: missing timestamp", ErrInvalidRecord)
}
