package data

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
)

var (
	// ErrUnknownSource is returned for an unregistered source type
	ErrUnknownSource = errors.New("unknown bar source")
	// ErrInvalidRecord is returned when a bar record cannot be parsed
	ErrInvalidRecord = errors.New("invalid bar record")
	// ErrNoBars is returned when a source yields no bars
	ErrNoBars = errors.New("source contains no bars")
)

// Source loads historical bars for a single symbol, oldest first
type Source interface {
	Load(ctx context.Context) ([]*models.Bar, error)

	// Name returns the source type (e.g. "csv", "json", "mock")
	Name() string
}

// SourceConfig holds the settings shared by all sources
type SourceConfig struct {
	Path   string
	Symbol string
	// Period is the bar duration, used when the data does not carry one
	Period time.Duration
	// Bars and Seed drive the mock source
	Bars int
	Seed int64
}

// SourceFactory creates sources by type name
type SourceFactory struct {
	factories map[string]func(SourceConfig) (Source, error)
}

// NewSourceFactory creates a factory with the built-in sources registered
func NewSourceFactory() *SourceFactory {
	factory := &SourceFactory{
		factories: make(map[string]func(SourceConfig) (Source, error)),
	}

	factory.Register("csv", NewCSVSource)
	factory.Register("json", NewJSONSource)
	factory.Register("mock", NewMockSource)

	return factory
}

// Create creates a source of the given type
func (f *SourceFactory) Create(sourceType string, config SourceConfig) (Source, error) {
	factoryFunc, exists := f.factories[sourceType]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, sourceType)
	}
	return factoryFunc(config)
}

// Register registers a source constructor under sourceType
func (f *SourceFactory) Register(sourceType string, factoryFunc func(SourceConfig) (Source, error)) error {
	if _, exists := f.factories[sourceType]; exists {
		return fmt.Errorf("source type already registered: %s", sourceType)
	}
	f.factories[sourceType] = factoryFunc
	return nil
}

// List returns the registered source types in sorted order
func (f *SourceFactory) List() []string {
	sources := make([]string, 0, len(f.factories))
	for sourceType := range f.factories {
		sources = append(sources, sourceType)
	}
	sort.Strings(sources)
	return sources
}

// LoadSeries loads every bar of source into a new series
func LoadSeries(ctx context.Context, source Source, name string) (*indicator.BarSeries, error) {
	bars, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s bars: %w", source.Name(), err)
	}
	if len(bars) == 0 {
		return nil, ErrNoBars
	}

	series, err := indicator.NewBarSeries(name, bars...)
	if err != nil {
		return nil, fmt.Errorf("failed to build series %s: %w", name, err)
	}
	return series, nil
}
