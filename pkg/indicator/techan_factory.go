package indicator

import (
	"fmt"

	"github.com/sdcoffey/techan"
)

// NewClosePrice creates the close price indicator of a series
func NewClosePrice(series *BarSeries) (*TechanIndicator, error) {
	if series == nil {
		return nil, ErrNilSeries
	}
	return NewTechanIndicator("close", series, techan.NewClosePriceIndicator(series.Techan()), 0)
}

// NewOpenPrice creates the open price indicator of a series
func NewOpenPrice(series *BarSeries) (*TechanIndicator, error) {
	if series == nil {
		return nil, ErrNilSeries
	}
	return NewTechanIndicator("open", series, techan.NewOpenPriceIndicator(series.Techan()), 0)
}

// NewHighPrice creates the high price indicator of a series
func NewHighPrice(series *BarSeries) (*TechanIndicator, error) {
	if series == nil {
		return nil, ErrNilSeries
	}
	return NewTechanIndicator("high", series, techan.NewHighPriceIndicator(series.Techan()), 0)
}

// NewLowPrice creates the low price indicator of a series
func NewLowPrice(series *BarSeries) (*TechanIndicator, error) {
	if series == nil {
		return nil, ErrNilSeries
	}
	return NewTechanIndicator("low", series, techan.NewLowPriceIndicator(series.Techan()), 0)
}

// NewVolume creates the volume indicator of a series
func NewVolume(series *BarSeries) (*TechanIndicator, error) {
	if series == nil {
		return nil, ErrNilSeries
	}
	return NewTechanIndicator("volume", series, techan.NewVolumeIndicator(series.Techan()), 0)
}

// NewTypicalPrice creates the (high+low+close)/3 indicator of a series
func NewTypicalPrice(series *BarSeries) (*TechanIndicator, error) {
	if series == nil {
		return nil, ErrNilSeries
	}
	return NewTechanIndicator("typical", series, techan.NewTypicalPriceIndicator(series.Techan()), 0)
}

// NewSMA creates a simple moving average of the close price
func NewSMA(series *BarSeries, window int) (*TechanIndicator, error) {
	if err := checkWindowed(series, window); err != nil {
		return nil, err
	}
	closePrice := techan.NewClosePriceIndicator(series.Techan())
	return NewTechanIndicator(
		fmt.Sprintf("sma_%d", window),
		series,
		techan.NewSimpleMovingAverage(closePrice, window),
		window-1,
	)
}

// NewEMA creates an exponential moving average of the close price
func NewEMA(series *BarSeries, window int) (*TechanIndicator, error) {
	if err := checkWindowed(series, window); err != nil {
		return nil, err
	}
	closePrice := techan.NewClosePriceIndicator(series.Techan())
	return NewTechanIndicator(
		fmt.Sprintf("ema_%d", window),
		series,
		techan.NewEMAIndicator(closePrice, window),
		window-1,
	)
}

// NewRSI creates a relative strength index of the close price
func NewRSI(series *BarSeries, window int) (*TechanIndicator, error) {
	if err := checkWindowed(series, window); err != nil {
		return nil, err
	}
	closePrice := techan.NewClosePriceIndicator(series.Techan())
	return NewTechanIndicator(
		fmt.Sprintf("rsi_%d", window),
		series,
		techan.NewRelativeStrengthIndexIndicator(closePrice, window),
		window,
	)
}

// NewATR creates an average true range over window bars
func NewATR(series *BarSeries, window int) (*TechanIndicator, error) {
	if err := checkWindowed(series, window); err != nil {
		return nil, err
	}
	return NewTechanIndicator(
		fmt.Sprintf("atr_%d", window),
		series,
		techan.NewAverageTrueRangeIndicator(series.Techan(), window),
		window,
	)
}

// NewStdDev creates a windowed standard deviation of the close price
func NewStdDev(series *BarSeries, window int) (*TechanIndicator, error) {
	if err := checkWindowed(series, window); err != nil {
		return nil, err
	}
	closePrice := techan.NewClosePriceIndicator(series.Techan())
	return NewTechanIndicator(
		fmt.Sprintf("stddev_%d", window),
		series,
		techan.NewWindowedStandardDeviationIndicator(closePrice, window),
		window-1,
	)
}

func checkWindowed(series *BarSeries, window int) error {
	if series == nil {
		return ErrNilSeries
	}
	if window < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	return nil
}
