package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBar_Validate(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		bar     *Bar
		wantErr error
	}{
		{
			name: "valid bar",
			bar:  &Bar{Symbol: "AAPL", Timestamp: now, Period: time.Minute, Open: 1, High: 2, Low: 1, Close: 1.5, Volume: 10},
		},
		{
			name:    "missing symbol",
			bar:     &Bar{Timestamp: now, High: 2, Low: 1},
			wantErr: ErrInvalidSymbol,
		},
		{
			name:    "missing timestamp",
			bar:     &Bar{Symbol: "AAPL", High: 2, Low: 1},
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "high below low",
			bar:     &Bar{Symbol: "AAPL", Timestamp: now, High: 1, Low: 2},
			wantErr: ErrInvalidBar,
		},
		{
			name:    "negative volume",
			bar:     &Bar{Symbol: "AAPL", Timestamp: now, High: 2, Low: 1, Volume: -1},
			wantErr: ErrInvalidVolume,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bar.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBar_EndTime(t *testing.T) {
	start := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	bar := &Bar{Timestamp: start, Period: 5 * time.Minute}
	assert.Equal(t, start.Add(5*time.Minute), bar.EndTime())
}

func TestParseTradeSide(t *testing.T) {
	side, err := ParseTradeSide("Long")
	require.NoError(t, err)
	assert.Equal(t, Buy, side)

	side, err = ParseTradeSide(" sell ")
	require.NoError(t, err)
	assert.Equal(t, Sell, side)

	_, err = ParseTradeSide("hold")
	assert.ErrorIs(t, err, ErrInvalidSide)

	assert.Equal(t, Sell, Buy.Opposite())
	assert.Equal(t, Buy, Sell.Opposite())
}

func TestNewTrade_NetPrice(t *testing.T) {
	linear, err := NewLinearCostModel(0.01)
	require.NoError(t, err)

	buy := NewTrade(3, Buy, 100, 2, linear)
	assert.InDelta(t, 2.0, buy.Cost, 1e-9)
	assert.InDelta(t, 101.0, buy.NetPrice, 1e-9)

	sell := NewTrade(4, Sell, 100, 2, linear)
	assert.InDelta(t, 99.0, sell.NetPrice, 1e-9)

	fixed, err := NewFixedCostModel(1)
	require.NoError(t, err)
	buy = NewTrade(0, Buy, 100, 1, fixed)
	assert.InDelta(t, 101.0, buy.NetPrice, 1e-9)

	zeroAmount := NewTrade(0, Buy, 100, 0, fixed)
	assert.Equal(t, 100.0, zeroAmount.NetPrice)

	noModel := NewTrade(0, Sell, 50, 1, nil)
	assert.Equal(t, 50.0, noModel.NetPrice)
	assert.True(t, noModel.IsSell())
	assert.False(t, noModel.IsBuy())
}

func TestCostModels_RejectNegative(t *testing.T) {
	_, err := NewLinearCostModel(-0.1)
	assert.ErrorIs(t, err, ErrInvalidCostRate)

	_, err = NewFixedCostModel(-1)
	assert.ErrorIs(t, err, ErrInvalidCostRate)
}

func TestPosition_Lifecycle(t *testing.T) {
	p := NewPosition(Buy, nil)
	assert.True(t, p.IsNew())
	assert.False(t, p.IsOpened())
	assert.False(t, p.IsClosed())

	entry := p.Operate(2, 100, 1)
	require.NotNil(t, entry)
	assert.Equal(t, Buy, entry.Side)
	assert.True(t, p.IsOpened())

	// Exit cannot precede the entry
	assert.Nil(t, p.Operate(1, 110, 1))

	exit := p.Operate(5, 110, 1)
	require.NotNil(t, exit)
	assert.Equal(t, Sell, exit.Side)
	assert.True(t, p.IsClosed())
	assert.InDelta(t, 10.0, p.GrossProfit(), 1e-9)
	assert.InDelta(t, 10.0, p.Profit(), 1e-9)

	// A closed position accepts no more trades
	assert.Nil(t, p.Operate(6, 120, 1))
}

func TestPosition_ShortProfit(t *testing.T) {
	fixed, err := NewFixedCostModel(1)
	require.NoError(t, err)

	p := NewPosition(Sell, fixed)
	p.Operate(0, 100, 1)
	p.Operate(1, 90, 1)

	assert.InDelta(t, 10.0, p.GrossProfit(), 1e-9)
	// entry net 99, exit net 91
	assert.InDelta(t, 8.0, p.Profit(), 1e-9)
}

func TestPosition_NilSafe(t *testing.T) {
	var p *Position
	assert.True(t, p.IsNew())
	assert.False(t, p.IsOpened())
	assert.False(t, p.IsClosed())
	assert.Nil(t, p.Entry())
	assert.Nil(t, p.Exit())
}

func TestTradingRecord_Operate(t *testing.T) {
	record := NewTradingRecord(Buy, nil)
	assert.True(t, record.IsClosed())
	assert.Nil(t, record.LastTrade())

	require.True(t, record.Enter(1, 100, 1))
	assert.False(t, record.IsClosed())
	assert.False(t, record.Enter(2, 101, 1), "already opened")

	require.True(t, record.Exit(3, 105, 1))
	assert.True(t, record.IsClosed())
	assert.False(t, record.Exit(4, 106, 1), "nothing to exit")

	// Exit and re-entry on the same bar are allowed
	require.True(t, record.Enter(3, 104, 1))
	// Going back in time is not
	assert.False(t, record.Operate(2, 103, 1))

	require.Len(t, record.Positions(), 1)
	require.Len(t, record.Trades(), 3)

	assert.Equal(t, 3, record.LastTrade().Index)
	assert.Equal(t, 104.0, record.LastEntry().Price)
	assert.Equal(t, 105.0, record.LastExit().Price)
	assert.Equal(t, Buy, record.LastTradeOf(Buy).Side)
	assert.Equal(t, 3, record.CurrentPosition().Entry().Index)
}

func TestTradingRecord_SellSide(t *testing.T) {
	record := NewTradingRecord(Sell, nil)
	record.Operate(0, 50, 2)
	record.Operate(4, 40, 2)

	assert.Equal(t, Sell, record.LastEntry().Side)
	assert.Equal(t, Buy, record.LastExit().Side)
	assert.InDelta(t, 20.0, record.Positions()[0].Profit(), 1e-9)
}

func TestTradingRecord_NilSafe(t *testing.T) {
	var record *TradingRecord
	assert.True(t, record.IsClosed())
	assert.Nil(t, record.CurrentPosition())
	assert.Nil(t, record.Positions())
	assert.Nil(t, record.Trades())
	assert.Nil(t, record.LastTrade())
	assert.Nil(t, record.LastEntry())
	assert.Nil(t, record.LastTradeOf(Sell))
	assert.Equal(t, Buy, record.StartingSide())
}
