package models

import "fmt"

// Position is one round trip: an entry trade and, once closed, an exit trade.
// The exit side is always the opposite of the entry side.
type Position struct {
	startingSide TradeSide
	costModel    CostModel
	entry        *Trade
	exit         *Trade
}

// NewPosition creates a new (not yet entered) position
func NewPosition(startingSide TradeSide, costModel CostModel) *Position {
	if costModel == nil {
		costModel = ZeroCostModel{}
	}
	return &Position{
		startingSide: startingSide,
		costModel:    costModel,
	}
}

// Entry returns the entry trade, or nil for a new position
func (p *Position) Entry() *Trade {
	if p == nil {
		return nil
	}
	return p.entry
}

// Exit returns the exit trade, or nil while the position is not closed
func (p *Position) Exit() *Trade {
	if p == nil {
		return nil
	}
	return p.exit
}

// StartingSide returns the side of the entry trade
func (p *Position) StartingSide() TradeSide {
	return p.startingSide
}

// IsNew reports whether the position has no entry yet
func (p *Position) IsNew() bool {
	return p == nil || p.entry == nil
}

// IsOpened reports whether the position has been entered but not exited
func (p *Position) IsOpened() bool {
	return p != nil && p.entry != nil && p.exit == nil
}

// IsClosed reports whether both entry and exit are present
func (p *Position) IsClosed() bool {
	return p != nil && p.entry != nil && p.exit != nil
}

// Operate fills the entry of a new position or the exit of an opened one.
// It returns the created trade, or nil when the position is already closed or
// the index precedes the entry.
func (p *Position) Operate(index int, price, amount float64) *Trade {
	switch {
	case p.IsNew():
		p.entry = NewTrade(index, p.startingSide, price, amount, p.costModel)
		return p.entry
	case p.IsOpened():
		if index < p.entry.Index {
			return nil
		}
		p.exit = NewTrade(index, p.startingSide.Opposite(), price, amount, p.costModel)
		return p.exit
	default:
		return nil
	}
}

// GrossProfit returns the profit of a closed position before costs
func (p *Position) GrossProfit() float64 {
	if !p.IsClosed() {
		return 0
	}
	diff := p.exit.Price*p.exit.Amount - p.entry.Price*p.entry.Amount
	if p.entry.IsSell() {
		return -diff
	}
	return diff
}

// Profit returns the profit of a closed position net of transaction costs
func (p *Position) Profit() float64 {
	if !p.IsClosed() {
		return 0
	}
	diff := p.exit.NetPrice*p.exit.Amount - p.entry.NetPrice*p.entry.Amount
	if p.entry.IsSell() {
		return -diff
	}
	return diff
}

func (p *Position) String() string {
	return fmt.Sprintf("Position{entry: %v, exit: %v}", p.Entry(), p.Exit())
}
