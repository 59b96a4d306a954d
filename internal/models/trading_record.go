package models

// TradingRecord is the history of a strategy run: the closed positions plus
// the current one. All query methods accept a nil receiver.
type TradingRecord struct {
	startingSide TradeSide
	costModel    CostModel
	positions    []*Position
	trades       []*Trade
	current      *Position
}

// NewTradingRecord creates an empty record whose positions open with startingSide
func NewTradingRecord(startingSide TradeSide, costModel CostModel) *TradingRecord {
	if costModel == nil {
		costModel = ZeroCostModel{}
	}
	return &TradingRecord{
		startingSide: startingSide,
		costModel:    costModel,
		current:      NewPosition(startingSide, costModel),
	}
}

// StartingSide returns the entry side of every position in the record
func (r *TradingRecord) StartingSide() TradeSide {
	return r.entrySide()
}

// CurrentPosition returns the position being built, or nil for a nil record
func (r *TradingRecord) CurrentPosition() *Position {
	if r == nil {
		return nil
	}
	return r.current
}

// IsClosed reports whether the current position has no entry
func (r *TradingRecord) IsClosed() bool {
	return r == nil || r.current.IsNew()
}

// Operate enters when the current position is new and exits when it is opened.
// Trades must not go back in time.
func (r *TradingRecord) Operate(index int, price, amount float64) bool {
	if last := r.LastTrade(); last != nil && index < last.Index {
		return false
	}

	trade := r.current.Operate(index, price, amount)
	if trade == nil {
		return false
	}
	r.trades = append(r.trades, trade)

	if r.current.IsClosed() {
		r.positions = append(r.positions, r.current)
		r.current = NewPosition(r.startingSide, r.costModel)
	}
	return true
}

// Enter opens a position; it is a no-op returning false if one is already open
func (r *TradingRecord) Enter(index int, price, amount float64) bool {
	if !r.current.IsNew() {
		return false
	}
	return r.Operate(index, price, amount)
}

// Exit closes the current position; it is a no-op returning false if none is open
func (r *TradingRecord) Exit(index int, price, amount float64) bool {
	if !r.current.IsOpened() {
		return false
	}
	return r.Operate(index, price, amount)
}

// Positions returns the closed positions in order
func (r *TradingRecord) Positions() []*Position {
	if r == nil {
		return nil
	}
	return r.positions
}

// Trades returns every trade in execution order
func (r *TradingRecord) Trades() []*Trade {
	if r == nil {
		return nil
	}
	return r.trades
}

// LastTrade returns the most recent trade, or nil
func (r *TradingRecord) LastTrade() *Trade {
	if r == nil || len(r.trades) == 0 {
		return nil
	}
	return r.trades[len(r.trades)-1]
}

// LastTradeOf returns the most recent trade on the given side, or nil
func (r *TradingRecord) LastTradeOf(side TradeSide) *Trade {
	if r == nil {
		return nil
	}
	for i := len(r.trades) - 1; i >= 0; i-- {
		if r.trades[i].Side == side {
			return r.trades[i]
		}
	}
	return nil
}

// LastEntry returns the most recent entry trade, or nil
func (r *TradingRecord) LastEntry() *Trade {
	return r.LastTradeOf(r.entrySide())
}

// LastExit returns the most recent exit trade, or nil
func (r *TradingRecord) LastExit() *Trade {
	return r.LastTradeOf(r.entrySide().Opposite())
}

func (r *TradingRecord) entrySide() TradeSide {
	if r == nil {
		return Buy
	}
	return r.startingSide
}
