package models

import (
	"fmt"
	"math"
	"strings"
)

// TradeSide is the direction of a single execution
type TradeSide int

const (
	Buy TradeSide = iota
	Sell
)

// Opposite returns the side that closes a position opened with s
func (s TradeSide) Opposite() TradeSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s TradeSide) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseTradeSide parses "buy"/"long" or "sell"/"short"
func ParseTradeSide(value string) (TradeSide, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "buy", "long":
		return Buy, nil
	case "sell", "short":
		return Sell, nil
	default:
		return Buy, fmt.Errorf("%w: %q", ErrInvalidSide, value)
	}
}

// Trade is a single buy or sell execution at a bar index
type Trade struct {
	Index  int       `json:"index"`
	Side   TradeSide `json:"side"`
	Price  float64   `json:"price"` // Price per asset before costs
	Amount float64   `json:"amount"`
	Cost   float64   `json:"cost"` // Transaction cost of the whole trade

	// NetPrice is the price per asset including the transaction cost
	NetPrice float64 `json:"net_price"`
}

// NewTrade creates a trade and derives its net price from the cost model
func NewTrade(index int, side TradeSide, price, amount float64, costModel CostModel) *Trade {
	if costModel == nil {
		costModel = ZeroCostModel{}
	}
	cost := costModel.Cost(price, amount)

	netPrice := price
	if amount != 0 && !math.IsNaN(cost) {
		perAsset := cost / amount
		if side == Buy {
			netPrice = price + perAsset
		} else {
			netPrice = price - perAsset
		}
	}

	return &Trade{
		Index:    index,
		Side:     side,
		Price:    price,
		Amount:   amount,
		Cost:     cost,
		NetPrice: netPrice,
	}
}

// IsBuy reports whether the trade is a buy
func (t *Trade) IsBuy() bool {
	return t != nil && t.Side == Buy
}

// IsSell reports whether the trade is a sell
func (t *Trade) IsSell() bool {
	return t != nil && t.Side == Sell
}

// Value returns price times amount
func (t *Trade) Value() float64 {
	return t.Price * t.Amount
}

func (t *Trade) String() string {
	return fmt.Sprintf("%s@%d price=%g amount=%g net=%g", t.Side, t.Index, t.Price, t.Amount, t.NetPrice)
}
