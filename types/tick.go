package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tick is a single price observation. Feeds deliver ticks in non-decreasing
// timestamp order.
type Tick struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
}

func NewTick(timestamp time.Time, price decimal.Decimal) Tick {
	return Tick{Timestamp: timestamp, Price: price}
}
