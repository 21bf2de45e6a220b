package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Signal struct {
	Side      Side
	Price     decimal.Decimal
	Reason    string
	CreatedAt time.Time
}

func NewSignal(
	side Side,
	price decimal.Decimal,
	reason string,
	createdAt time.Time,
) *Signal {
	return &Signal{
		Side:      side,
		Price:     price,
		Reason:    reason,
		CreatedAt: createdAt,
	}
}
