package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeEvent is an immutable record of one executed ledger operation. The
// Cash, PositionQty, AvgPrice and RealizedPnL fields hold the ledger state
// right after the trade.
type TradeEvent struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	Side        Side            `json:"side"`
	Price       decimal.Decimal `json:"price"`
	ExecPrice   decimal.Decimal `json:"exec_price"`
	Quantity    decimal.Decimal `json:"qty"`
	Fee         decimal.Decimal `json:"fee"`
	Slippage    decimal.Decimal `json:"slippage"` // per unit
	Cash        decimal.Decimal `json:"cash"`
	PositionQty decimal.Decimal `json:"position_qty"`
	AvgPrice    decimal.Decimal `json:"avg_price"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Notional is the executed value of the trade before fees.
func (e TradeEvent) Notional() decimal.Decimal {
	return e.ExecPrice.Mul(e.Quantity)
}
