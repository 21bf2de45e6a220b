package types

import "github.com/shopspring/decimal"

type Summary struct {
	Cash          decimal.Decimal `json:"cash"`
	PositionQty   decimal.Decimal `json:"position_qty"`
	AvgPrice      decimal.Decimal `json:"avg_price"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	FeesPaid      decimal.Decimal `json:"fees_paid"`
	SlippagePaid  decimal.Decimal `json:"slippage_paid"`
	Equity        decimal.Decimal `json:"equity"`
	NetPnL        decimal.Decimal `json:"net_pnl"`
	Price         decimal.Decimal `json:"price"`
}
