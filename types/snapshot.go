package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// StateSnapshot is the combined restart state written after every tick. A
// zero value means "no saved state".
type StateSnapshot struct {
	Ledger       *LedgerSnapshot   `json:"ledger,omitempty"`
	Strategy     *StrategySnapshot `json:"strategy,omitempty"`
	LastReportAt *time.Time        `json:"last_report_at"`
}

func (s StateSnapshot) IsEmpty() bool {
	return s.Ledger == nil && s.Strategy == nil && s.LastReportAt == nil
}

// LedgerSnapshot fields are nullable so a partial document restores only
// what it carries.
type LedgerSnapshot struct {
	InitialCash  decimal.NullDecimal `json:"initial_cash"`
	Cash         decimal.NullDecimal `json:"cash"`
	PositionQty  decimal.NullDecimal `json:"position_qty"`
	AvgPrice     decimal.NullDecimal `json:"avg_price"`
	RealizedPnL  decimal.NullDecimal `json:"realized_pnl"`
	FeesPaid     decimal.NullDecimal `json:"fees_paid"`
	SlippagePaid decimal.NullDecimal `json:"slippage_paid"`
}

type StrategySnapshot struct {
	State         string              `json:"state"`
	RecentLow     decimal.NullDecimal `json:"recent_low"`
	EntryPrice    decimal.NullDecimal `json:"entry_price"`
	Peak          decimal.NullDecimal `json:"peak"`
	Armed         bool                `json:"armed"`
	CooldownUntil *time.Time          `json:"cooldown_until"`
	CooldownSec   *int64              `json:"cooldown_sec,omitempty"`
}
