package engine

import (
	"errors"
	"fmt"
	"heartbeat/types"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInsufficientCash     = errors.New("insufficient cash for buy")
	ErrInsufficientPosition = errors.New("sell quantity exceeds position")
)

var one = decimal.NewFromInt(1)

// Ledger is the single-asset cash and position book. It is not safe for
// concurrent use; the simulation loop owns it.
type Ledger struct {
	symbol       string
	initialCash  decimal.Decimal
	cash         decimal.Decimal
	positionQty  decimal.Decimal
	avgPrice     decimal.Decimal
	realizedPnL  decimal.Decimal
	feesPaid     decimal.Decimal
	slippagePaid decimal.Decimal
	trades       []types.TradeEvent

	now   func() time.Time
	newID func() string
}

func NewLedger(symbol string, initialCash decimal.Decimal) *Ledger {
	return &Ledger{
		symbol:      symbol,
		initialCash: initialCash,
		cash:        initialCash,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// Buy opens or adds to the position. A zero ts is stamped with the current
// time.
func (l *Ledger) Buy(price, qty, feeRate, slippageRate decimal.Decimal, ts time.Time) (types.TradeEvent, error) {
	if !qty.IsPositive() {
		return types.TradeEvent{}, fmt.Errorf("buy %s: %w", qty, ErrInvalidQuantity)
	}
	execPrice := price.Mul(one.Add(slippageRate))
	fee := execPrice.Mul(qty).Mul(feeRate)
	cost := execPrice.Mul(qty).Add(fee)
	if cost.GreaterThan(l.cash) {
		return types.TradeEvent{}, fmt.Errorf("buy cost %s exceeds cash %s: %w", cost, l.cash, ErrInsufficientCash)
	}

	newQty := l.positionQty.Add(qty)
	l.avgPrice = weightedAvg(l.avgPrice, l.positionQty, execPrice, qty)
	l.positionQty = newQty
	l.cash = l.cash.Sub(cost)
	l.feesPaid = l.feesPaid.Add(fee)
	slippage := execPrice.Sub(price)
	l.slippagePaid = l.slippagePaid.Add(slippage.Mul(qty))

	return l.recordTrade(types.SideTypeBuy, price, execPrice, qty, fee, slippage, ts), nil
}

// Sell reduces the position. Selling the whole position resets the average
// price to exactly zero.
func (l *Ledger) Sell(price, qty, feeRate, slippageRate decimal.Decimal, ts time.Time) (types.TradeEvent, error) {
	if !qty.IsPositive() {
		return types.TradeEvent{}, fmt.Errorf("sell %s: %w", qty, ErrInvalidQuantity)
	}
	if qty.GreaterThan(l.positionQty) {
		return types.TradeEvent{}, fmt.Errorf("sell %s of %s: %w", qty, l.positionQty, ErrInsufficientPosition)
	}

	execPrice := price.Mul(one.Sub(slippageRate))
	fee := execPrice.Mul(qty).Mul(feeRate)
	proceeds := execPrice.Mul(qty).Sub(fee)
	pnl := execPrice.Sub(l.avgPrice).Mul(qty).Sub(fee)

	l.positionQty = l.positionQty.Sub(qty)
	if l.positionQty.IsZero() {
		l.positionQty = decimal.Zero
		l.avgPrice = decimal.Zero
	}
	l.cash = l.cash.Add(proceeds)
	l.realizedPnL = l.realizedPnL.Add(pnl)
	l.feesPaid = l.feesPaid.Add(fee)
	slippage := price.Sub(execPrice)
	l.slippagePaid = l.slippagePaid.Add(slippage.Mul(qty))

	return l.recordTrade(types.SideTypeSell, price, execPrice, qty, fee, slippage, ts), nil
}

func (l *Ledger) Equity(price decimal.Decimal) decimal.Decimal {
	return l.cash.Add(l.positionQty.Mul(price))
}

func (l *Ledger) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	if !l.positionQty.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(l.avgPrice).Mul(l.positionQty)
}

func (l *Ledger) Summary(price decimal.Decimal) types.Summary {
	equity := l.Equity(price)
	return types.Summary{
		Cash:          l.cash,
		PositionQty:   l.positionQty,
		AvgPrice:      l.avgPrice,
		RealizedPnL:   l.realizedPnL,
		UnrealizedPnL: l.UnrealizedPnL(price),
		FeesPaid:      l.feesPaid,
		SlippagePaid:  l.slippagePaid,
		Equity:        equity,
		NetPnL:        equity.Sub(l.initialCash),
		Price:         price,
	}
}

func (l *Ledger) Cash() decimal.Decimal        { return l.cash }
func (l *Ledger) PositionQty() decimal.Decimal { return l.positionQty }
func (l *Ledger) AvgPrice() decimal.Decimal    { return l.avgPrice }
func (l *Ledger) InitialCash() decimal.Decimal { return l.initialCash }
func (l *Ledger) RealizedPnL() decimal.Decimal { return l.realizedPnL }

// Trades returns a copy of the trade log.
func (l *Ledger) Trades() []types.TradeEvent {
	return append([]types.TradeEvent(nil), l.trades...)
}

func (l *Ledger) Snapshot() types.LedgerSnapshot {
	return types.LedgerSnapshot{
		InitialCash:  decimal.NewNullDecimal(l.initialCash),
		Cash:         decimal.NewNullDecimal(l.cash),
		PositionQty:  decimal.NewNullDecimal(l.positionQty),
		AvgPrice:     decimal.NewNullDecimal(l.avgPrice),
		RealizedPnL:  decimal.NewNullDecimal(l.realizedPnL),
		FeesPaid:     decimal.NewNullDecimal(l.feesPaid),
		SlippagePaid: decimal.NewNullDecimal(l.slippagePaid),
	}
}

// Restore overwrites every field present in snap and keeps the current value
// for the rest. The trade log is left untouched.
func (l *Ledger) Restore(snap types.LedgerSnapshot) {
	restoreField(&l.initialCash, snap.InitialCash)
	restoreField(&l.cash, snap.Cash)
	restoreField(&l.positionQty, snap.PositionQty)
	restoreField(&l.avgPrice, snap.AvgPrice)
	restoreField(&l.realizedPnL, snap.RealizedPnL)
	restoreField(&l.feesPaid, snap.FeesPaid)
	restoreField(&l.slippagePaid, snap.SlippagePaid)
	if !l.positionQty.IsPositive() {
		l.positionQty = decimal.Zero
		l.avgPrice = decimal.Zero
	}
}

func (l *Ledger) recordTrade(side types.Side, price, execPrice, qty, fee, slippage decimal.Decimal, ts time.Time) types.TradeEvent {
	if ts.IsZero() {
		ts = l.now()
	}
	event := types.TradeEvent{
		ID:          l.newID(),
		Symbol:      l.symbol,
		Side:        side,
		Price:       price,
		ExecPrice:   execPrice,
		Quantity:    qty,
		Fee:         fee,
		Slippage:    slippage,
		Cash:        l.cash,
		PositionQty: l.positionQty,
		AvgPrice:    l.avgPrice,
		RealizedPnL: l.realizedPnL,
		Timestamp:   ts,
	}
	l.trades = append(l.trades, event)
	return event
}

func restoreField(dst *decimal.Decimal, src decimal.NullDecimal) {
	if src.Valid {
		*dst = src.Decimal
	}
}

func weightedAvg(existingAvgPrice, existingQty, newPrice, newQty decimal.Decimal) decimal.Decimal {
	if existingQty.IsZero() {
		return newPrice
	}
	return existingAvgPrice.Mul(existingQty).
		Add(newPrice.Mul(newQty)).
		Div(existingQty.Add(newQty))
}
