package heartbeat

import (
	"heartbeat/types"

	"github.com/shopspring/decimal"
)

// View is the read-only part of the strategy state handed to entry filters.
type View struct {
	Phase     Phase
	RecentLow decimal.Decimal
}

// EntryFilter can veto an entry the breakout rule would otherwise take.
type EntryFilter interface {
	AllowEntry(tick types.Tick, view View) bool
}

// TickObserver is implemented by filters that keep their own history. The
// strategy feeds them every tick before evaluating it.
type TickObserver interface {
	Observe(tick types.Tick)
}

type EntryFilterFunc func(tick types.Tick, view View) bool

func (f EntryFilterFunc) AllowEntry(tick types.Tick, view View) bool {
	return f(tick, view)
}

// VolatilityFilter blocks entries while the relative move between the oldest
// and newest price in its window exceeds maxMove.
type VolatilityFilter struct {
	window  int
	maxMove decimal.Decimal
	prices  []decimal.Decimal
}

func NewVolatilityFilter(window int, maxMove decimal.Decimal) *VolatilityFilter {
	return &VolatilityFilter{
		window:  window,
		maxMove: maxMove,
		prices:  make([]decimal.Decimal, 0, window),
	}
}

func (v *VolatilityFilter) Observe(tick types.Tick) {
	if v.window <= 0 {
		return
	}
	if len(v.prices) == v.window {
		copy(v.prices, v.prices[1:])
		v.prices = v.prices[:len(v.prices)-1]
	}
	v.prices = append(v.prices, tick.Price)
}

func (v *VolatilityFilter) AllowEntry(types.Tick, View) bool {
	move, ok := v.Volatility()
	if !ok {
		return true
	}
	return move.LessThanOrEqual(v.maxMove)
}

// Volatility reports |last-first|/first over the window. It is undefined
// with fewer than two prices or a non-positive first price.
func (v *VolatilityFilter) Volatility() (decimal.Decimal, bool) {
	if len(v.prices) < 2 {
		return decimal.Zero, false
	}
	first := v.prices[0]
	last := v.prices[len(v.prices)-1]
	if !first.IsPositive() {
		return decimal.Zero, false
	}
	return last.Sub(first).Abs().Div(first), true
}

// TimeframeGuard is a manual gate standing in for a higher-timeframe trend
// check. It allows entries until Block is called.
type TimeframeGuard struct {
	blocked bool
}

func (g *TimeframeGuard) Block()   { g.blocked = true }
func (g *TimeframeGuard) Unblock() { g.blocked = false }

func (g *TimeframeGuard) AllowEntry(types.Tick, View) bool {
	return !g.blocked
}

type OracleSignal string

const (
	OracleEnter OracleSignal = "ENTER"
	OracleHold  OracleSignal = "HOLD"
)

// Oracle relays an externally decided signal. Entries are allowed only while
// it says ENTER.
type Oracle struct {
	signal OracleSignal
}

func NewOracle() *Oracle {
	return &Oracle{signal: OracleEnter}
}

func (o *Oracle) Set(signal OracleSignal) { o.signal = signal }

func (o *Oracle) Signal() OracleSignal { return o.signal }

func (o *Oracle) AllowEntry(types.Tick, View) bool {
	return o.signal == OracleEnter
}
