// Package heartbeat implements a breakout-entry, trailing-stop-exit strategy
// for a single asset. It buys once price rises a fixed gap above the lowest
// price seen while flat, arms a trailing stop after the move clears the gap
// plus the trailing distance, sells on the trailing stop, then waits out a
// cooldown before looking for the next entry.
package heartbeat

import (
	"heartbeat/types"
	"time"

	"github.com/shopspring/decimal"
)

type Phase string

const (
	PhaseIdle       Phase = "IDLE"
	PhaseInPosition Phase = "IN_POSITION"
	PhaseCooldown   Phase = "COOLDOWN"
)

const (
	reasonBreakout     = "price broke above recent low by the entry gap"
	reasonTrailingStop = "price fell from peak by the trailing distance"
)

var one = decimal.NewFromInt(1)

type Config struct {
	EffectiveGap decimal.Decimal
	TrailingPct  decimal.Decimal
	Cooldown     time.Duration
}

// state is one of idle, inPosition or cooldown. Each variant carries only
// the fields that are meaningful in that phase.
type state interface {
	phase() Phase
}

type idle struct {
	recentLow decimal.NullDecimal
}

type inPosition struct {
	entryPrice decimal.Decimal
	peak       decimal.Decimal
	armed      bool
}

type cooldown struct {
	until time.Time
}

func (idle) phase() Phase       { return PhaseIdle }
func (inPosition) phase() Phase { return PhaseInPosition }
func (cooldown) phase() Phase   { return PhaseCooldown }

type Strategy struct {
	effectiveGap decimal.Decimal
	trailingPct  decimal.Decimal
	armPct       decimal.Decimal
	cooldown     time.Duration
	filters      []EntryFilter

	state state
}

// New returns a strategy in the idle phase. Filters are consulted in order
// and all of them must allow an entry.
func New(cfg Config, filters ...EntryFilter) *Strategy {
	return &Strategy{
		effectiveGap: cfg.EffectiveGap,
		trailingPct:  cfg.TrailingPct,
		armPct:       cfg.EffectiveGap.Add(cfg.TrailingPct),
		cooldown:     cfg.Cooldown,
		filters:      filters,
		state:        idle{},
	}
}

// OnTick advances the state machine by one tick and returns the resulting
// signal, or nil when no action is taken.
func (s *Strategy) OnTick(tick types.Tick) *types.Signal {
	for _, f := range s.filters {
		if o, ok := f.(TickObserver); ok {
			o.Observe(tick)
		}
	}

	if cd, ok := s.state.(cooldown); ok {
		if tick.Timestamp.Before(cd.until) {
			return nil
		}
		// Expiry falls through to idle evaluation on this same tick.
		s.state = idle{recentLow: decimal.NewNullDecimal(tick.Price)}
	}

	switch st := s.state.(type) {
	case idle:
		return s.onIdle(st, tick)
	case inPosition:
		return s.onInPosition(st, tick)
	}
	return nil
}

func (s *Strategy) onIdle(st idle, tick types.Tick) *types.Signal {
	price := tick.Price
	if !st.recentLow.Valid || price.LessThan(st.recentLow.Decimal) {
		st.recentLow = decimal.NewNullDecimal(price)
	}
	s.state = st

	threshold := st.recentLow.Decimal.Mul(one.Add(s.effectiveGap))
	if price.LessThan(threshold) || !s.allowEntry(tick, st) {
		return nil
	}

	s.state = inPosition{entryPrice: price, peak: price}
	return types.NewSignal(types.SideTypeBuy, price, reasonBreakout, tick.Timestamp)
}

func (s *Strategy) onInPosition(st inPosition, tick types.Tick) *types.Signal {
	price := tick.Price
	if price.GreaterThan(st.peak) {
		st.peak = price
	}
	if !st.armed && price.GreaterThanOrEqual(st.entryPrice.Mul(one.Add(s.armPct))) {
		st.armed = true
	}
	s.state = st

	if !st.armed || price.GreaterThan(st.peak.Mul(one.Sub(s.trailingPct))) {
		return nil
	}

	s.state = cooldown{until: tick.Timestamp.Add(s.cooldown)}
	return types.NewSignal(types.SideTypeSell, price, reasonTrailingStop, tick.Timestamp)
}

func (s *Strategy) allowEntry(tick types.Tick, st idle) bool {
	view := View{Phase: PhaseIdle, RecentLow: st.recentLow.Decimal}
	for _, f := range s.filters {
		if !f.AllowEntry(tick, view) {
			return false
		}
	}
	return true
}

func (s *Strategy) Phase() Phase {
	return s.state.phase()
}

func (s *Strategy) Snapshot() types.StrategySnapshot {
	secs := int64(s.cooldown / time.Second)
	snap := types.StrategySnapshot{
		State:       string(s.state.phase()),
		CooldownSec: &secs,
	}
	switch st := s.state.(type) {
	case idle:
		snap.RecentLow = st.recentLow
	case inPosition:
		snap.EntryPrice = decimal.NewNullDecimal(st.entryPrice)
		snap.Peak = decimal.NewNullDecimal(st.peak)
		snap.Armed = st.armed
	case cooldown:
		until := st.until
		snap.CooldownUntil = &until
	}
	return snap
}

// Restore replaces the current state with snap. Missing or inconsistent
// fields fall back to the nearest valid state instead of failing: a cooldown
// without a deadline and a position without an entry price both restore as
// idle.
func (s *Strategy) Restore(snap types.StrategySnapshot) {
	if snap.CooldownSec != nil && *snap.CooldownSec >= 0 {
		s.cooldown = time.Duration(*snap.CooldownSec) * time.Second
	}
	s.armPct = s.effectiveGap.Add(s.trailingPct)

	recentLow := positiveOrNull(snap.RecentLow)
	switch Phase(snap.State) {
	case PhaseCooldown:
		if snap.CooldownUntil != nil && !snap.CooldownUntil.IsZero() {
			s.state = cooldown{until: *snap.CooldownUntil}
			return
		}
	case PhaseInPosition:
		entry := positiveOrNull(snap.EntryPrice)
		if entry.Valid {
			peak := positiveOrNull(snap.Peak)
			if !peak.Valid {
				peak = entry
			}
			s.state = inPosition{entryPrice: entry.Decimal, peak: peak.Decimal, armed: snap.Armed}
			return
		}
	}
	s.state = idle{recentLow: recentLow}
}

func positiveOrNull(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid || !d.Decimal.IsPositive() {
		return decimal.NullDecimal{}
	}
	return d
}
