package engine

import (
	"context"
	"heartbeat/types"
	"iter"
	"time"
)

type strategy interface {
	OnTick(tick types.Tick) *types.Signal
	Snapshot() types.StrategySnapshot
	Restore(snap types.StrategySnapshot)
}

// PriceFeed yields ticks lazily in timestamp order. A feed may be infinite;
// it must stop yielding once ctx is done.
type PriceFeed interface {
	Ticks(ctx context.Context) iter.Seq2[types.Tick, error]
}

type stateStore interface {
	Load() (types.StateSnapshot, error)
	Save(state types.StateSnapshot) error
}

type reporter interface {
	RecordTrade(event types.TradeEvent) error
	RecordSummary(summary types.Summary, at time.Time) error
}

type metricsRecorder interface {
	RecordTick(summary types.Summary, elapsed time.Duration)
	RecordTrade(side types.Side)
	RecordRejected(side types.Side, reason string)
}
