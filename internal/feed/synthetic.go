// Package feed provides the price sources the simulation can replay: a seeded
// random walk, a CSV file and a Postgres candle table.
package feed

import (
	"context"
	"iter"
	"math"
	"math/rand/v2"
	"time"

	"heartbeat/types"

	"github.com/shopspring/decimal"
)

const minSyntheticPrice = 0.01

type SyntheticConfig struct {
	StartPrice float64
	// Volatility bounds the per-tick relative shock drawn from U(-v, v).
	Volatility float64
	Interval   time.Duration
	Seed       int64
	// Ticks of zero or less produces an unbounded stream.
	Ticks     int
	StartTime time.Time
}

// SyntheticFeed is a deterministic random walk: the same seed always yields
// the same price path.
type SyntheticFeed struct {
	cfg SyntheticConfig
}

func NewSyntheticFeed(cfg SyntheticConfig) *SyntheticFeed {
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Now().UTC()
	}
	return &SyntheticFeed{cfg: cfg}
}

func (f *SyntheticFeed) Ticks(ctx context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		seed := uint64(f.cfg.Seed)
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		price := f.cfg.StartPrice
		now := f.cfg.StartTime

		for i := 0; f.cfg.Ticks <= 0 || i < f.cfg.Ticks; i++ {
			if err := ctx.Err(); err != nil {
				return
			}
			if !yield(types.NewTick(now, decimal.NewFromFloat(price)), nil) {
				return
			}
			shock := (rng.Float64()*2 - 1) * f.cfg.Volatility
			price = math.Max(minSyntheticPrice, price*(1+shock))
			now = now.Add(f.cfg.Interval)
		}
	}
}
