package feed

import (
	"context"
	"fmt"
	"iter"
	"time"

	"heartbeat/internal/repository"
	"heartbeat/types"
)

type priceRepository interface {
	GetAssetByTicker(ctx context.Context, ticker string) (*repository.Asset, error)
	GetClosePrices(ctx context.Context, assetID int, interval types.Interval, start, end time.Time) ([]types.Tick, error)
}

// PostgresFeed replays bucketed close prices for one symbol. The whole range
// is fetched up front, so the feed is finite.
type PostgresFeed struct {
	repo     priceRepository
	symbol   string
	interval types.Interval
	start    time.Time
	end      time.Time
	now      func() time.Time
}

// NewPostgresFeed reads [start, end). A zero end means up to now.
func NewPostgresFeed(repo priceRepository, symbol string, interval types.Interval, start, end time.Time) *PostgresFeed {
	return &PostgresFeed{
		repo:     repo,
		symbol:   symbol,
		interval: interval,
		start:    start,
		end:      end,
		now:      time.Now,
	}
}

func (f *PostgresFeed) Ticks(ctx context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		ticks, err := f.load(ctx)
		if err != nil {
			yield(types.Tick{}, err)
			return
		}
		for _, tick := range ticks {
			if ctx.Err() != nil {
				return
			}
			if !yield(tick, nil) {
				return
			}
		}
	}
}

func (f *PostgresFeed) load(ctx context.Context) ([]types.Tick, error) {
	asset, err := f.repo.GetAssetByTicker(ctx, f.symbol)
	if err != nil {
		return nil, fmt.Errorf("lookup asset: %w", err)
	}
	end := f.end
	if end.IsZero() {
		end = f.now()
	}
	ticks, err := f.repo.GetClosePrices(ctx, asset.ID, f.interval, f.start, end)
	if err != nil {
		return nil, fmt.Errorf("load %s prices: %w", f.symbol, err)
	}
	return ticks, nil
}
