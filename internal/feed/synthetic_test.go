package feed

import (
	"context"
	"testing"
	"time"

	"heartbeat/types"

	"github.com/shopspring/decimal"
)

var feedStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func drain(t *testing.T, seq func(func(types.Tick, error) bool)) ([]types.Tick, error) {
	t.Helper()
	var ticks []types.Tick
	for tick, err := range seq {
		if err != nil {
			return ticks, err
		}
		ticks = append(ticks, tick)
	}
	return ticks, nil
}

func syntheticConfig(ticks int) SyntheticConfig {
	return SyntheticConfig{
		StartPrice: 50_000,
		Volatility: 0.003,
		Interval:   5 * time.Second,
		Seed:       42,
		Ticks:      ticks,
		StartTime:  feedStart,
	}
}

func TestSyntheticFeed_Ticks(t *testing.T) {
	ticks, err := drain(t, NewSyntheticFeed(syntheticConfig(10)).Ticks(context.Background()))
	if err != nil {
		t.Fatalf("Ticks() unexpected error = %v", err)
	}
	if len(ticks) != 10 {
		t.Fatalf("Ticks() len = %d, want 10", len(ticks))
	}
	if !ticks[0].Price.Equal(decimal.NewFromInt(50_000)) {
		t.Errorf("first price = %v, want 50000", ticks[0].Price)
	}
	maxMove := decimal.NewFromFloat(0.003)
	for i, tick := range ticks {
		want := feedStart.Add(time.Duration(i) * 5 * time.Second)
		if !tick.Timestamp.Equal(want) {
			t.Errorf("[%d] timestamp = %v, want %v", i, tick.Timestamp, want)
		}
		if i == 0 {
			continue
		}
		prev := ticks[i-1].Price
		move := tick.Price.Sub(prev).Abs().Div(prev)
		// NewFromFloat keeps the shortest repr, so allow rounding slack.
		if move.GreaterThan(maxMove.Add(decimal.NewFromFloat(1e-9))) {
			t.Errorf("[%d] move %v exceeds volatility", i, move)
		}
	}
}

func TestSyntheticFeed_Deterministic(t *testing.T) {
	a, _ := drain(t, NewSyntheticFeed(syntheticConfig(50)).Ticks(context.Background()))
	b, _ := drain(t, NewSyntheticFeed(syntheticConfig(50)).Ticks(context.Background()))
	for i := range a {
		if !a[i].Price.Equal(b[i].Price) {
			t.Fatalf("[%d] price %v != %v for the same seed", i, a[i].Price, b[i].Price)
		}
	}

	other := syntheticConfig(50)
	other.Seed = 7
	c, _ := drain(t, NewSyntheticFeed(other).Ticks(context.Background()))
	same := true
	for i := 1; i < len(c); i++ {
		if !a[i].Price.Equal(c[i].Price) {
			same = false
			break
		}
	}
	if same {
		t.Errorf("different seeds produced the same path")
	}
}

func TestSyntheticFeed_PriceFloor(t *testing.T) {
	cfg := syntheticConfig(200)
	cfg.StartPrice = 0.02
	cfg.Volatility = 0.9
	ticks, _ := drain(t, NewSyntheticFeed(cfg).Ticks(context.Background()))
	floor := decimal.NewFromFloat(minSyntheticPrice)
	for i, tick := range ticks {
		if tick.Price.LessThan(floor) {
			t.Fatalf("[%d] price %v below floor", i, tick.Price)
		}
	}
}

func TestSyntheticFeed_Unbounded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := 0
	for _, err := range NewSyntheticFeed(syntheticConfig(0)).Ticks(ctx) {
		if err != nil {
			t.Fatalf("unexpected error = %v", err)
		}
		n++
		if n == 1_000 {
			cancel()
		}
		if n > 1_001 {
			t.Fatalf("feed kept producing after cancel")
		}
	}
	if n != 1_000 {
		t.Errorf("ticks = %d, want 1000", n)
	}
}
