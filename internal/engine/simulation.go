package engine

import (
	"context"
	"errors"
	"fmt"
	"heartbeat/types"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

// EquityPoint is an equity sample taken whenever a summary is emitted and
// once more after the last tick.
type EquityPoint struct {
	Time    time.Time
	Summary types.Summary
}

type simulation struct {
	cfg      *TradingConfig
	strategy strategy
	ledger   *Ledger
	store    stateStore
	reporter reporter
	metrics  metricsRecorder
	log      zerolog.Logger

	lastReportAt *time.Time
	lastTick     *types.Tick
	firstTick    *types.Tick
	ticks        int
	rejected     int
	equityCurve  []EquityPoint
}

func newSimulation(cfg *TradingConfig, strat strategy, ledger *Ledger, store stateStore, rep reporter, metrics metricsRecorder, log zerolog.Logger) *simulation {
	return &simulation{
		cfg:      cfg,
		strategy: strat,
		ledger:   ledger,
		store:    store,
		reporter: rep,
		metrics:  metrics,
		log:      log,
	}
}

// run drains the feed one tick at a time. Cancelling ctx stops the loop after
// the tick in progress and is not an error.
func (s *simulation) run(ctx context.Context, feed PriceFeed, bar *progressbar.ProgressBar) error {
	for tick, err := range feed.Ticks(ctx) {
		if err != nil {
			return fmt.Errorf("read tick: %w", err)
		}
		if err := s.processTick(tick); err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	if s.lastTick != nil {
		s.sampleEquity(*s.lastTick)
	}
	return nil
}

func (s *simulation) processTick(tick types.Tick) error {
	started := time.Now()
	if s.firstTick == nil {
		first := tick
		s.firstTick = &first
	}
	s.lastTick = &tick
	s.ticks++

	if signal := s.strategy.OnTick(tick); signal != nil {
		var err error
		switch signal.Side {
		case types.SideTypeBuy:
			err = s.buy(tick)
		case types.SideTypeSell:
			err = s.sell(tick)
		}
		if err != nil {
			return err
		}
	}

	if s.reportDue(tick.Timestamp) {
		s.report(tick)
	}
	s.persist()

	if s.metrics != nil {
		s.metrics.RecordTick(s.ledger.Summary(tick.Price), time.Since(started))
	}
	return nil
}

func (s *simulation) buy(tick types.Tick) error {
	if !tick.Price.IsPositive() {
		return s.reject(types.SideTypeBuy, tick, fmt.Errorf("price %s: %w", tick.Price, ErrInvalidQuantity))
	}
	qty := s.cfg.tradeSizeCash.Div(tick.Price)
	event, err := s.ledger.Buy(tick.Price, qty, s.cfg.feeRate, s.cfg.slippageRate, tick.Timestamp)
	if err != nil {
		return s.reject(types.SideTypeBuy, tick, err)
	}
	s.recordTrade(event)
	return nil
}

func (s *simulation) sell(tick types.Tick) error {
	qty := s.ledger.PositionQty()
	if !qty.IsPositive() {
		return nil
	}
	event, err := s.ledger.Sell(tick.Price, qty, s.cfg.feeRate, s.cfg.slippageRate, tick.Timestamp)
	if err != nil {
		return s.reject(types.SideTypeSell, tick, err)
	}
	s.recordTrade(event)
	return nil
}

// reject turns a ledger refusal into a no-op for this tick. Anything that is
// not one of the ledger's own refusals is returned as fatal.
func (s *simulation) reject(side types.Side, tick types.Tick, err error) error {
	reason := rejectReason(err)
	if reason == "" {
		return fmt.Errorf("%s at %s: %w", side, tick.Price, err)
	}
	s.rejected++
	s.log.Warn().
		Str("side", side.String()).
		Str("price", tick.Price.String()).
		Time("tick_time", tick.Timestamp).
		Str("reason", reason).
		Err(err).
		Msg("order rejected")
	if s.metrics != nil {
		s.metrics.RecordRejected(side, reason)
	}
	return nil
}

func (s *simulation) recordTrade(event types.TradeEvent) {
	s.log.Info().
		Str("id", event.ID).
		Str("side", event.Side.String()).
		Str("price", event.Price.String()).
		Str("exec_price", event.ExecPrice.String()).
		Str("qty", event.Quantity.String()).
		Str("cash", event.Cash.String()).
		Msg("trade executed")
	if s.metrics != nil {
		s.metrics.RecordTrade(event.Side)
	}
	if s.reporter == nil {
		return
	}
	if err := s.reporter.RecordTrade(event); err != nil {
		s.log.Error().Err(err).Str("id", event.ID).Msg("record trade")
	}
}

func (s *simulation) reportDue(ts time.Time) bool {
	if s.lastReportAt == nil {
		return true
	}
	return ts.Sub(*s.lastReportAt) >= s.cfg.reportInterval
}

func (s *simulation) report(tick types.Tick) {
	at := tick.Timestamp
	s.lastReportAt = &at
	summary := s.sampleEquity(tick)
	if s.reporter == nil {
		return
	}
	if err := s.reporter.RecordSummary(summary, at); err != nil {
		s.log.Error().Err(err).Time("at", at).Msg("record summary")
	}
}

func (s *simulation) sampleEquity(tick types.Tick) types.Summary {
	summary := s.ledger.Summary(tick.Price)
	if n := len(s.equityCurve); n > 0 && s.equityCurve[n-1].Time.Equal(tick.Timestamp) {
		s.equityCurve[n-1].Summary = summary
		return summary
	}
	s.equityCurve = append(s.equityCurve, EquityPoint{Time: tick.Timestamp, Summary: summary})
	return summary
}

func (s *simulation) snapshot() types.StateSnapshot {
	ledgerSnap := s.ledger.Snapshot()
	strategySnap := s.strategy.Snapshot()
	return types.StateSnapshot{
		Ledger:       &ledgerSnap,
		Strategy:     &strategySnap,
		LastReportAt: s.lastReportAt,
	}
}

func (s *simulation) restore(state types.StateSnapshot) {
	if state.Ledger != nil {
		s.ledger.Restore(*state.Ledger)
	}
	if state.Strategy != nil {
		s.strategy.Restore(*state.Strategy)
	}
	if state.LastReportAt != nil && !state.LastReportAt.IsZero() {
		at := *state.LastReportAt
		s.lastReportAt = &at
	}
}

func (s *simulation) persist() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.snapshot()); err != nil {
		s.log.Error().Err(err).Msg("save state")
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrInsufficientCash):
		return "insufficient_cash"
	case errors.Is(err, ErrInsufficientPosition):
		return "insufficient_position"
	}
	return ""
}

func initProgressBar(maxTicks int, w io.Writer) *progressbar.ProgressBar {
	if maxTicks <= 0 || w == nil {
		return nil
	}
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Simulating..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
