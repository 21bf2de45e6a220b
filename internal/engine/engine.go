package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

type Engine struct {
	feed       PriceFeed
	store      stateStore
	runConfig  *RunConfig
	ledger     *Ledger
	simulation *simulation
	log        zerolog.Logger
}

func NewEngine(
	feed PriceFeed,
	strat strategy,
	tradingConfig *TradingConfig,
	ledgerConfig *LedgerConfig,
	runConfig *RunConfig,
	store stateStore,
	rep reporter,
	metrics metricsRecorder,
	log zerolog.Logger,
) *Engine {
	ledger := NewLedger(tradingConfig.symbol, ledgerConfig.initialCash)
	if runConfig == nil {
		runConfig = &RunConfig{}
	}
	return &Engine{
		feed:       feed,
		store:      store,
		runConfig:  runConfig,
		ledger:     ledger,
		simulation: newSimulation(tradingConfig, strat, ledger, store, rep, metrics, log),
		log:        log,
	}
}

// Run restores the saved state, drives the feed to completion (or until ctx
// is cancelled) and returns the performance report for this run.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	e.restoreState()

	bar := initProgressBar(e.runConfig.expectedTicks, e.runConfig.progressWriter)
	if err := e.simulation.run(ctx, e.feed, bar); err != nil {
		return nil, err
	}

	report := e.generateReport()
	if e.runConfig.tradesCSVPath != "" {
		if err := writeTradesCSVFile(e.runConfig.tradesCSVPath, e.ledger.Trades()); err != nil {
			return report, fmt.Errorf("export trades: %w", err)
		}
	}
	e.log.Info().
		Int("ticks", report.Ticks).
		Int("trades", report.TotalTrades).
		Str("equity", report.FinalEquity.String()).
		Str("net_pnl", report.NetPnL.String()).
		Msg("simulation finished")
	return report, nil
}

func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// restoreState never fails: an unreadable snapshot means a fresh start.
func (e *Engine) restoreState() {
	if e.store == nil || e.runConfig.resetState {
		return
	}
	state, err := e.store.Load()
	if err != nil {
		e.log.Warn().Err(err).Msg("load state, starting fresh")
		return
	}
	if state.IsEmpty() {
		return
	}
	e.simulation.restore(state)
	e.log.Info().
		Str("cash", e.ledger.Cash().String()).
		Str("position_qty", e.ledger.PositionQty().String()).
		Msg("state restored")
}
