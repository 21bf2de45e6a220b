package engine

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

type TradingConfig struct {
	symbol         string
	feeRate        decimal.Decimal
	slippageRate   decimal.Decimal
	tradeSizeCash  decimal.Decimal
	reportInterval time.Duration
}

func NewTradingConfig(symbol string, feeRate, slippageRate, tradeSizeCash decimal.Decimal, reportInterval time.Duration) *TradingConfig {
	return &TradingConfig{
		symbol:         symbol,
		feeRate:        feeRate,
		slippageRate:   slippageRate,
		tradeSizeCash:  tradeSizeCash,
		reportInterval: reportInterval,
	}
}

type LedgerConfig struct {
	initialCash decimal.Decimal
}

func NewLedgerConfig(initialCash decimal.Decimal) *LedgerConfig {
	return &LedgerConfig{initialCash: initialCash}
}

type RunConfig struct {
	// resetState skips loading the stored snapshot.
	resetState bool
	// expectedTicks sizes the progress bar; zero disables it.
	expectedTicks  int
	progressWriter io.Writer
	tradesCSVPath  string
}

func NewRunConfig(resetState bool, expectedTicks int, progressWriter io.Writer, tradesCSVPath string) *RunConfig {
	return &RunConfig{
		resetState:     resetState,
		expectedTicks:  expectedTicks,
		progressWriter: progressWriter,
		tradesCSVPath:  tradesCSVPath,
	}
}
