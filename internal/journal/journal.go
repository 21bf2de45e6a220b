// Package journal writes trade events and periodic summaries as
// append-only, pipe-separated text lines.
package journal

import (
	"fmt"
	"heartbeat/types"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileJournal appends one line per trade to tradesPath and one line per
// summary to summaryPath. Each write opens and closes the file so lines are
// durable as soon as the call returns.
type FileJournal struct {
	tradesPath  string
	summaryPath string
}

func NewFileJournal(tradesPath, summaryPath string) *FileJournal {
	return &FileJournal{
		tradesPath:  tradesPath,
		summaryPath: summaryPath,
	}
}

func (j *FileJournal) RecordTrade(event types.TradeEvent) error {
	return appendLine(j.tradesPath, FormatTrade(event))
}

func (j *FileJournal) RecordSummary(summary types.Summary, at time.Time) error {
	return appendLine(j.summaryPath, FormatSummary(summary, at))
}

func FormatTrade(e types.TradeEvent) string {
	return strings.Join([]string{
		formatTime(e.Timestamp),
		string(e.Side),
		"price=" + e.Price.StringFixed(2),
		"exec=" + e.ExecPrice.StringFixed(2),
		"qty=" + e.Quantity.StringFixed(6),
		"fee=" + e.Fee.StringFixed(2),
		"slippage=" + e.Slippage.StringFixed(4),
		"cash=" + e.Cash.StringFixed(2),
		"pos=" + e.PositionQty.StringFixed(6),
		"avg=" + e.AvgPrice.StringFixed(2),
		"realized=" + e.RealizedPnL.StringFixed(2),
	}, " | ")
}

func FormatSummary(s types.Summary, at time.Time) string {
	return strings.Join([]string{
		formatTime(at),
		"price=" + s.Price.StringFixed(2),
		"qty=" + s.PositionQty.StringFixed(6),
		"avg=" + s.AvgPrice.StringFixed(2),
		"unrealized=" + s.UnrealizedPnL.StringFixed(2),
		"realized=" + s.RealizedPnL.StringFixed(2),
		"fees=" + s.FeesPaid.StringFixed(2),
		"slippage=" + s.SlippagePaid.StringFixed(2),
		"net=" + s.NetPnL.StringFixed(2),
		"equity=" + s.Equity.StringFixed(2),
	}, " | ")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", path, err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("append journal %s: %w", path, err)
	}
	return f.Close()
}
