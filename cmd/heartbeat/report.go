package main

import (
	"fmt"
	"strings"
	"time"

	"heartbeat/internal/engine"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(1, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(24)

	gainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

func renderReport(symbol string, r *engine.Report) string {
	rows := [][2]string{
		{"Period", fmt.Sprintf("%s → %s", formatTime(r.StartDate), formatTime(r.EndDate))},
		{"Duration", r.TotalPeriod.String()},
		{"Ticks", fmt.Sprint(r.Ticks)},
		{"Round trips", fmt.Sprint(r.TotalTrades)},
		{"Rejected orders", fmt.Sprint(r.RejectedOrders)},
		{"Open position", fmt.Sprint(r.OpenPosition)},
		{"Final equity", r.FinalEquity.StringFixed(2)},
		{"Net P&L", signed(r.NetPnL)},
		{"Net profit (closed)", signed(r.NetProfit)},
		{"Avg profit per trip", signed(r.NetAvgProfitPerTrade)},
		{"Avg win / avg loss", r.AvgWin.StringFixed(2) + " / " + r.AvgLoss.StringFixed(2)},
		{"Max drawdown", fmt.Sprintf("%s (%s%%) over %s", r.MaxDrawdown.StringFixed(2), r.MaxDrawdownPercent.Mul(decimal.NewFromInt(100)).StringFixed(2), r.MaxDrawdownDuration)},
		{"Max consecutive losses", fmt.Sprint(r.MaxConsecutiveLosses)},
		{"Fees paid", r.TotalFees.StringFixed(2)},
		{"Slippage paid", r.TotalSlippage.StringFixed(2)},
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, labelStyle.Render(row[0])+row[1])
	}
	title := titleStyle.Render(symbol + " simulation report")
	return lipgloss.JoinVertical(lipgloss.Left, title, panelStyle.Render(strings.Join(lines, "\n")))
}

func signed(d decimal.Decimal) string {
	switch {
	case d.IsPositive():
		return gainStyle.Render("+" + d.StringFixed(2))
	case d.IsNegative():
		return lossStyle.Render(d.StringFixed(2))
	}
	return d.StringFixed(2)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
