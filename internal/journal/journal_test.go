package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"heartbeat/types"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var at = time.Date(2024, 1, 1, 0, 0, 10, 0, time.UTC)

func sampleTrade() types.TradeEvent {
	return types.TradeEvent{
		Side:        types.SideTypeBuy,
		Price:       d("101"),
		ExecPrice:   d("101.0202"),
		Quantity:    d("990.0990099009900990"),
		Fee:         d("50.01"),
		Slippage:    d("0.0202"),
		Cash:        d("899929.98"),
		PositionQty: d("990.0990099009900990"),
		AvgPrice:    d("101.0202"),
		RealizedPnL: decimal.Zero,
		Timestamp:   at,
	}
}

func TestFormatTrade(t *testing.T) {
	want := "2024-01-01T00:00:10Z | BUY | price=101.00 | exec=101.02 | qty=990.099010 | fee=50.01 | " +
		"slippage=0.0202 | cash=899929.98 | pos=990.099010 | avg=101.02 | realized=0.00"
	if got := FormatTrade(sampleTrade()); got != want {
		t.Errorf("FormatTrade() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatSummary(t *testing.T) {
	s := types.Summary{
		Price:         d("103"),
		PositionQty:   d("2"),
		AvgPrice:      d("100"),
		UnrealizedPnL: d("6"),
		RealizedPnL:   d("-1.5"),
		FeesPaid:      d("0.2"),
		SlippagePaid:  d("0.02"),
		NetPnL:        d("4.3"),
		Equity:        d("1004.3"),
	}
	want := "2024-01-01T00:00:10Z | price=103.00 | qty=2.000000 | avg=100.00 | unrealized=6.00 | " +
		"realized=-1.50 | fees=0.20 | slippage=0.02 | net=4.30 | equity=1004.30"
	if got := FormatSummary(s, at); got != want {
		t.Errorf("FormatSummary() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatTime_ConvertsToUTC(t *testing.T) {
	local := time.Date(2024, 1, 1, 2, 0, 0, 500, time.FixedZone("EET", 2*60*60))
	if got := formatTime(local); got != "2024-01-01T00:00:00.0000005Z" {
		t.Errorf("formatTime() = %s", got)
	}
}

func TestFileJournal_Appends(t *testing.T) {
	dir := t.TempDir()
	j := NewFileJournal(filepath.Join(dir, "logs", "trades.log"), filepath.Join(dir, "logs", "hourly_report.log"))

	for i := 0; i < 2; i++ {
		if err := j.RecordTrade(sampleTrade()); err != nil {
			t.Fatalf("RecordTrade() error = %v", err)
		}
	}
	if err := j.RecordSummary(types.Summary{}, at); err != nil {
		t.Fatalf("RecordSummary() error = %v", err)
	}

	trades, err := os.ReadFile(filepath.Join(dir, "logs", "trades.log"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(trades), "\n"), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "| BUY |") {
		t.Errorf("trades log = %q", trades)
	}

	summaries, err := os.ReadFile(filepath.Join(dir, "logs", "hourly_report.log"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(summaries), "\n") != 1 || !strings.HasPrefix(string(summaries), "2024-01-01T00:00:10Z | price=0.00") {
		t.Errorf("summary log = %q", summaries)
	}
}
