package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"heartbeat/types"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

func TestRecorder(t *testing.T) {
	r := New("BTC")
	r.RecordTick(types.Summary{
		Price:       decimal.NewFromInt(101),
		Equity:      decimal.NewFromInt(1_000_050),
		Cash:        decimal.NewFromInt(900_000),
		PositionQty: decimal.RequireFromString("990.5"),
		FeesPaid:    decimal.RequireFromString("50.25"),
	}, time.Millisecond)
	r.RecordTick(types.Summary{Price: decimal.NewFromInt(102)}, time.Millisecond)
	r.RecordTrade(types.SideTypeBuy)
	r.RecordTrade(types.SideTypeBuy)
	r.RecordTrade(types.SideTypeSell)
	r.RecordRejected(types.SideTypeBuy, "insufficient_cash")

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"ticks", testutil.ToFloat64(r.ticksTotal), 2},
		{"buys", testutil.ToFloat64(r.tradesTotal.WithLabelValues("BUY")), 2},
		{"sells", testutil.ToFloat64(r.tradesTotal.WithLabelValues("SELL")), 1},
		{"rejected", testutil.ToFloat64(r.rejectedTotal.WithLabelValues("BUY", "insufficient_cash")), 1},
		{"last price", testutil.ToFloat64(r.lastPrice), 102},
		{"equity", testutil.ToFloat64(r.equity), 0},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if n := testutil.CollectAndCount(r.tickLatency); n != 1 {
		t.Errorf("latency series = %d, want 1", n)
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New("ETH")
	r.RecordTrade(types.SideTypeSell)
	path := filepath.Join(t.TempDir(), "heartbeat.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `heartbeat_trades_total{side="SELL",symbol="ETH"} 1`
	if !strings.Contains(string(b), want) {
		t.Errorf("textfile missing %q:\n%s", want, b)
	}
}
