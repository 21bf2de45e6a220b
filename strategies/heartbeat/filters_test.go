package heartbeat

import (
	"heartbeat/types"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestVolatilityFilter(t *testing.T) {
	tests := []struct {
		name      string
		window    int
		maxMove   string
		prices    []string
		wantMove  string
		wantKnown bool
		wantAllow bool
	}{
		{"undefined with one price", 3, "0.01", []string{"100"}, "0", false, true},
		{"calm window allows", 3, "0.05", []string{"100", "101", "102"}, "0.02", true, true},
		{"boundary allows", 2, "0.02", []string{"100", "102"}, "0.02", true, true},
		{"wild window blocks", 3, "0.05", []string{"100", "110", "106"}, "0.06", true, false},
		{"window slides past old prices", 2, "0.05", []string{"50", "100", "101"}, "0.01", true, true},
		{"disabled window never measures", 0, "0", []string{"100", "200"}, "0", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewVolatilityFilter(tt.window, d(tt.maxMove))
			for i, p := range tt.prices {
				f.Observe(types.NewTick(t0.Add(time.Duration(i)*time.Second), d(p)))
			}
			move, known := f.Volatility()
			if known != tt.wantKnown || !move.Equal(d(tt.wantMove)) {
				t.Errorf("Volatility() = %v, %v, want %v, %v", move, known, tt.wantMove, tt.wantKnown)
			}
			if got := f.AllowEntry(types.Tick{}, View{}); got != tt.wantAllow {
				t.Errorf("AllowEntry() = %v, want %v", got, tt.wantAllow)
			}
		})
	}
}

func TestStrategy_FiltersVetoEntry(t *testing.T) {
	guard := &TimeframeGuard{}
	oracle := NewOracle()
	var seen View
	recorder := EntryFilterFunc(func(_ types.Tick, v View) bool {
		seen = v
		return true
	})

	tests := []struct {
		name  string
		setup func()
		want  types.Side
	}{
		{"all filters allow", func() {}, types.SideTypeBuy},
		{"guard blocks", guard.Block, ""},
		{"oracle holds", func() { oracle.Set(OracleHold) }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard.Unblock()
			oracle.Set(OracleEnter)
			tt.setup()

			s := New(defaultConfig(), guard, oracle, recorder)
			got := feed(s, t0, "100", "102")
			if got[1] != tt.want {
				t.Errorf("signal = %q, want %q", got[1], tt.want)
			}
			if tt.want == "" && s.Phase() != PhaseIdle {
				t.Errorf("phase = %s, want idle", s.Phase())
			}
		})
	}
	if seen.Phase != PhaseIdle || !seen.RecentLow.Equal(d("100")) {
		t.Errorf("filter view = %+v, want idle with low 100", seen)
	}
}

func TestStrategy_VetoKeepsLowForLaterEntry(t *testing.T) {
	oracle := NewOracle()
	oracle.Set(OracleHold)
	s := New(defaultConfig(), oracle)

	got := feed(s, t0, "100", "102")
	if got[1] != "" {
		t.Fatalf("entry while oracle holds")
	}
	oracle.Set(OracleEnter)
	if sig := s.OnTick(types.NewTick(t0.Add(time.Minute), d("101"))); sig == nil || sig.Side != types.SideTypeBuy {
		t.Errorf("expected entry against the kept low of 100, got %v", sig)
	}
}

func TestStrategy_ObserversSeeCooldownTicks(t *testing.T) {
	vol := NewVolatilityFilter(2, decimal.NewFromInt(1))
	s := New(defaultConfig(), vol)
	s.state = cooldown{until: t0.Add(time.Hour)}

	s.OnTick(types.NewTick(t0, d("100")))
	s.OnTick(types.NewTick(t0.Add(time.Second), d("150")))
	move, ok := vol.Volatility()
	if !ok || !move.Equal(d("0.5")) {
		t.Errorf("Volatility() = %v, %v, want 0.5 from cooldown ticks", move, ok)
	}
}

func TestOracle_DefaultsToEnter(t *testing.T) {
	o := NewOracle()
	if o.Signal() != OracleEnter || !o.AllowEntry(types.Tick{}, View{}) {
		t.Errorf("new oracle = %s, want ENTER", o.Signal())
	}
}
