package engine

import (
	"heartbeat/types"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type Report struct {
	// Meta / period info
	StartDate      time.Time
	EndDate        time.Time
	TotalPeriod    time.Duration
	Ticks          int
	TotalTrades    int
	RejectedOrders int
	OpenPosition   bool

	// Absolute performance
	NetProfit            decimal.Decimal
	NetAvgProfitPerTrade decimal.Decimal
	FinalEquity          decimal.Decimal
	NetPnL               decimal.Decimal

	// Trade-level distribution metrics
	AvgWin  decimal.Decimal
	AvgLoss decimal.Decimal

	// Drawdown & loss streak metrics
	MaxDrawdown          decimal.Decimal
	MaxDrawdownPercent   decimal.Decimal
	MaxDrawdownDuration  time.Duration
	MaxConsecutiveLosses int

	// Costs
	TotalFees     decimal.Decimal
	TotalSlippage decimal.Decimal
}

// roundTrip groups the trades between leaving and returning to a flat
// position.
type roundTrip struct {
	buys   []types.TradeEvent
	sells  []types.TradeEvent
	closed bool
}

func (r roundTrip) realized() bool {
	return r.closed && len(r.buys) > 0 && len(r.sells) > 0
}

// net is sell proceeds minus buy cost, both after fees.
func (r roundTrip) net() decimal.Decimal {
	net := decimal.Zero
	for _, b := range r.buys {
		net = net.Sub(b.Notional()).Sub(b.Fee)
	}
	for _, s := range r.sells {
		net = net.Add(s.Notional()).Sub(s.Fee)
	}
	return net
}

func (e *Engine) generateReport() *Report {
	sim := e.simulation
	trips := tradesToRoundTrips(e.ledger.Trades())

	report := &Report{
		Ticks:          sim.ticks,
		RejectedOrders: sim.rejected,
		OpenPosition:   e.ledger.PositionQty().IsPositive(),
	}
	if sim.firstTick != nil && sim.lastTick != nil {
		report.StartDate = sim.firstTick.Timestamp
		report.EndDate = sim.lastTick.Timestamp
		report.TotalPeriod = report.EndDate.Sub(report.StartDate)
		summary := e.ledger.Summary(sim.lastTick.Price)
		report.FinalEquity = summary.Equity
		report.NetPnL = summary.NetPnL
		report.TotalFees = summary.FeesPaid
		report.TotalSlippage = summary.SlippagePaid
	}
	for _, trip := range trips {
		if trip.realized() {
			report.TotalTrades++
		}
	}

	var wg sync.WaitGroup
	wg.Go(func() {
		report.NetProfit, report.NetAvgProfitPerTrade = calcNetProfit(trips)
	})
	wg.Go(func() {
		report.AvgWin, report.AvgLoss = calcAvgWinLossPerTrade(trips)
	})
	wg.Go(func() {
		report.MaxDrawdown, report.MaxDrawdownPercent, report.MaxDrawdownDuration = calcDrawdownMetrics(sim.equityCurve)
	})
	wg.Go(func() {
		report.MaxConsecutiveLosses = calcMaxConsecutiveLosses(trips)
	})
	wg.Wait()

	return report
}

func calcNetProfit(trips []roundTrip) (decimal.Decimal, decimal.Decimal) {
	netProfit := decimal.Zero
	realizedTrades := 0
	for _, trip := range trips {
		if !trip.realized() {
			continue
		}
		netProfit = netProfit.Add(trip.net())
		realizedTrades++
	}
	if realizedTrades == 0 {
		return decimal.Zero, decimal.Zero
	}
	return netProfit, netProfit.Div(decimal.NewFromInt(int64(realizedTrades)))
}

func calcAvgWinLossPerTrade(trips []roundTrip) (decimal.Decimal, decimal.Decimal) {
	sumWins := decimal.Zero
	sumLosses := decimal.Zero // store absolute loss amounts
	winCount := 0
	lossCount := 0

	for _, trip := range trips {
		if !trip.realized() {
			continue
		}
		net := trip.net()
		switch {
		case net.GreaterThan(decimal.Zero):
			sumWins = sumWins.Add(net)
			winCount++
		case net.LessThan(decimal.Zero):
			sumLosses = sumLosses.Add(net.Abs())
			lossCount++
		}
	}

	avgWin := decimal.Zero
	avgLoss := decimal.Zero
	if winCount > 0 {
		avgWin = sumWins.Div(decimal.NewFromInt(int64(winCount)))
	}
	if lossCount > 0 {
		avgLoss = sumLosses.Div(decimal.NewFromInt(int64(lossCount)))
	}
	return avgWin, avgLoss
}

// calcDrawdownMetrics assumes the curve is in chronological order, which the
// simulation guarantees.
func calcDrawdownMetrics(curve []EquityPoint) (decimal.Decimal, decimal.Decimal, time.Duration) {
	if len(curve) == 0 {
		return decimal.Zero, decimal.Zero, 0
	}

	peak := decimal.Zero
	var peakTime time.Time

	maxDD := decimal.Zero
	maxDDPct := decimal.Zero
	var maxDDDuration time.Duration

	for i, point := range curve {
		equity := point.Summary.Equity

		if i == 0 || equity.GreaterThan(peak) {
			peak = equity
			peakTime = point.Time
		}

		if peak.GreaterThan(decimal.Zero) {
			dd := peak.Sub(equity)
			if dd.GreaterThan(maxDD) {
				maxDD = dd
				maxDDPct = dd.Div(peak)
				maxDDDuration = point.Time.Sub(peakTime)
			}
		}
	}

	return maxDD, maxDDPct, maxDDDuration
}

func calcMaxConsecutiveLosses(trips []roundTrip) int {
	maxLossStreak := 0
	currentStreak := 0

	for _, trip := range trips {
		if !trip.realized() {
			continue
		}
		if trip.net().LessThan(decimal.Zero) {
			currentStreak++
			if currentStreak > maxLossStreak {
				maxLossStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}

	return maxLossStreak
}

// tradesToRoundTrips walks the trade log in order; a trip ends on the sell
// that leaves the position flat. A trailing unfinished trip is returned with
// closed unset.
func tradesToRoundTrips(trades []types.TradeEvent) []roundTrip {
	var trips []roundTrip
	var cur *roundTrip

	for _, t := range trades {
		if cur == nil {
			cur = &roundTrip{}
		}
		switch t.Side {
		case types.SideTypeBuy:
			cur.buys = append(cur.buys, t)
		case types.SideTypeSell:
			cur.sells = append(cur.sells, t)
		}
		if t.PositionQty.IsZero() {
			cur.closed = true
			trips = append(trips, *cur)
			cur = nil
		}
	}
	if cur != nil {
		trips = append(trips, *cur)
	}
	return trips
}
