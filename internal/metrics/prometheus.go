package metrics

import (
	"fmt"
	"heartbeat/types"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder keeps simulation metrics on its own registry. Nothing is served
// over HTTP; WriteTextfile dumps the registry in the text exposition format
// for a node-exporter style collector.
type Recorder struct {
	registry *prometheus.Registry

	ticksTotal    prometheus.Counter
	tradesTotal   *prometheus.CounterVec
	rejectedTotal *prometheus.CounterVec
	lastPrice     prometheus.Gauge
	equity        prometheus.Gauge
	cash          prometheus.Gauge
	positionQty   prometheus.Gauge
	realizedPnL   prometheus.Gauge
	feesPaid      prometheus.Gauge
	tickLatency   prometheus.Histogram
}

func New(symbol string) *Recorder {
	labels := prometheus.Labels{"symbol": symbol}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "heartbeat_ticks_total",
			Help:        "Total number of price ticks processed",
			ConstLabels: labels,
		}),
		tradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "heartbeat_trades_total",
			Help:        "Total number of executed trades",
			ConstLabels: labels,
		}, []string{"side"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "heartbeat_rejected_orders_total",
			Help:        "Total number of orders the ledger refused",
			ConstLabels: labels,
		}, []string{"side", "reason"}),
		lastPrice:   newGauge("heartbeat_last_price", "Last processed price", labels),
		equity:      newGauge("heartbeat_equity", "Cash plus marked position value", labels),
		cash:        newGauge("heartbeat_cash", "Available cash", labels),
		positionQty: newGauge("heartbeat_position_qty", "Held position quantity", labels),
		realizedPnL: newGauge("heartbeat_realized_pnl", "Realized profit and loss", labels),
		feesPaid:    newGauge("heartbeat_fees_paid", "Cumulative fees paid", labels),
		tickLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "heartbeat_tick_duration_seconds",
			Help:        "Time spent processing one tick",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
	}
	r.registry.MustRegister(
		r.ticksTotal, r.tradesTotal, r.rejectedTotal,
		r.lastPrice, r.equity, r.cash, r.positionQty, r.realizedPnL, r.feesPaid,
		r.tickLatency,
	)
	return r
}

func newGauge(name, help string, labels prometheus.Labels) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help, ConstLabels: labels})
}

// RecordTick records one processed tick and the ledger state after it.
func (r *Recorder) RecordTick(summary types.Summary, elapsed time.Duration) {
	r.ticksTotal.Inc()
	r.lastPrice.Set(summary.Price.InexactFloat64())
	r.equity.Set(summary.Equity.InexactFloat64())
	r.cash.Set(summary.Cash.InexactFloat64())
	r.positionQty.Set(summary.PositionQty.InexactFloat64())
	r.realizedPnL.Set(summary.RealizedPnL.InexactFloat64())
	r.feesPaid.Set(summary.FeesPaid.InexactFloat64())
	r.tickLatency.Observe(elapsed.Seconds())
}

// RecordTrade records an executed trade.
func (r *Recorder) RecordTrade(side types.Side) {
	r.tradesTotal.WithLabelValues(string(side)).Inc()
}

// RecordRejected records an order the ledger refused.
func (r *Recorder) RecordRejected(side types.Side, reason string) {
	r.rejectedTotal.WithLabelValues(string(side), reason).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile atomically writes the current metric values to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
