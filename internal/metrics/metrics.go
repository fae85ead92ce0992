package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the terminal server's prometheus metrics.
type Collector struct {
	polls       *prometheus.CounterVec
	transitions *prometheus.CounterVec
	openOrders  *prometheus.GaugeVec
	sessions    prometheus.Gauge
}

// NewCollector creates the metric set and registers it on the default
// registry served by the metrics endpoint.
func NewCollector() *Collector {
	c := &Collector{
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kds_order_polls_total",
				Help: "Order service poll attempts by result",
			},
			[]string{"result"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kds_transitions_total",
				Help: "State transitions attempted by operation and result",
			},
			[]string{"operation", "result"},
		),
		openOrders: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kds_open_orders",
				Help: "Open orders in the working set per terminal station",
			},
			[]string{"station"},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "kds_active_sessions",
				Help: "Terminal sessions currently logged in",
			},
		),
	}

	prometheus.MustRegister(c.polls, c.transitions, c.openOrders, c.sessions)
	return c
}

// RecordPoll counts one order poll attempt.
func (c *Collector) RecordPoll(ok bool) {
	c.polls.WithLabelValues(result(ok)).Inc()
}

// RecordTransition counts one transition attempt.
func (c *Collector) RecordTransition(operation string, ok bool) {
	c.transitions.WithLabelValues(operation, result(ok)).Inc()
}

// SetOpenOrders records the working set size for a station terminal.
func (c *Collector) SetOpenOrders(station string, n int) {
	c.openOrders.WithLabelValues(station).Set(float64(n))
}

// SessionOpened and SessionClosed track the logged-in terminal count.
func (c *Collector) SessionOpened() { c.sessions.Inc() }

func (c *Collector) SessionClosed() { c.sessions.Dec() }

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
