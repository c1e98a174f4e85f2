package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "engine"

// Command results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics holds the engine instruments on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	commands      *prometheus.CounterVec
	fills         *prometheus.CounterVec
	snapshots     *prometheus.CounterVec
	outboxDropped prometheus.Counter
	publishErrors *prometheus.CounterVec
	commandOffset prometheus.Gauge
	restingOrders *prometheus.GaugeVec
}

// New creates and registers the engine instruments.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed by type and result.",
		}, []string{"type", "result"}),
		fills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fills_total",
			Help:      "Fills produced per market.",
		}, []string{"market"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Snapshot attempts by result.",
		}, []string{"result"}),
		outboxDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_dropped_total",
			Help:      "Events dropped because the outbox was full.",
		}),
		publishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed event publications by kind.",
		}, []string{"kind"}),
		commandOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "command_offset",
			Help:      "Offset of the last processed command.",
		}),
		restingOrders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resting_orders",
			Help:      "Orders resting in the book per market.",
		}, []string{"market"}),
	}

	m.registry.MustRegister(
		m.commands,
		m.fills,
		m.snapshots,
		m.outboxDropped,
		m.publishErrors,
		m.commandOffset,
		m.restingOrders,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveCommand(commandType, result string) {
	m.commands.WithLabelValues(commandType, result).Inc()
}

func (m *Metrics) ObserveFills(market string, n int) {
	if n > 0 {
		m.fills.WithLabelValues(market).Add(float64(n))
	}
}

func (m *Metrics) ObserveSnapshot(result string) {
	m.snapshots.WithLabelValues(result).Inc()
}

func (m *Metrics) OutboxDropped() {
	m.outboxDropped.Inc()
}

func (m *Metrics) PublishFailed(kind string) {
	m.publishErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetCommandOffset(offset int64) {
	m.commandOffset.Set(float64(offset))
}

func (m *Metrics) SetRestingOrders(market string, n int) {
	m.restingOrders.WithLabelValues(market).Set(float64(n))
}
