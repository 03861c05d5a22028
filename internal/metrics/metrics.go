package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Collector owns a private registry so tests can build as many as they like.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	pulloutTransitions *prometheus.CounterVec
	returnRefusals     *prometheus.CounterVec
	stockMovements     *prometheus.CounterVec
	stockQuantity      *prometheus.CounterVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		pulloutTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pullout_transitions_total",
				Help: "Pullout request workflow transitions",
			},
			[]string{"action"},
		),
		returnRefusals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pullout_return_refusals_total",
				Help: "Return attempts refused by a business rule",
			},
			[]string{"reason"},
		),
		stockMovements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_movements_total",
				Help: "Ledger entries written",
			},
			[]string{"reason"},
		),
		stockQuantity: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_quantity_moved_total",
				Help: "Absolute supply quantity moved through the ledger",
			},
			[]string{"direction"},
		),
	}

	registry.MustRegister(
		c.pulloutTransitions,
		c.returnRefusals,
		c.stockMovements,
		c.stockQuantity,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// PulloutTransition counts created, approved, rejected, returned and deleted events.
func (c *Collector) PulloutTransition(action string) {
	if c == nil {
		return
	}
	c.pulloutTransitions.WithLabelValues(action).Inc()
}

func (c *Collector) ReturnRefused(reason string) {
	if c == nil {
		return
	}
	c.returnRefusals.WithLabelValues(reason).Inc()
}

// StockMoved records one ledger entry. Negative deltas count as outbound.
func (c *Collector) StockMoved(reason string, delta decimal.Decimal) {
	if c == nil {
		return
	}
	c.stockMovements.WithLabelValues(reason).Inc()

	direction := "inbound"
	if delta.IsNegative() {
		direction = "outbound"
	}
	amount, _ := delta.Abs().Float64()
	c.stockQuantity.WithLabelValues(direction).Add(amount)
}

// Handler exposes the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
