package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/paywall/pkg/subscription"
)

// Collector records subscription events.
type Collector struct {
	Events *prometheus.CounterVec
	Active *prometheus.GaugeVec
}

// NewCollector creates the series and registers them with reg.
// Panics if registration fails, like prometheus.MustRegister.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paywall_subscription_events_total",
				Help: "Subscription lifecycle events by type and plan",
			},
			[]string{"event", "plan"},
		),
		Active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "paywall_subscription_active",
				Help: "1 for the plan that is currently active, 0 otherwise",
			},
			[]string{"plan"},
		),
	}
	for _, p := range subscription.PaidPlans() {
		c.Active.WithLabelValues(p.String()).Set(0)
	}
	if reg != nil {
		reg.MustRegister(c.Events, c.Active)
	}
	return c
}

// Observe is a subscription.Observer.
func (c *Collector) Observe(_ context.Context, ev subscription.Event) {
	c.Events.WithLabelValues(string(ev.Type), ev.Plan.String()).Inc()

	switch ev.Type {
	case subscription.EventSubscribed, subscription.EventRestored:
		for _, p := range subscription.PaidPlans() {
			v := 0.0
			if p == ev.Plan {
				v = 1
			}
			c.Active.WithLabelValues(p.String()).Set(v)
		}
	case subscription.EventCancelled, subscription.EventExpired:
		for _, p := range subscription.PaidPlans() {
			c.Active.WithLabelValues(p.String()).Set(0)
		}
	}
}

// Handler serves the metrics gathered by g in the text exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
