// Package metrics turns subscription lifecycle events into Prometheus series.
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector(reg)
//	store, err := subscription.NewStore(ctx, storage,
//		subscription.WithObserver(collector.Observe),
//	)
//
// Exported series:
//
//	paywall_subscription_events_total{event,plan}  counter
//	paywall_subscription_active{plan}              gauge, 1 for the active plan
package metrics
