/*
Package observability turns dialog lifecycle events into structured logs and
Prometheus metrics.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Hooks(logger, metrics)

The returned domain.LifecycleHooks are passed to the session dispatcher.
*/
package observability
