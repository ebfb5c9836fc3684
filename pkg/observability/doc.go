/*
Package observability provides tools for monitoring machine executions.

Everything here plugs into the engine through domain.LifecycleHooks:
Metrics records Prometheus counters and histograms, LogHooks writes one
structured log line per event, and Aggregator fans a single hook set out to
several consumers.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	agg := observability.NewAggregator()
	agg.Add(metrics.Hooks())
	agg.Add(observability.LogHooks(logger))

	m, err := machine.Build(def, machine.WithLifecycleHooks(agg.Hooks()))
*/
package observability
