/*
Package observability provides tools for monitoring the Tabula engine.

Metrics exposes Prometheus counters fed by lifecycle hooks; LogHooks writes the
same events as structured log records. Both return domain.LifecycleHooks and
can be combined with LifecycleHooks.Merge.
*/
package observability
