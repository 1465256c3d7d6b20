/*
Package observability turns engine lifecycle hooks into Prometheus metrics.

Metrics are registered on a caller-supplied registerer so that tests and
embedding applications can keep them isolated from the default registry.
*/
package observability
