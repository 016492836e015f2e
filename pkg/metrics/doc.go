// Package metrics exports Prometheus metrics for a quark renderer.
//
// A Collector observes a renderer through its hooks, a document through its
// mutation records and a runtime through its scheduler hooks:
//
//	c := metrics.New(
//	    metrics.WithNamespace("myapp"),
//	    metrics.WithRegistry(reg),
//	)
//	c.Attach(renderer)
//
// Stats reads the current values without a scrape, for CLI output and the
// devtools server.
package metrics
