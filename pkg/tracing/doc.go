// Package tracing records OpenTelemetry spans for quark renders.
//
//	tr := tracing.New(tracing.WithTracerName("myapp"))
//	tr.Attach(renderer)
//
// Every root render becomes a "quark.render" span; renders started while
// another is in progress, such as element shadow renders, become its
// children. Recovered panics are recorded as span errors. Scheduler flushes
// become "quark.flush" spans timed from the flush start.
package tracing
