// Package devtools serves a live view of a rendered container.
//
// Routes:
//
//	GET /         page showing the HTML and a mutation log
//	GET /html     the container's outer HTML
//	GET /stats    JSON counters
//	GET /ws       websocket: a hello message with the HTML, then one
//	              message per document mutation
//	GET /metrics  Prometheus metrics, when configured with WithMetrics
//
// The server never touches the document from an HTTP goroutine. Reads are
// posted to the runtime's loop, and mutations are broadcast from the loop
// goroutine as they are recorded.
//
//	s := devtools.New(rt, container, devtools.WithMetrics(c, reg))
//	go rt.Loop().Run(ctx)
//	err := s.ListenAndServe(ctx, "localhost:7070")
package devtools
