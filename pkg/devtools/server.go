package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/metrics"
	"github.com/quarkc-go/quark/pkg/reactive"
)

// MessageType is the type of a websocket message.
type MessageType string

const (
	// MessageHello is the first message on every connection. It carries
	// the container's current HTML.
	MessageHello MessageType = "hello"

	// MessageMutation carries one document write.
	MessageMutation MessageType = "mutation"
)

// Message is sent to websocket clients.
type Message struct {
	Type     MessageType   `json:"type"`
	HTML     string        `json:"html,omitempty"`
	Mutation *dom.Mutation `json:"mutation,omitempty"`
}

// Stats is the body of GET /stats.
type Stats struct {
	Mutations int            `json:"mutations"`
	Nodes     int            `json:"nodes"`
	Clients   int            `json:"clients"`
	Flushes   int            `json:"flushes"`
	Metrics   *metrics.Stats `json:"metrics,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics adds the collector's values to /stats and, when g is not
// nil, serves g on /metrics.
func WithMetrics(c *metrics.Collector, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.collector = c
		s.gatherer = g
	}
}

// WithClientBuffer sets how many messages may queue for a slow client
// before it is dropped (default: 256).
func WithClientBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// Server exposes a container over HTTP: its HTML, counters, and a live
// stream of the document's mutation records.
//
// The document is only read on the runtime's loop goroutine: handlers post
// their reads with Loop.Call, so the loop must be running (see
// reactive.Loop.Run) while the server serves.
type Server struct {
	rt        *reactive.Runtime
	doc       *dom.Document
	container *dom.Node
	logger    *slog.Logger
	collector *metrics.Collector
	gatherer  prometheus.Gatherer
	buffer    int

	router   chi.Router
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}

	stopObserving func()
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// New creates a Server for container. It starts observing the document
// right away; call it before the loop starts or from the loop goroutine.
func New(rt *reactive.Runtime, container *dom.Node, opts ...Option) *Server {
	s := &Server{
		rt:        rt,
		doc:       container.OwnerDocument(),
		container: container,
		logger:    slog.Default(),
		buffer:    256,
		clients:   make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local tooling
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/html", s.handleHTML)
	r.Get("/stats", s.handleStats)
	r.Get("/ws", s.handleWebSocket)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r

	s.stopObserving = s.doc.Observe(s.broadcastMutation)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("devtools listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeClients()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops observing the document and disconnects every client.
func (s *Server) Close(ctx context.Context) error {
	err := s.rt.Loop().Call(ctx, s.stopObserving)
	s.closeClients()
	return err
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	var html string
	if err := s.rt.Loop().Call(r.Context(), func() { html = s.container.OuterHTML() }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats Stats
	err := s.rt.Loop().Call(r.Context(), func() {
		stats.Mutations = s.doc.MutationCount()
		stats.Nodes = countNodes(s.container)
		stats.Flushes = s.rt.Scheduler().Flushes()
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	stats.Clients = s.ClientCount()
	if s.collector != nil {
		m := s.collector.Stats()
		stats.Metrics = &m
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

// handleWebSocket registers the connection, sends the hello message and
// then keeps reading until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, s.buffer)}

	// Register and read the HTML in the same loop task, so the client
	// sees every mutation after the hello snapshot and none before it.
	var hello []byte
	err = s.rt.Loop().Call(r.Context(), func() {
		hello, _ = json.Marshal(Message{Type: MessageHello, HTML: s.container.OuterHTML()})
		s.mu.Lock()
		s.clients[c] = struct{}{}
		s.mu.Unlock()
	})
	if err != nil {
		conn.Close()
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		s.drop(c)
		conn.Close()
		return
	}

	go s.writeLoop(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.drop(c)
}

func (s *Server) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.drop(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}

// broadcastMutation runs on the loop goroutine. Clients whose queue is
// full are dropped rather than blocking the loop.
func (s *Server) broadcastMutation(m dom.Mutation) {
	s.mu.RLock()
	n := len(s.clients)
	s.mu.RUnlock()
	if n == 0 {
		return
	}
	data, err := json.Marshal(Message{Type: MessageMutation, Mutation: &m})
	if err != nil {
		return
	}

	s.mu.RLock()
	var slow []*client
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	s.mu.RUnlock()

	for _, c := range slow {
		s.logger.Warn("devtools client too slow, dropping", "remote", c.conn.RemoteAddr().String())
		s.drop(c)
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.close()
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()
	for c := range clients {
		c.close()
	}
}

func countNodes(n *dom.Node) int {
	count := 1
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		count += countNodes(c)
	}
	if sr := n.ShadowRoot(); sr != nil {
		count += countNodes(sr)
	}
	return count
}
