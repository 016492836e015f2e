package devtools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/metrics"
	"github.com/quarkc-go/quark/pkg/vdom"
)

type fixture struct {
	t         *testing.T
	r         *vdom.Renderer
	container *dom.Node
	server    *Server
	ts        *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc := dom.NewDocument()
	container := doc.CreateElement("main")
	_ = doc.Body().AppendChild(container)
	r := vdom.New(doc)

	reg := prometheus.NewRegistry()
	c := metrics.New(metrics.WithRegistry(reg))
	c.Attach(r)

	s := New(r.Runtime(), container, WithMetrics(c, reg))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Runtime().Loop().Run(ctx)
	}()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		closeCtx, stop := context.WithTimeout(context.Background(), time.Second)
		defer stop()
		_ = s.Close(closeCtx)
		cancel()
		<-done
	})
	return &fixture{t: t, r: r, container: container, server: s, ts: ts}
}

// render renders v on the loop goroutine and waits for it.
func (f *fixture) render(v any) {
	f.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.r.Runtime().Loop().Call(ctx, func() { f.r.Render(v, f.container) }); err != nil {
		f.t.Fatalf("render: %v", err)
	}
}

func (f *fixture) get(path string) (int, string) {
	f.t.Helper()
	resp, err := http.Get(f.ts.URL + path)
	if err != nil {
		f.t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.t.Fatalf("read %s: %v", path, err)
	}
	return resp.StatusCode, string(body)
}

func TestHTMLAndStats(t *testing.T) {
	f := newFixture(t)
	f.render(vdom.P("hi"))

	code, body := f.get("/html")
	if code != http.StatusOK || body != "<main><p>hi</p></main>" {
		t.Errorf("GET /html = %d %q, want 200 <main><p>hi</p></main>", code, body)
	}

	code, body = f.get("/stats")
	if code != http.StatusOK {
		t.Fatalf("GET /stats = %d", code)
	}
	var stats Stats
	if err := json.Unmarshal([]byte(body), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Nodes != 3 {
		t.Errorf("nodes = %d, want 3", stats.Nodes)
	}
	if stats.Mutations == 0 {
		t.Error("mutations = 0")
	}
	if stats.Metrics == nil || stats.Metrics.Renders != 1 {
		t.Errorf("metrics = %+v, want one render", stats.Metrics)
	}

	_, body = f.get("/metrics")
	if !strings.Contains(body, "quark_renders_total 1") {
		t.Errorf("GET /metrics missing quark_renders_total:\n%s", body)
	}

	code, body = f.get("/")
	if code != http.StatusOK || !strings.Contains(body, "quark devtools") {
		t.Errorf("GET / = %d, want the devtools page", code)
	}
}

func TestWebSocketStreamsMutations(t *testing.T) {
	f := newFixture(t)
	f.render(vdom.P("hi"))

	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Type != MessageHello || hello.HTML != "<main><p>hi</p></main>" {
		t.Errorf("hello = %+v", hello)
	}

	f.render(vdom.P("bye"))

	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read mutation: %v", err)
	}
	if msg.Type != MessageMutation || msg.Mutation == nil {
		t.Fatalf("message = %+v, want a mutation", msg)
	}
	if msg.Mutation.Op != dom.OpSetData || msg.Mutation.Value != "bye" {
		t.Errorf("mutation = %+v, want setData bye", *msg.Mutation)
	}
	if msg.Mutation.NodeID == 0 {
		t.Error("mutation has no node id")
	}
	if n := f.server.ClientCount(); n != 1 {
		t.Errorf("ClientCount() = %d, want 1", n)
	}
}

func TestReadsNeedTheLoop(t *testing.T) {
	doc := dom.NewDocument()
	container := doc.CreateElement("main")
	s := New(vdom.New(doc).Runtime(), container)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/html", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 while the loop is not running", rec.Code)
	}
}
