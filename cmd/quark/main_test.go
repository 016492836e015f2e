package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quarkc-go/quark/internal/config"
	qerrors "github.com/quarkc-go/quark/internal/errors"
	"github.com/quarkc-go/quark/pkg/snapshot"
)

const page = `
tag: div
props:
  id: app
children:
  - tag: p
    children: [hello]
  - tag: br
`

func writePage(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.yaml")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPrettyHTML(t *testing.T) {
	got := prettyHTML(`<div id="app"><p>hello</p><br><x-a><template shadowrootmode="open"><b>x</b></template></x-a></div>`)
	want := `<div id="app">
  <p>
    hello
  </p>
  <br>
  <x-a>
    <template shadowrootmode="open">
      <b>
        x
      </b>
    </template>
  </x-a>
</div>
`
	if got != want {
		t.Errorf("prettyHTML() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderToStdout(t *testing.T) {
	var out bytes.Buffer
	err := runRender(context.Background(), &out, config.New(), writePage(t, page), renderOptions{})
	if err != nil {
		t.Fatalf("runRender() error: %v", err)
	}
	if got, want := out.String(), "<div id=\"app\"><p>hello</p><br></div>\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRenderSkipsForeignNodes(t *testing.T) {
	var out bytes.Buffer
	src := "tag: div\nchildren:\n  - tag: p\n    constructor: Foreign\n  - tag: b\n"
	if err := runRender(context.Background(), &out, config.New(), writePage(t, src), renderOptions{}); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}
	if got, want := out.String(), "<div><b></b></div>\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRenderToSnapshotDir(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	opts := renderOptions{pretty: true, out: dir, name: "home.html"}
	if err := runRender(context.Background(), &out, config.New(), writePage(t, page), opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}
	if !strings.Contains(out.String(), "Saved "+filepath.Join(dir, "home.html")) {
		t.Errorf("output = %q, want the saved location", out.String())
	}

	store, err := snapshot.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	html, err := store.Get(context.Background(), "home.html")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !strings.HasPrefix(html, "<div id=\"app\">\n  <p>\n") {
		t.Errorf("snapshot is not indented:\n%s", html)
	}
}

func TestRenderErrors(t *testing.T) {
	ctx := context.Background()
	cfg := config.New()
	var out bytes.Buffer

	err := runRender(ctx, &out, cfg, filepath.Join(t.TempDir(), "missing.yaml"), renderOptions{})
	if !qerrors.HasCode(err, "Q140") {
		t.Errorf("missing file error = %v, want Q140", err)
	}

	err = runRender(ctx, &out, cfg, writePage(t, "tag: [nope"), renderOptions{})
	if !qerrors.HasCode(err, "Q020") {
		t.Errorf("malformed file error = %v, want Q020", err)
	}

	err = runRender(ctx, &out, cfg, writePage(t, page), renderOptions{out: "s3://"})
	if !qerrors.HasCode(err, "Q141") {
		t.Errorf("bad target error = %v, want Q141", err)
	}
}

func TestBenchKeepsDOMConsistent(t *testing.T) {
	opts := benchOptions{iterations: 3, rows: 50, verify: true}
	results, err := runBench(opts)
	if err != nil {
		t.Fatalf("runBench() error: %v", err)
	}
	if len(results) != len(benchmarks) {
		t.Fatalf("results = %d, want %d", len(results), len(benchmarks))
	}

	writes := make(map[string]int)
	for _, r := range results {
		writes[r.name] = r.writes
	}
	if writes["swap rows"] >= writes["create rows"] {
		t.Errorf("swap writes %d, not fewer than create writes %d", writes["swap rows"], writes["create rows"])
	}
	if writes["remove row"] == 0 {
		t.Error("remove row made no DOM writes")
	}

	var out bytes.Buffer
	printBench(&out, opts, results)
	for _, name := range []string{"create rows", "reverse rows", "dom writes", "50 rows"} {
		if !strings.Contains(strings.ToLower(out.String()), name) {
			t.Errorf("table missing %q:\n%s", name, out.String())
		}
	}
}

func TestVersionShort(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got := out.String(); got != version+"\n" {
		t.Errorf("output = %q, want %q", got, version+"\n")
	}
}
