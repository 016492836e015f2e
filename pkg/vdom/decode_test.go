package vdom

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qerrors "github.com/quarkc-go/quark/internal/errors"
)

func TestDecodeRenders(t *testing.T) {
	const src = `
tag: ul
props:
  className: list
  data-n: 2
children:
  - tag: li
    key: a
    children: [one]
  - null
  - text: two
  - [three, four]
`
	v, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v.Children[0].Key != "a" {
		t.Errorf("key = %q, want a", v.Children[0].Key)
	}

	h := newHarness(t)
	h.render(v)
	if got, want := h.html(), `<ul class="list" data-n="2"><li>one</li>twothreefour</ul>`; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestDecodeJSON(t *testing.T) {
	v, err := Decode(strings.NewReader(`{"tag": "p", "props": {"id": "x"}, "children": ["hi"]}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	h := newHarness(t)
	h.render(v)
	if got, want := h.html(), `<p id="x">hi</p>`; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestDecodeEmpty(t *testing.T) {
	v, err := Decode(strings.NewReader(""))
	if v != nil || err != nil {
		t.Errorf("Decode(\"\") = %v, %v, want nil, nil", v, err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
		line int
	}{
		{"syntax", "tag: [", "Q020", 0},
		{"unknown field", "tag: p\ncolour: red\n", "Q020", 2},
		{"children not a list", "tag: p\nchildren: x\n", "Q020", 2},
		{"props not a mapping", "tag: p\nprops: [a]\n", "Q020", 2},
		{"tag and text", "tag: p\ntext: x\n", "Q021", 1},
		{"handler prop", "tag: button\nprops:\n  onclick: run\n", "Q022", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			var qe *qerrors.QuarkError
			if !errors.As(err, &qe) {
				t.Fatalf("Decode() error = %v, want a QuarkError", err)
			}
			if qe.Code != tt.code {
				t.Errorf("Code = %s, want %s", qe.Code, tt.code)
			}
			if tt.line == 0 {
				return
			}
			if qe.Location == nil || qe.Location.Line != tt.line || qe.Location.File != "<input>" {
				t.Errorf("Location = %v, want <input>:%d", qe.Location, tt.line)
			}
		})
	}
}

func TestDecodeFileReportsPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	if err := os.WriteFile(path, []byte("tag: div\nchildren:\n  - tag: p\n    text: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := DecodeFile(path)
	var qe *qerrors.QuarkError
	if !errors.As(err, &qe) {
		t.Fatalf("DecodeFile() error = %v, want a QuarkError", err)
	}
	if qe.Code != "Q021" || qe.Location.File != path || qe.Location.Line != 3 {
		t.Errorf("error = %v at %v", qe, qe.Location)
	}
	if len(qe.Context) == 0 {
		t.Error("no source context read")
	}
}

func TestConstructorNodesAreSkipped(t *testing.T) {
	const src = `
- tag: x-widget
  constructor: Widget
- tag: p
  children: [ok]
`
	v, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	h := newHarness(t)
	h.render(v)
	if got, want := h.html(), "<p>ok</p>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if !strings.Contains(h.logs.String(), "Q001") {
		t.Errorf("Q001 not logged:\n%s", h.logs)
	}
}
