package errors

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{name: "render", code: "Q002", wantMsg: "Render panicked", wantCat: CategoryRender},
		{name: "reactive", code: "Q006", wantMsg: "Circular update", wantCat: CategoryReactive},
		{name: "decode", code: "Q021", wantMsg: "Invalid node", wantCat: CategoryDecode},
		{name: "unknown", code: "Q999", wantMsg: "Unknown error", wantCat: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New("Q005").WithDetail(`key "a" repeated`)
	if got, want := err.Error(), `Q005: Duplicate sibling key: key "a" repeated`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := New("Q150").Wrap(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !errors.Is(err, New("Q150")) {
		t.Error("errors.Is should match by code")
	}
	if errors.Is(err, New("Q151")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestFromPanic(t *testing.T) {
	err := FromPanic("Q002", "boom")
	if err.Detail != "boom" {
		t.Errorf("Detail = %q, want boom", err.Detail)
	}

	cause := errors.New("bad")
	err = FromPanic("Q002", cause)
	if !errors.Is(err, cause) {
		t.Error("panic error values should be wrapped")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "Q150") != nil {
		t.Error("FromError(nil) should be nil")
	}
	orig := New("Q121")
	if got := FromError(orig, "Q150"); got != orig {
		t.Error("FromError should return an existing QuarkError unchanged")
	}
}

func TestFormatWithLocation(t *testing.T) {
	DisableColors()
	defer ColorsFor(os.Stderr)

	dir := t.TempDir()
	path := filepath.Join(dir, "page.yaml")
	content := "tag: div\nchildren:\n  - tag: p\n    text: hi\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out := New("Q021").WithLocation(path, 3, 5).Format()
	for _, want := range []string{"ERROR Q021: Invalid node", path + ":3:5", "→    3 │   - tag: p", "Hint:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("Q120")
	if got := err.FormatCompact(); got != "Q120: Config file not found" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q longer than 20", l)
		}
	}
}

func TestRegistryCodesHaveMessages(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template", code)
		}
	}
}

func TestPrintErrorUnwraps(t *testing.T) {
	DisableColors()
	defer ColorsFor(os.Stderr)

	var b strings.Builder
	PrintError(&b, fmt.Errorf("render page: %w", New("Q140").WithDetail("page.yaml")))
	if got := b.String(); !strings.Contains(got, "ERROR Q140: Input file not readable") {
		t.Errorf("PrintError() = %q, want the formatted Q140", got)
	}

	b.Reset()
	PrintError(&b, errors.New("plain"))
	if got := b.String(); !strings.Contains(got, "ERROR: plain") {
		t.Errorf("PrintError() = %q, want a plain error line", got)
	}
}
