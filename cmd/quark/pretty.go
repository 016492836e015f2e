package main

import (
	"strings"

	"golang.org/x/net/html"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// prettyHTML puts every tag and non-blank text run on its own line,
// indented by depth. Tags keep their serialized form.
func prettyHTML(s string) string {
	var b strings.Builder
	depth := 0
	line := func(text string) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(text)
		b.WriteByte('\n')
	}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}
		raw := string(z.Raw())
		switch tt {
		case html.StartTagToken:
			line(raw)
			name, _ := z.TagName()
			if !voidElements[string(name)] {
				depth++
			}
		case html.EndTagToken:
			if depth > 0 {
				depth--
			}
			line(raw)
		case html.TextToken:
			if text := strings.TrimSpace(raw); text != "" {
				line(text)
			}
		default:
			line(raw)
		}
	}
}
