package feature

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// builder accumulates escaped HTML for one fragment.
type builder struct {
	strings.Builder
}

func (b *builder) raw(s string) *builder {
	b.WriteString(s)
	return b
}

func (b *builder) rawf(format string, args ...any) *builder {
	fmt.Fprintf(&b.Builder, format, args...)
	return b
}

func (b *builder) text(s string) *builder {
	b.WriteString(templ.EscapeString(s))
	return b
}

// open writes a start tag. attrs are name/value pairs; values are escaped.
func (b *builder) open(tag string, attrs ...string) *builder {
	b.WriteString("<")
	b.WriteString(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" && attrs[i] != "alt" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(attrs[i])
		b.WriteString(`="`)
		b.WriteString(templ.EscapeString(attrs[i+1]))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b
}

func (b *builder) close(tag string) *builder {
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
	return b
}

// elem writes a complete element with escaped text content.
func (b *builder) elem(tag, text string, attrs ...string) *builder {
	return b.open(tag, attrs...).text(text).close(tag)
}

// link writes an anchor to an external target. The href goes through
// templ.URL so javascript: and similar schemes are neutralised.
func (b *builder) link(href, text, class, style string, attrs ...string) *builder {
	all := append([]string{
		"href", safeURL(href),
		"class", class,
		"style", style,
		"target", "_blank",
		"rel", "noopener noreferrer",
	}, attrs...)
	return b.elem("a", text, all...)
}

func (b *builder) img(src, alt, class string) *builder {
	if strings.TrimSpace(src) == "" {
		return b
	}
	return b.open("img", "src", safeURL(src), "alt", alt, "class", class, "loading", "lazy")
}

func (b *builder) component() templ.Component {
	return static(b.String())
}

// static wraps pre-rendered markup as a templ component.
func static(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}

func safeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return "#"
	}
	return string(templ.URL(u))
}

// blockAttrs are the attributes every feature root carries.
func blockAttrs(kind string, extra ...string) []string {
	return append([]string{"class", "nf-block", "data-feature", kind}, extra...)
}
