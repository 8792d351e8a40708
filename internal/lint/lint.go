// Package lint checks generated 404 documents for structural problems that
// the compiler must never produce and that hand-edited exports often do.
package lint

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	apperrors "github.com/fourohfour/monetizer/internal/errors"
	"github.com/fourohfour/monetizer/internal/page"
)

// Severity of an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule identifiers.
const (
	RuleMissingTitle   = "missing-title"
	RuleDuplicateBlock = "duplicate-block"
	RuleUnknownBlock   = "unknown-block"
	RuleMissingAlt     = "missing-alt-text"
	RuleUnsafeBlank    = "unsafe-target-blank"
	RuleMultipleBody   = "multiple-body"
	RuleDisabledBlock  = "disabled-block"
	RuleEmptyBlock     = "empty-block"
)

// Issue is one finding.
type Issue struct {
	Rule     string   `json:"rule" yaml:"rule"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s] %s", i.Severity, i.Rule, i.Message)
}

// Report is the result of Check.
type Report struct {
	Blocks []page.Kind `json:"blocks" yaml:"blocks"`
	Issues []Issue     `json:"issues" yaml:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r *Report) add(rule string, sev Severity, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Rule: rule, Severity: sev, Message: fmt.Sprintf(format, args...)})
}

// Check parses doc and runs every rule against it.
func Check(doc string) (*Report, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, apperrors.WrapValidation(err, apperrors.ErrCodeInvalidPage, "failed to parse HTML")
	}

	r := &Report{Blocks: blocks(root), Issues: []Issue{}}

	if bodies := countBodies(doc); bodies > 1 {
		r.add(RuleMultipleBody, SeverityError, "document has %d <body> elements", bodies)
	}

	title := find(root, atom.Title)
	if title == nil || strings.TrimSpace(text(title)) == "" {
		r.add(RuleMissingTitle, SeverityError, "document has no <title>")
	}

	seen := make(map[page.Kind]bool)
	for _, k := range r.Blocks {
		if !k.Valid() {
			r.add(RuleUnknownBlock, SeverityWarning, "unknown feature block %q", k)
			continue
		}
		if seen[k] {
			r.add(RuleDuplicateBlock, SeverityError, "feature block %q appears more than once", k)
		}
		seen[k] = true
	}

	walk(root, func(n *html.Node) {
		switch n.DataAtom {
		case atom.Img:
			if _, ok := attr(n, "alt"); !ok {
				src, _ := attr(n, "src")
				r.add(RuleMissingAlt, SeverityWarning, "<img src=%q> has no alt attribute", src)
			}
		case atom.A:
			target, _ := attr(n, "target")
			if !strings.EqualFold(target, "_blank") {
				return
			}
			rel, _ := attr(n, "rel")
			if !hasToken(rel, "noopener") && !hasToken(rel, "noreferrer") {
				href, _ := attr(n, "href")
				r.add(RuleUnsafeBlank, SeverityWarning, "<a href=%q target=_blank> lacks rel=noopener", href)
			}
		}
	})

	return r, nil
}

// CheckFeatures compares the blocks of a checked document with the feature
// settings it was compiled from. A block whose feature is disabled is an
// error; an enabled feature that rendered nothing (a list feature without
// items) is a warning.
func CheckFeatures(r *Report, fs page.Features) {
	present := make(map[page.Kind]bool, len(r.Blocks))
	for _, k := range r.Blocks {
		present[k] = true
	}
	for _, k := range page.Kinds {
		f := fs.Get(k)
		if f == nil {
			continue
		}
		switch {
		case present[k] && !f.IsEnabled():
			r.add(RuleDisabledBlock, SeverityError, "feature %q is disabled but has a block", k)
		case !present[k] && f.IsEnabled():
			r.add(RuleEmptyBlock, SeverityWarning, "feature %q is enabled but rendered nothing", k)
		}
	}
}

// Blocks lists the data-feature values of doc in document order.
func Blocks(doc string) ([]page.Kind, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, apperrors.WrapValidation(err, apperrors.ErrCodeInvalidPage, "failed to parse HTML")
	}
	return blocks(root), nil
}

func blocks(root *html.Node) []page.Kind {
	out := []page.Kind{}
	walk(root, func(n *html.Node) {
		if v, ok := attr(n, "data-feature"); ok {
			out = append(out, page.Kind(v))
		}
	})
	return out
}

// countBodies uses the tokenizer because the parser folds extra <body>
// tags into the first one.
func countBodies(doc string) int {
	z := html.NewTokenizer(strings.NewReader(doc))
	n := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way the count is final
			return n
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Body {
				n++
			}
		}
	}
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(n, func(el *html.Node) {
		if found == nil && el.DataAtom == a {
			found = el
		}
	})
	return found
}

func text(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(strings.ToLower(list)) {
		if f == token {
			return true
		}
	}
	return false
}
