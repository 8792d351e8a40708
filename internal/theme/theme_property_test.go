//go:build property
// +build property

package theme

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestResolveProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any theme id resolves to a complete palette", prop.ForAll(
		func(id string) bool {
			p := Resolve(id)
			for _, v := range p.Variables() {
				if v.Value == "" {
					return false
				}
			}
			return p.Name != "" && (Known(id) || p.Name == DefaultName)
		},
		gen.AnyString(),
	))

	properties.Property("any font name resolves to a stylesheet", prop.ForAll(
		func(name string) bool {
			f := ResolveFont(name)
			return f.Family != "" && f.GoogleFontsQuery != "" && f.CSSFallbackChain != ""
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
