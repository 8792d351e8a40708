// Package theme resolves page theme and font names into the palettes and
// font stacks the feature emitters and the document assembler render with.
// Resolution never fails: unknown names fall back to the default palette
// and to Inter.
package theme

import (
	"fmt"
	"strings"
)

// DefaultName is the palette used for unknown or empty theme names.
const DefaultName = "default"

// Palette is the fully resolved colour set for one theme. Every field is
// always set.
type Palette struct {
	Name              string
	Background        string
	Foreground        string
	Card              string
	Primary           string
	PrimaryHover      string
	PrimaryForeground string
	Accent            string
	AccentForeground  string
	Muted             string
	MutedForeground   string
	Border            string
}

// Variable is one CSS custom property emitted under :root.
type Variable struct {
	Name  string
	Value string
}

var palettes = map[string]Palette{
	"default": {
		Name:              "default",
		Background:        "#ffffff",
		Foreground:        "#0f172a",
		Card:              "#ffffff",
		Primary:           "#4f46e5",
		PrimaryHover:      "#4338ca",
		PrimaryForeground: "#ffffff",
		Accent:            "#eef2ff",
		AccentForeground:  "#3730a3",
		Muted:             "#f1f5f9",
		MutedForeground:   "#64748b",
		Border:            "#e2e8f0",
	},
	"rose": {
		Name:              "rose",
		Background:        "#fff7f8",
		Foreground:        "#1f1014",
		Card:              "#ffffff",
		Primary:           "#e11d48",
		PrimaryHover:      "#be123c",
		PrimaryForeground: "#ffffff",
		Accent:            "#fff1f2",
		AccentForeground:  "#9f1239",
		Muted:             "#ffe4e6",
		MutedForeground:   "#881337",
		Border:            "#fecdd3",
	},
	"teal": {
		Name:              "teal",
		Background:        "#f7fefd",
		Foreground:        "#042f2e",
		Card:              "#ffffff",
		Primary:           "#0d9488",
		PrimaryHover:      "#0f766e",
		PrimaryForeground: "#ffffff",
		Accent:            "#f0fdfa",
		AccentForeground:  "#115e59",
		Muted:             "#ccfbf1",
		MutedForeground:   "#134e4a",
		Border:            "#99f6e4",
	},
	"blue": {
		Name:              "blue",
		Background:        "#f8fbff",
		Foreground:        "#0b1a3a",
		Card:              "#ffffff",
		Primary:           "#2563eb",
		PrimaryHover:      "#1d4ed8",
		PrimaryForeground: "#ffffff",
		Accent:            "#eff6ff",
		AccentForeground:  "#1e40af",
		Muted:             "#dbeafe",
		MutedForeground:   "#1e3a8a",
		Border:            "#bfdbfe",
	},
	"olivegreen": {
		Name:              "olivegreen",
		Background:        "#fbfcf7",
		Foreground:        "#1e2610",
		Card:              "#ffffff",
		Primary:           "#556b2f",
		PrimaryHover:      "#445725",
		PrimaryForeground: "#ffffff",
		Accent:            "#f4f7ec",
		AccentForeground:  "#3b4a1f",
		Muted:             "#e6eed6",
		MutedForeground:   "#4d5e2c",
		Border:            "#d4dfbf",
	},
	"amber": {
		Name:              "amber",
		Background:        "#fffdf7",
		Foreground:        "#2b1a05",
		Card:              "#ffffff",
		Primary:           "#d97706",
		PrimaryHover:      "#b45309",
		PrimaryForeground: "#ffffff",
		Accent:            "#fffbeb",
		AccentForeground:  "#92400e",
		Muted:             "#fef3c7",
		MutedForeground:   "#78350f",
		Border:            "#fde68a",
	},
	"turquoise": {
		Name:              "turquoise",
		Background:        "#f6fdfb",
		Foreground:        "#0b2b26",
		Card:              "#ffffff",
		Primary:           "#1abc9c",
		PrimaryHover:      "#16a085",
		PrimaryForeground: "#ffffff",
		Accent:            "#e8f8f5",
		AccentForeground:  "#0e6655",
		Muted:             "#d1f2eb",
		MutedForeground:   "#117864",
		Border:            "#a3e4d7",
	},
}

// order of Names().
var names = []string{"default", "rose", "teal", "blue", "olivegreen", "amber", "turquoise"}

// Names returns the supported theme names.
func Names() []string {
	return append([]string(nil), names...)
}

// Resolve returns the palette for id. Matching ignores case, spaces,
// dashes and underscores, so "Olive Green" resolves to olivegreen. Any
// other value resolves to the default palette.
func Resolve(id string) Palette {
	if p, ok := palettes[normalize(id)]; ok {
		return p
	}
	return palettes[DefaultName]
}

// Known reports whether id names one of the supported themes.
func Known(id string) bool {
	_, ok := palettes[normalize(id)]
	return ok
}

func normalize(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(id)))
}

// Variables returns the :root custom properties for the palette.
func (p Palette) Variables() []Variable {
	return []Variable{
		{"--background", p.Background},
		{"--foreground", p.Foreground},
		{"--card", p.Card},
		{"--primary", p.Primary},
		{"--primary-hover", p.PrimaryHover},
		{"--primary-foreground", p.PrimaryForeground},
		{"--accent", p.Accent},
		{"--accent-foreground", p.AccentForeground},
		{"--muted", p.Muted},
		{"--muted-foreground", p.MutedForeground},
		{"--border", p.Border},
	}
}

// RootCSS renders the palette as a :root rule.
func (p Palette) RootCSS() string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, v := range p.Variables() {
		fmt.Fprintf(&b, "  %s: %s;\n", v.Name, v.Value)
	}
	b.WriteString("}\n")
	return b.String()
}

// PrimaryButton is the inline style of filled call-to-action buttons.
func (p Palette) PrimaryButton() string {
	return fmt.Sprintf("background-color: %s; color: %s;", p.Primary, p.PrimaryForeground)
}

// PrimaryText colours headings and icons with the primary colour.
func (p Palette) PrimaryText() string {
	return fmt.Sprintf("color: %s;", p.Primary)
}

// AccentSurface is the tinted background used by highlighted cards.
func (p Palette) AccentSurface() string {
	return fmt.Sprintf("background-color: %s; color: %s;", p.Accent, p.AccentForeground)
}

// BorderStyle draws a one pixel border in the theme colour.
func (p Palette) BorderStyle() string {
	return fmt.Sprintf("border: 1px solid %s;", p.Border)
}

// Surface is the card background with its border.
func (p Palette) Surface() string {
	return fmt.Sprintf("background-color: %s; border: 1px solid %s;", p.Card, p.Border)
}

// IconBackground is the round badge behind feature icons.
func (p Palette) IconBackground() string {
	return fmt.Sprintf("background-color: %s; color: %s;", p.Accent, p.Primary)
}

// MutedText is used for secondary copy.
func (p Palette) MutedText() string {
	return fmt.Sprintf("color: %s;", p.MutedForeground)
}
