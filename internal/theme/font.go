package theme

import (
	"strings"
)

// DefaultFont is used for unknown font names.
const DefaultFont = "Inter"

const googleFontsBase = "https://fonts.googleapis.com/css2?family="

// Font is a resolved font family.
type Font struct {
	Family string
	// GoogleFontsQuery is the family parameter of the css2 API,
	// e.g. "Open+Sans:wght@400;500;600;700".
	GoogleFontsQuery string
	// CSSFallbackChain is the value of the font-family declaration.
	CSSFallbackChain string
	serif            bool
}

var (
	sansFallback  = []string{"ui-sans-serif", "system-ui", "-apple-system", "Segoe UI", "sans-serif"}
	serifFallback = []string{"ui-serif", "Georgia", "Cambria", "Times New Roman", "serif"}
)

var fonts = map[string]Font{}

var fontNames = []string{
	"Inter",
	"Roboto",
	"Open Sans",
	"Lato",
	"Poppins",
	"Montserrat",
	"Nunito",
	"Raleway",
	"Playfair Display",
	"Merriweather",
}

func init() {
	for _, name := range fontNames {
		serif := name == "Playfair Display" || name == "Merriweather"
		fonts[strings.ToLower(name)] = newFont(name, serif)
	}
}

func newFont(family string, serif bool) Font {
	weights := "wght@400;500;600;700"
	if family == "Merriweather" {
		// Merriweather has no 500/600 cuts.
		weights = "wght@400;700"
	}
	return Font{
		Family:           family,
		GoogleFontsQuery: strings.ReplaceAll(family, " ", "+") + ":" + weights,
		CSSFallbackChain: cssChain(family, serif),
		serif:            serif,
	}
}

func cssChain(family string, serif bool) string {
	parts := []string{quoteFamily(family)}
	for _, f := range fallbacks(serif) {
		parts = append(parts, quoteFamily(f))
	}
	return strings.Join(parts, ", ")
}

func fallbacks(serif bool) []string {
	if serif {
		return serifFallback
	}
	return sansFallback
}

func quoteFamily(f string) string {
	if strings.Contains(f, " ") {
		return "'" + f + "'"
	}
	return f
}

// FontNames returns the supported font families.
func FontNames() []string {
	return append([]string(nil), fontNames...)
}

// ResolveFont returns the font for name, ignoring case and surrounding
// space. Unknown names resolve to Inter.
func ResolveFont(name string) Font {
	if f, ok := fonts[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f
	}
	return fonts[strings.ToLower(DefaultFont)]
}

// StylesheetURL is the Google Fonts css2 URL for the font.
func (f Font) StylesheetURL() string {
	return googleFontsBase + f.GoogleFontsQuery + "&display=swap"
}

// TailwindFamily is the fontFamily.sans token list for tailwind.config.
func (f Font) TailwindFamily() []string {
	return append([]string{f.Family}, fallbacks(f.serif)...)
}

// Serif reports whether the family is a serif face.
func (f Font) Serif() bool {
	return f.serif
}
