// Package document assembles a page config into one standalone HTML
// document: head with fonts, Tailwind token config and the inline style
// layer, the header, the feature blocks in a fixed order, the social
// footer, the page runtime script, the analytics script and finally the
// page's own custom code.
package document

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/fourohfour/monetizer/internal/analytics"
	apperrors "github.com/fourohfour/monetizer/internal/errors"
	"github.com/fourohfour/monetizer/internal/feature"
	"github.com/fourohfour/monetizer/internal/page"
	"github.com/fourohfour/monetizer/internal/theme"
)

//go:embed assets/base.css
var baseCSS string

//go:embed assets/runtime.js
var runtimeJS string

// TailwindCDN is the only script dependency of a generated page besides
// the optional AdSense loader.
const TailwindCDN = "https://cdn.tailwindcss.com"

// CustomCodePolicy controls how a page's customCSS and customJS end up in
// the document.
type CustomCodePolicy string

const (
	// CustomCodeTrusted inserts both verbatim. customJS runs with full page
	// privileges.
	CustomCodeTrusted CustomCodePolicy = "trusted"
	// CustomCodeSandboxed keeps customCSS inside the style element and runs
	// customJS in a sandboxed iframe without same-origin access.
	CustomCodeSandboxed CustomCodePolicy = "sandboxed"
	// CustomCodeDisabled drops both.
	CustomCodeDisabled CustomCodePolicy = "disabled"
)

// ParseCustomCodePolicy validates a policy name. Empty means trusted.
func ParseCustomCodePolicy(s string) (CustomCodePolicy, error) {
	switch p := CustomCodePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return CustomCodeTrusted, nil
	case CustomCodeTrusted, CustomCodeSandboxed, CustomCodeDisabled:
		return p, nil
	}
	return "", apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "unknown custom code policy: "+s)
}

// Options are the per-render inputs that do not come from the page config.
type Options struct {
	// Plan of the page owner; decides beacon or stub.
	Plan analytics.Plan
	// AnalyticsEndpoint is the base URL events are posted under.
	AnalyticsEndpoint string
	// Now is the render time used for countdown placeholders.
	Now           time.Time
	MissingRating feature.RatingFallback
	CustomCode    CustomCodePolicy
	// LiveReloadURL, when set, adds a websocket client that reloads the
	// page on change notifications. Only the preview server sets it.
	LiveReloadURL string
}

func (o Options) normalized() Options {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.CustomCode == "" {
		o.CustomCode = CustomCodeTrusted
	}
	if o.Plan == "" {
		o.Plan = analytics.PlanFree
	}
	return o
}

// Step is one position of the fixed presentation order.
type Step struct {
	Name string
	Kind page.Kind
	Slot feature.Slot
}

// StepSocialLinks names the footer step.
const StepSocialLinks = "socialLinks"

// Order is the presentation order of the document body. It matches the
// order the live preview renders blocks in.
var Order = []Step{
	{Name: "contentLock", Kind: page.KindContentLock, Slot: feature.SlotMain},
	{Name: "countdownOffer", Kind: page.KindCountdownOffer, Slot: feature.SlotMain},
	{Name: "adsense:top", Kind: page.KindAdSense, Slot: feature.SlotTop},
	{Name: "emailCollection", Kind: page.KindEmailCollection, Slot: feature.SlotMain},
	{Name: "newsletterSignup", Kind: page.KindNewsletterSignup, Slot: feature.SlotMain},
	{Name: "leadMagnet", Kind: page.KindLeadMagnet, Slot: feature.SlotMain},
	{Name: "affiliateLinks", Kind: page.KindAffiliateLinks, Slot: feature.SlotMain},
	{Name: "sponsoredContent", Kind: page.KindSponsoredContent, Slot: feature.SlotMain},
	{Name: "donationButton", Kind: page.KindDonationButton, Slot: feature.SlotMain},
	{Name: "productShowcase", Kind: page.KindProductShowcase, Slot: feature.SlotMain},
	{Name: "socialProof", Kind: page.KindSocialProof, Slot: feature.SlotMain},
	{Name: "exitIntent", Kind: page.KindExitIntent, Slot: feature.SlotMain},
	{Name: "adsense:bottom", Kind: page.KindAdSense, Slot: feature.SlotBottom},
	{Name: StepSocialLinks},
}

// Compile renders cfg into a standalone HTML document. cfg is not
// modified.
func Compile(cfg *page.Config, opts Options) (string, error) {
	c := cfg.Clone()
	page.ApplyDefaults(c)
	opts = opts.normalized()

	ctx := feature.NewContext(c, opts.Now, opts.MissingRating)
	return Assemble(c, feature.EmitAll(c.Features, ctx), opts)
}

// Assemble places already emitted fragments into the document skeleton in
// Order. Fragments whose kind and slot match no step are dropped.
func Assemble(cfg *page.Config, frags []feature.Fragment, opts Options) (string, error) {
	opts = opts.normalized()
	d := &doc{
		cfg:     cfg,
		opts:    opts,
		frags:   frags,
		palette: theme.Resolve(cfg.Theme),
		font:    theme.ResolveFont(cfg.Font),
		rootID:  page.RootID(cfg.ID),
	}

	var buf bytes.Buffer
	if err := d.Render(context.Background(), &buf); err != nil {
		return "", apperrors.WrapRender(err, cfg.ID)
	}
	return buf.String(), nil
}

// doc is the document component. It implements templ.Component.
type doc struct {
	cfg     *page.Config
	opts    Options
	frags   []feature.Fragment
	palette theme.Palette
	font    theme.Font
	rootID  string
}

var _ templ.Component = (*doc)(nil)

func (d *doc) Render(ctx context.Context, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.str("<!DOCTYPE html>\n<html lang=\"en\">\n")
	d.head(ew)
	ew.str("<body>\n")
	ew.printf(`<div id="%s" class="nf-page" data-page-id="%s">`+"\n", esc(d.rootID), esc(d.cfg.ID))
	ew.str(`<main class="nf-container">` + "\n")
	d.header(ew)

	for _, step := range Order {
		if step.Name == StepSocialLinks {
			d.footer(ew)
			continue
		}
		for _, f := range d.frags {
			if f.Kind == step.Kind && f.Slot == step.Slot && !f.Empty() {
				if ew.err == nil {
					ew.err = f.Render(ctx, ew.w)
				}
				ew.str("\n")
			}
		}
	}

	ew.str("</main>\n</div>\n")
	d.scripts(ew)
	ew.str("</body>\n</html>\n")
	return ew.err
}

func (d *doc) head(ew *errWriter) {
	ew.str("<head>\n")
	ew.str(`<meta charset="utf-8">` + "\n")
	ew.str(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	ew.str(`<meta name="robots" content="noindex">` + "\n")
	ew.printf("<title>%s</title>\n", esc(d.cfg.Title))
	ew.printf(`<meta name="description" content="%s">`+"\n", esc(d.cfg.Description))
	ew.str(`<meta name="generator" content="404 Monetizer">` + "\n")
	ew.str(`<link rel="preconnect" href="https://fonts.googleapis.com">` + "\n")
	ew.str(`<link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>` + "\n")
	ew.printf(`<link rel="stylesheet" href="%s">`+"\n", esc(d.font.StylesheetURL()))
	ew.printf(`<script src="%s"></script>`+"\n", TailwindCDN)
	ew.printf("<script>tailwind.config = %s;</script>\n", d.tailwindConfig())

	if ad := d.cfg.Features.AdSense; ad.IsEnabled() {
		ew.printf(`<script async src="%s" crossorigin="anonymous"></script>`+"\n",
			esc(feature.AdSenseLoaderURL(ad.ClientID)))
	}

	ew.str("<style>\n")
	ew.str(d.palette.RootCSS())
	ew.printf(":root { --font-sans: %s; }\n", d.font.CSSFallbackChain)
	ew.str(baseCSS)
	if css := d.customCSS(); css != "" {
		ew.str("/* custom */\n")
		ew.str(css)
		ew.str("\n")
	}
	ew.str("</style>\n")
	ew.str("</head>\n")
}

type tailwindColors struct {
	Primary    string `json:"primary"`
	Accent     string `json:"accent"`
	Muted      string `json:"muted"`
	Border     string `json:"border"`
	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

func (d *doc) tailwindConfig() string {
	cfg := map[string]any{
		"theme": map[string]any{
			"extend": map[string]any{
				"fontFamily": map[string][]string{"sans": d.font.TailwindFamily()},
				"colors": tailwindColors{
					Primary:    d.palette.Primary,
					Accent:     d.palette.Accent,
					Muted:      d.palette.Muted,
					Border:     d.palette.Border,
					Background: d.palette.Background,
					Foreground: d.palette.Foreground,
				},
			},
		},
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (d *doc) header(ew *errWriter) {
	ew.str(`<header class="nf-header">` + "\n")
	if logo := strings.TrimSpace(d.cfg.LogoURL); logo != "" {
		ew.printf(`<img class="nf-logo" src="%s" alt="%s">`+"\n", esc(string(templ.URL(logo))), esc(d.cfg.Title+" logo"))
	}
	ew.str(`<p class="nf-code">404</p>` + "\n")
	ew.printf(`<h1 class="nf-heading">%s</h1>`+"\n", esc(d.cfg.Title))
	ew.printf(`<p class="nf-lead">%s</p>`+"\n", esc(d.cfg.Description))
	ew.printf(`<a href="/" class="nf-button nf-home" style="%s">Go back home</a>`+"\n", esc(d.palette.PrimaryButton()))
	ew.str("</header>\n")
}

func (d *doc) footer(ew *errWriter) {
	links := d.cfg.Socials()
	if len(links) == 0 {
		return
	}
	ew.printf(`<footer class="nf-footer" data-section="%s">`+"\n", StepSocialLinks)
	for _, l := range links {
		ew.printf(`<a class="nf-social" href="%s" target="_blank" rel="noopener noreferrer" data-platform="%s">%s</a>`+"\n",
			esc(string(templ.URL(l.URL))), esc(l.Platform), esc(l.Label))
	}
	ew.str("</footer>\n")
}

func (d *doc) scripts(ew *errWriter) {
	r := strings.NewReplacer(
		"__ROOT_ID__", jsString(d.rootID),
		"__PAGE_ID__", jsString(d.cfg.ID),
	)
	ew.str("<script>\n")
	ew.str(r.Replace(runtimeJS))
	ew.str("</script>\n")

	var featureJS []string
	for _, f := range d.frags {
		if f.Script != "" && !f.Empty() {
			featureJS = append(featureJS, f.Script)
		}
	}
	if len(featureJS) > 0 {
		ew.printf("<script>\n%s\n</script>\n", strings.Join(featureJS, "\n"))
	}

	endpoint := analytics.Endpoint(d.opts.AnalyticsEndpoint, d.cfg.ID)
	ew.printf("<script data-analytics=\"%s\">\n%s\n</script>\n",
		analyticsMode(d.opts.Plan), analytics.Script(d.opts.Plan, d.rootID, endpoint))

	if d.opts.LiveReloadURL != "" {
		ew.printf("<script data-live-reload>\n%s\n</script>\n", liveReloadScript(d.opts.LiveReloadURL, d.cfg.ID))
	}

	d.customJS(ew)
}

func analyticsMode(p analytics.Plan) string {
	if p.HasAnalytics() {
		return "beacon"
	}
	return "stub"
}

func (d *doc) customCSS() string {
	css := d.cfg.CustomCSS
	if strings.TrimSpace(css) == "" {
		return ""
	}
	switch d.opts.CustomCode {
	case CustomCodeDisabled:
		return ""
	case CustomCodeSandboxed:
		return neutralizeStyleClose(css)
	}
	return css
}

func (d *doc) customJS(ew *errWriter) {
	js := d.cfg.CustomJS
	if strings.TrimSpace(js) == "" {
		return
	}
	switch d.opts.CustomCode {
	case CustomCodeDisabled:
		return
	case CustomCodeSandboxed:
		srcdoc := "<!DOCTYPE html><html><body><script>" + js + "</script></body></html>"
		ew.printf(`<iframe data-custom-js sandbox="allow-scripts" hidden title="custom code" srcdoc="%s"></iframe>`+"\n", esc(srcdoc))
	default:
		ew.printf("<script data-custom-js>\n%s\n</script>\n", js)
	}
}

// neutralizeStyleClose stops CSS from closing the style element early.
func neutralizeStyleClose(css string) string {
	var b strings.Builder
	lower := strings.ToLower(css)
	last := 0
	for {
		i := strings.Index(lower[last:], "</style")
		if i < 0 {
			break
		}
		b.WriteString(css[last : last+i])
		b.WriteString(`<\/style`)
		last += i + len("</style")
	}
	b.WriteString(css[last:])
	return b.String()
}

func liveReloadScript(path, pageID string) string {
	return fmt.Sprintf(`(function () {
  var target = %s;
  function connect() {
    var protocol = location.protocol === "https:" ? "wss:" : "ws:";
    var ws = new WebSocket(protocol + "//" + location.host + %s);
    ws.onmessage = function (event) {
      try {
        var msg = JSON.parse(event.data);
        if (msg.type === "reload" && (msg.target === target || msg.target === "*")) location.reload();
      } catch (e) {}
    };
    ws.onclose = function () { setTimeout(connect, 2000); };
  }
  connect();
})();`, jsString(pageID), jsString(path))
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// errWriter keeps the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) str(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
