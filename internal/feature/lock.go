package feature

import (
	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/page"
)

// sharePlatforms are offered by social unlocks, in button order.
var sharePlatforms = []struct {
	ID    string
	Label string
}{
	{"twitter", "Share on X"},
	{"facebook", "Share on Facebook"},
	{"linkedin", "Share on LinkedIn"},
}

// ContentLock renders a gated content box. The unlock type picks exactly
// one set of controls: an email form, a single button, or share buttons.
func ContentLock(s page.ContentLock, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}
	p := c.Theme

	var b builder
	b.open("section", blockAttrs(string(s.Kind()),
		"data-unlock-type", string(s.UnlockType),
		"style", p.Surface())...)
	iconBadge(&b, c, iconLock)
	b.elem("h2", s.Title, "class", "nf-title")
	b.elem("p", s.Description, "class", "nf-text", "style", p.MutedText())

	b.open("div", "class", "nf-locked", "data-nf-locked", "true", "style", p.AccentSurface())
	b.elem("p", s.LockedContent, "class", "nf-blur")
	b.close("div")

	b.open("div", "class", "nf-controls", "data-nf-lock-controls", "true")
	switch s.UnlockType {
	case page.UnlockClick:
		b.elem("button", s.ButtonText,
			"type", "button",
			"class", "nf-button",
			"style", p.PrimaryButton(),
			"data-nf-unlock", "click")
	case page.UnlockSocial:
		b.open("div", "class", "nf-share")
		for _, sp := range sharePlatforms {
			b.elem("button", sp.Label,
				"type", "button",
				"class", "nf-button nf-button-outline",
				"style", p.BorderStyle()+" "+p.PrimaryText(),
				"data-nf-share", sp.ID)
		}
		b.close("div")
	default:
		b.open("form", "class", "nf-form", "data-nf-form", string(analytics.EventContentUnlock))
		b.open("input",
			"type", "email",
			"name", "email",
			"required", "required",
			"class", "nf-input",
			"style", p.BorderStyle(),
			"placeholder", s.EmailPlaceholder,
			"aria-label", s.EmailPlaceholder)
		b.elem("button", s.ButtonText, "type", "submit", "class", "nf-button", "style", p.PrimaryButton())
		b.close("form")
	}
	b.close("div")

	b.elem("p", s.UnlockedMessage, "class", "nf-success hidden", "data-nf-unlocked", "true", "style", p.PrimaryText())
	b.close("section")

	return fragment(s.Kind(), &b)
}
