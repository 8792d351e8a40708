package feature

import (
	"strconv"

	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/page"
)

func SponsoredContent(s page.SponsoredContent, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}
	p := c.Theme

	var b builder
	b.open("section", blockAttrs(string(s.Kind()), "style", p.Surface())...)
	b.elem("span", s.Label, "class", "nf-badge", "style", p.AccentSurface())
	b.img(s.ImageURL, s.Title, "nf-media")
	b.elem("h2", s.Title, "class", "nf-title")
	if s.SponsorName != "" {
		b.elem("p", "by "+s.SponsorName, "class", "nf-sponsor", "style", p.MutedText())
	}
	b.elem("p", s.Description, "class", "nf-text", "style", p.MutedText())
	b.link(s.URL, s.ButtonText, "nf-button", p.PrimaryButton(),
		"data-track", string(analytics.EventSponsoredClick))
	b.close("section")

	return fragment(s.Kind(), &b)
}

var platformNames = map[page.DonationPlatform]string{
	page.DonationPayPal:       "PayPal",
	page.DonationBuyMeACoffee: "Buy Me a Coffee",
	page.DonationKofi:         "Ko-fi",
	page.DonationPatreon:      "Patreon",
}

func DonationButton(s page.DonationButton, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}
	p := c.Theme

	var b builder
	b.open("section", blockAttrs(string(s.Kind()),
		"data-platform", string(s.Platform),
		"style", p.Surface())...)
	iconBadge(&b, c, iconHeart)
	b.elem("h2", s.Title, "class", "nf-title")
	b.elem("p", s.Description, "class", "nf-text", "style", p.MutedText())
	b.link(s.DonationURL, s.ButtonText, "nf-button", p.PrimaryButton(),
		"data-track", string(analytics.EventDonationClick),
		"data-platform", string(s.Platform))
	if name, ok := platformNames[s.Platform]; ok {
		b.elem("p", "via "+name, "class", "nf-caption", "style", p.MutedText())
	}
	b.close("section")

	return fragment(s.Kind(), &b)
}

// ExitIntent renders the hidden exit popup. Triggers are read by the page
// runtime from data attributes; the popup is shown at most once per page
// view.
func ExitIntent(s page.ExitIntent, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}
	p := c.Theme

	inactivity := ""
	if s.InactivitySeconds > 0 {
		inactivity = strconv.Itoa(s.InactivitySeconds)
	}

	var b builder
	b.open("div", blockAttrs(string(s.Kind()),
		"hidden", "hidden",
		"role", "dialog",
		"aria-modal", "true",
		"aria-label", s.Title,
		"data-trigger-mouseleave", strconv.FormatBool(s.TriggerMouseLeave),
		"data-trigger-unload", strconv.FormatBool(s.TriggerBeforeUnload),
		"data-inactivity", inactivity)...)
	b.open("div", "class", "nf-modal-backdrop", "data-nf-dismiss", "backdrop")
	b.close("div")
	b.open("div", "class", "nf-modal", "style", p.Surface())
	iconBadge(&b, c, iconGift)
	b.elem("h2", s.Title, "class", "nf-title")
	b.elem("p", s.Description, "class", "nf-text", "style", p.MutedText())
	b.link(s.ButtonURL, s.ButtonText, "nf-button", p.PrimaryButton(),
		"data-track", string(analytics.EventExitIntentClick))
	b.elem("button", s.DismissText, "type", "button", "class", "nf-dismiss", "data-nf-dismiss", "button", "style", p.MutedText())
	b.close("div")
	b.close("div")

	return fragment(s.Kind(), &b)
}
