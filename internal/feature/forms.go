package feature

import (
	"net/url"
	"strings"

	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/page"
)

// signupForm is shared by email collection and newsletter signup. The
// runtime intercepts the submit, posts to the webhook when one is set and
// swaps the form for the success message.
type signupForm struct {
	event       analytics.EventType
	placeholder string
	button      string
	success     string
	webhook     string
}

func (f signupForm) write(b *builder, c Context) {
	p := c.Theme
	b.open("form",
		"class", "nf-form",
		"data-nf-form", string(f.event),
		"data-webhook", safeWebhook(f.webhook))
	b.open("input",
		"type", "email",
		"name", "email",
		"required", "required",
		"class", "nf-input",
		"style", p.BorderStyle(),
		"placeholder", f.placeholder,
		"aria-label", f.placeholder)
	b.elem("button", f.button, "type", "submit", "class", "nf-button", "style", p.PrimaryButton())
	b.close("form")
	b.elem("p", f.success, "class", "nf-success hidden", "data-nf-success", "true", "role", "status", "style", p.PrimaryText())
}

// safeWebhook drops webhook targets the browser should never post to.
func safeWebhook(u string) string {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		return ""
	}
	return parsed.String()
}

func EmailCollection(s page.EmailCollection, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}

	var b builder
	b.open("section", blockAttrs(string(s.Kind()), "style", c.Theme.Surface())...)
	iconBadge(&b, c, iconMail)
	b.elem("h2", s.Title, "class", "nf-title")
	b.elem("p", s.Description, "class", "nf-text", "style", c.Theme.MutedText())
	signupForm{
		event:       analytics.EventEmailSignup,
		placeholder: s.Placeholder,
		button:      s.ButtonText,
		success:     s.SuccessMessage,
		webhook:     s.WebhookURL,
	}.write(&b, c)
	b.close("section")

	return fragment(s.Kind(), &b)
}

func NewsletterSignup(s page.NewsletterSignup, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}

	var b builder
	b.open("section", blockAttrs(string(s.Kind()), "style", c.Theme.AccentSurface())...)
	iconBadge(&b, c, iconNews)
	b.elem("h2", s.Title, "class", "nf-title")
	b.elem("p", s.Description, "class", "nf-text")
	if s.Incentive != "" {
		b.elem("p", s.Incentive, "class", "nf-incentive", "style", c.Theme.PrimaryText())
	}
	signupForm{
		event:       analytics.EventNewsletterSignup,
		placeholder: s.Placeholder,
		button:      s.ButtonText,
		success:     s.SuccessMessage,
		webhook:     s.WebhookURL,
	}.write(&b, c)
	b.close("section")

	return fragment(s.Kind(), &b)
}

func LeadMagnet(s page.LeadMagnet, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}
	p := c.Theme

	var b builder
	b.open("section", blockAttrs(string(s.Kind()), "style", p.Surface())...)
	if s.ImageURL != "" {
		b.img(s.ImageURL, s.Title, "nf-media")
	} else {
		iconBadge(&b, c, iconDownload)
	}
	b.elem("h2", s.Title, "class", "nf-title")
	b.elem("p", s.Description, "class", "nf-text", "style", p.MutedText())
	b.link(s.DownloadURL, s.ButtonText, "nf-button", p.PrimaryButton(),
		"data-track", string(analytics.EventLeadMagnetDownload))
	b.close("section")

	return fragment(s.Kind(), &b)
}
