package feature

import (
	"strconv"

	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/page"
)

// CenterClass moves a lone trailing card into the middle column of the
// three column grid.
const CenterClass = "md:col-start-2"

// GridPlacement returns the extra grid class for the card at index out of
// total displayed cards. Only a last row holding a single card (1, 4, 7,
// 10, ... cards) is centred.
func GridPlacement(index, total int) string {
	if total > 0 && total%3 == 1 && index == total-1 {
		return CenterClass
	}
	return ""
}

func capItems[T any](items []T) []T {
	if len(items) > MaxListItems {
		return items[:MaxListItems]
	}
	return items
}

func AffiliateLinks(s page.AffiliateLinks, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}
	p := c.Theme

	var b builder
	b.open("section", blockAttrs(string(s.Kind()))...)
	b.elem("h2", s.Title, "class", "nf-title")
	b.open("div", "class", "grid grid-cols-1 md:grid-cols-2 gap-4")
	for _, l := range capItems(s.Links) {
		b.open("article", "class", "nf-card", "data-item-id", l.ID, "style", p.Surface())
		b.img(l.ImageURL, l.Title, "nf-media")
		b.elem("h3", l.Title, "class", "nf-card-title")
		if l.Description != "" {
			b.elem("p", l.Description, "class", "nf-text", "style", p.MutedText())
		}
		b.link(l.URL, l.ButtonText, "nf-button", p.PrimaryButton(),
			"data-track", string(analytics.EventAffiliateClick),
			"data-item-id", l.ID)
		b.close("article")
	}
	b.close("div")
	b.close("section")

	return fragment(s.Kind(), &b)
}

func ProductShowcase(s page.ProductShowcase, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}
	p := c.Theme
	products := capItems(s.Products)

	var b builder
	b.open("section", blockAttrs(string(s.Kind()))...)
	b.elem("h2", s.Title, "class", "nf-title")
	b.open("div", "class", "grid grid-cols-1 md:grid-cols-3 gap-4")
	for i, pr := range products {
		class := "nf-card"
		if extra := GridPlacement(i, len(products)); extra != "" {
			class += " " + extra
		}
		b.open("article", "class", class, "data-item-id", pr.ID, "style", p.Surface())
		b.img(pr.ImageURL, pr.Name, "nf-media")
		b.elem("h3", pr.Name, "class", "nf-card-title")
		if pr.Description != "" {
			b.elem("p", pr.Description, "class", "nf-text", "style", p.MutedText())
		}
		if pr.Price != "" {
			b.elem("p", pr.Price, "class", "nf-price", "style", p.PrimaryText())
		}
		b.link(pr.URL, pr.ButtonText, "nf-button", p.PrimaryButton(),
			"data-track", string(analytics.EventProductClick),
			"data-item-id", pr.ID)
		b.close("article")
	}
	b.close("div")
	b.close("section")

	return fragment(s.Kind(), &b)
}

// Stars returns how many of five stars are filled for rating, and whether
// a star row is drawn at all. Ratings are clamped to 1..5.
func Stars(rating *int, fallback RatingFallback) (filled int, show bool) {
	if rating == nil {
		if fallback == RatingFiveStars {
			return 5, true
		}
		return 0, false
	}
	r := *rating
	if r < 1 {
		r = 1
	}
	if r > 5 {
		r = 5
	}
	return r, true
}

func SocialProof(s page.SocialProof, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}
	p := c.Theme

	var b builder
	b.open("section", blockAttrs(string(s.Kind()))...)
	b.elem("h2", s.Title, "class", "nf-title")
	b.open("div", "class", "grid grid-cols-1 md:grid-cols-2 gap-4")
	for _, t := range s.Testimonials {
		b.open("figure", "class", "nf-card nf-testimonial", "data-item-id", t.ID, "style", p.Surface())
		if filled, show := Stars(t.Rating, c.MissingRating); show {
			b.open("div", "class", "nf-stars", "aria-label", strconv.Itoa(filled)+" out of 5 stars")
			for i := 1; i <= 5; i++ {
				if i <= filled {
					b.elem("span", "★", "class", "nf-star nf-star-filled", "style", p.PrimaryText())
				} else {
					b.elem("span", "☆", "class", "nf-star", "style", p.MutedText())
				}
			}
			b.close("div")
		}
		b.open("blockquote", "class", "nf-quote")
		b.text(t.Text)
		b.close("blockquote")
		b.open("figcaption", "class", "nf-author")
		b.img(t.AvatarURL, t.Name, "nf-avatar")
		b.elem("span", t.Name, "class", "nf-author-name")
		if t.Role != "" {
			b.elem("span", t.Role, "class", "nf-author-role", "style", p.MutedText())
		}
		b.close("figcaption")
		b.close("figure")
	}
	b.close("div")
	b.close("section")

	return fragment(s.Kind(), &b)
}
