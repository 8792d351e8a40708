// Package feature contains the twelve monetization block emitters. Each
// emitter is a pure function of its own settings and the shared render
// Context and returns a Fragment; a disabled feature returns the empty
// Fragment so it contributes nothing to the document.
package feature

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/fourohfour/monetizer/internal/page"
	"github.com/fourohfour/monetizer/internal/theme"
)

// MaxListItems caps affiliate links and products.
const MaxListItems = 6

// RatingFallback decides how a testimonial without a rating is drawn. The
// published page hides the star row; the editor preview shows five stars.
type RatingFallback int

const (
	RatingHidden RatingFallback = iota
	RatingFiveStars
)

func (r RatingFallback) String() string {
	if r == RatingFiveStars {
		return "five"
	}
	return "hide"
}

// ParseRatingFallback maps the config values "hide" and "five".
func ParseRatingFallback(s string) RatingFallback {
	if s == "five" {
		return RatingFiveStars
	}
	return RatingHidden
}

// Slot says where in the document a fragment is placed. Only AdSense uses
// a slot other than SlotMain.
type Slot string

const (
	SlotMain   Slot = "main"
	SlotTop    Slot = "top"
	SlotBottom Slot = "bottom"
)

// Context is the shared, read-only input of every emitter.
type Context struct {
	Theme         theme.Palette
	Font          theme.Font
	PageID        string
	Now           time.Time
	MissingRating RatingFallback
}

// NewContext resolves the theme and font of cfg.
func NewContext(cfg *page.Config, now time.Time, missing RatingFallback) Context {
	return Context{
		Theme:         theme.Resolve(cfg.Theme),
		Font:          theme.ResolveFont(cfg.Font),
		PageID:        cfg.ID,
		Now:           now,
		MissingRating: missing,
	}
}

// Fragment is the output of one emitter.
type Fragment struct {
	Kind   page.Kind
	Slot   Slot
	Markup templ.Component
	// Script is feature specific JavaScript run after the shared runtime.
	Script string
}

// Empty reports whether the fragment contributes nothing.
func (f Fragment) Empty() bool {
	return f.Markup == nil
}

// Render writes the fragment markup to w.
func (f Fragment) Render(ctx context.Context, w io.Writer) error {
	if f.Empty() {
		return nil
	}
	return f.Markup.Render(ctx, w)
}

func fragment(kind page.Kind, b *builder) Fragment {
	return Fragment{Kind: kind, Slot: SlotMain, Markup: b.component()}
}

// Emit dispatches to the emitter for f's kind.
func Emit(f page.Feature, c Context) Fragment {
	switch s := f.(type) {
	case page.ContentLock:
		return ContentLock(s, c)
	case page.CountdownOffer:
		return CountdownOffer(s, c)
	case page.AdSense:
		return AdSense(s, c)
	case page.EmailCollection:
		return EmailCollection(s, c)
	case page.NewsletterSignup:
		return NewsletterSignup(s, c)
	case page.LeadMagnet:
		return LeadMagnet(s, c)
	case page.AffiliateLinks:
		return AffiliateLinks(s, c)
	case page.SponsoredContent:
		return SponsoredContent(s, c)
	case page.DonationButton:
		return DonationButton(s, c)
	case page.ProductShowcase:
		return ProductShowcase(s, c)
	case page.SocialProof:
		return SocialProof(s, c)
	case page.ExitIntent:
		return ExitIntent(s, c)
	}
	return Fragment{}
}

// EmitAll runs every emitter over fs in canonical order and drops the
// empty fragments.
func EmitAll(fs page.Features, c Context) []Fragment {
	var out []Fragment
	for _, f := range fs.All() {
		if frag := Emit(f, c); !frag.Empty() {
			out = append(out, frag)
		}
	}
	return out
}
