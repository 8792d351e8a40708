//go:build property
// +build property

package page

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestApplyDefaultsProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("backfill is idempotent", prop.ForAll(
		func(title, theme, unlock, placement string, timeout, items int) bool {
			cfg := &Config{Title: title, Theme: theme}
			cfg.Features.ContentLock.UnlockType = UnlockType(unlock)
			cfg.Features.AdSense.Placement = AdPlacement(placement)
			cfg.Features.ExitIntent.InactivitySeconds = timeout
			for i := 0; i < items; i++ {
				cfg.Features.ProductShowcase.Products = append(cfg.Features.ProductShowcase.Products, Product{Name: title})
			}

			ApplyDefaults(cfg)
			once := cfg.Clone()
			ApplyDefaults(cfg)
			return reflect.DeepEqual(once, cfg)
		},
		gen.AlphaString(),
		gen.OneConstOf("", "rose", "teal", "bogus"),
		gen.OneConstOf("", "email", "click", "social", "carrier-pigeon"),
		gen.OneConstOf("", "top", "bottom", "custom", "left"),
		gen.IntRange(-100, 100),
		gen.IntRange(0, 12),
	))

	properties.Property("backfilled configs have no empty titles", prop.ForAll(
		func(title string) bool {
			cfg := &Config{Title: title}
			ApplyDefaults(cfg)
			for _, f := range []string{
				cfg.Title,
				cfg.Features.ContentLock.Title,
				cfg.Features.CountdownOffer.Title,
				cfg.Features.EmailCollection.Title,
				cfg.Features.NewsletterSignup.Title,
				cfg.Features.LeadMagnet.Title,
				cfg.Features.AffiliateLinks.Title,
				cfg.Features.SponsoredContent.Title,
				cfg.Features.DonationButton.Title,
				cfg.Features.ProductShowcase.Title,
				cfg.Features.SocialProof.Title,
				cfg.Features.ExitIntent.Title,
			} {
				if f == "" {
					return false
				}
			}
			return true
		},
		gen.OneConstOf("", " ", "Lost", "\t"),
	))

	properties.TestingRun(t)
}
