package page

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fourohfour/monetizer/internal/errors"
)

func TestKindLabel(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindContentLock, "Content Lock"},
		{KindAdSense, "AdSense"},
		{KindNewsletterSignup, "Newsletter Signup"},
		{KindExitIntent, "Exit Intent"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Label())
			assert.True(t, tt.kind.Valid())
		})
	}
	assert.False(t, Kind("popup").Valid())
	assert.Len(t, Kinds, 12)
}

func TestFeaturesAllCanonicalOrder(t *testing.T) {
	all := DefaultFeatures().All()
	require.Len(t, all, len(Kinds))
	for i, f := range all {
		assert.Equal(t, Kinds[i], f.Kind())
		assert.False(t, f.IsEnabled(), "default %s should be disabled", f.Kind())
	}
}

func TestListFeaturesNeedItems(t *testing.T) {
	f := DefaultFeatures()
	f.AffiliateLinks.Enabled = true
	f.ProductShowcase.Enabled = true
	f.SocialProof.Enabled = true
	assert.Empty(t, f.Enabled())

	f.ProductShowcase.Products = []Product{{Name: "Mug"}}
	assert.Equal(t, []Kind{KindProductShowcase}, f.Enabled())
	assert.True(t, f.Get(KindProductShowcase).IsEnabled())
	assert.Nil(t, f.Get(Kind("nope")))
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{
		Theme: "rose",
		SocialLinks: map[string]string{
			"twitter":  "https://twitter.com/acme",
			"facebook": "  ",
		},
	}
	cfg.Features.ContentLock.UnlockType = "telepathy"
	cfg.Features.AdSense.Placement = "sidebar"
	cfg.Features.ExitIntent.InactivitySeconds = -5
	cfg.Features.ProductShowcase.Products = []Product{{Name: "Mug"}}

	ApplyDefaults(cfg)

	assert.Equal(t, DefaultTitle, cfg.Title)
	assert.Equal(t, "rose", cfg.Theme)
	assert.Equal(t, DefaultFont, cfg.Font)
	assert.Equal(t, StatusDraft, cfg.Status)
	assert.Equal(t, UnlockEmail, cfg.Features.ContentLock.UnlockType)
	assert.Equal(t, PlacementTop, cfg.Features.AdSense.Placement)
	assert.Equal(t, "auto", cfg.Features.AdSense.Format)
	assert.Equal(t, 0, cfg.Features.ExitIntent.InactivitySeconds)
	assert.NotNil(t, cfg.Features.AffiliateLinks.Links)
	assert.NotNil(t, cfg.Features.SocialProof.Testimonials)
	assert.NotEmpty(t, cfg.Features.ProductShowcase.Products[0].ID)
	assert.Equal(t, DefaultProductButton, cfg.Features.ProductShowcase.Products[0].ButtonText)
	assert.Equal(t, map[string]string{"twitter": "https://twitter.com/acme"}, cfg.SocialLinks)
}

func TestApplyDefaultsIdempotent(t *testing.T) {
	cfg := &Config{}
	cfg.Features.AffiliateLinks.Links = []AffiliateLink{{Title: "A"}, {Title: "B", ID: "b"}}
	rating := 4
	cfg.Features.SocialProof.Testimonials = []Testimonial{{Name: "Ann", Rating: &rating}}

	ApplyDefaults(cfg)
	once := cfg.Clone()
	ApplyDefaults(cfg)

	assert.Equal(t, once, cfg)
}

func TestApplyDefaultsItemIDsAreStable(t *testing.T) {
	build := func() *Config {
		cfg := &Config{ID: "p1"}
		cfg.Features.ProductShowcase.Products = []Product{{Name: "Mug"}, {Name: "Cap", ID: "cap"}}
		cfg.Features.AffiliateLinks.Links = []AffiliateLink{{Title: "Host"}}
		cfg.Features.SocialProof.Testimonials = []Testimonial{{Name: "Ann"}}
		return cfg
	}

	a, b := build(), build()
	ApplyDefaults(a)
	ApplyDefaults(b)

	assert.Equal(t, a, b)
	assert.Equal(t, ItemID("p1", KindProductShowcase, 0), a.Features.ProductShowcase.Products[0].ID)
	assert.Equal(t, "cap", a.Features.ProductShowcase.Products[1].ID)
	assert.NotEqual(t,
		a.Features.AffiliateLinks.Links[0].ID,
		a.Features.SocialProof.Testimonials[0].ID)
	assert.NotEqual(t, ItemID("p1", KindProductShowcase, 0), ItemID("p2", KindProductShowcase, 0))
}

func TestClone(t *testing.T) {
	rating := 3
	cfg := Defaults()
	cfg.SocialLinks["website"] = "https://example.com"
	cfg.Features.SocialProof.Testimonials = []Testimonial{{ID: "t1", Rating: &rating}}

	cp := cfg.Clone()
	cp.SocialLinks["website"] = "https://changed.example"
	*cp.Features.SocialProof.Testimonials[0].Rating = 1

	assert.Equal(t, "https://example.com", cfg.SocialLinks["website"])
	assert.Equal(t, 3, *cfg.Features.SocialProof.Testimonials[0].Rating)
}

func TestSocials(t *testing.T) {
	cfg := Defaults()
	cfg.SocialLinks = map[string]string{
		"website":   "https://acme.test",
		"mastodon":  "https://social.test/@acme",
		"linkedin":  "https://linkedin.com/company/acme",
		"facebook":  "https://facebook.com/acme",
		"instagram": "",
	}

	links := cfg.Socials()
	require.Len(t, links, 4)
	assert.Equal(t, "facebook", links[0].Platform)
	assert.Equal(t, "LinkedIn", links[1].Label)
	assert.Equal(t, "website", links[2].Platform)
	assert.Equal(t, "Mastodon", links[3].Label)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   bool
		wantDiags []string
		check     func(t *testing.T, cfg *Config)
	}{
		{
			name:  "snake case api shape",
			input: `{"id":"p1","user_id":"u1","title":"Lost?","theme":"teal","logo_url":"https://x.test/logo.png","custom_css":"body{}","custom_js":"console.log(1)","social_links":{"twitter":"https://t.test"},"monetization_features":{"emailCollection":{"enabled":true,"title":"Join Us"}}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "p1", cfg.ID)
				assert.Equal(t, "u1", cfg.UserID)
				assert.Equal(t, "Lost?", cfg.Title)
				assert.Equal(t, "teal", cfg.Theme)
				assert.Equal(t, "https://x.test/logo.png", cfg.LogoURL)
				assert.Equal(t, "body{}", cfg.CustomCSS)
				assert.Equal(t, "console.log(1)", cfg.CustomJS)
				assert.Equal(t, "https://t.test", cfg.SocialLinks["twitter"])
				assert.True(t, cfg.Features.EmailCollection.Enabled)
				assert.Equal(t, "Join Us", cfg.Features.EmailCollection.Title)
				assert.Equal(t, "Subscribe", cfg.Features.EmailCollection.ButtonText)
			},
		},
		{
			name:  "camel case legacy shape",
			input: `{"title":"Legacy","customCSS":"a{}","socialLinks":{"YouTube":"https://yt.test"},"monetizationFeatures":{"exitIntent":{"enabled":true}}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "a{}", cfg.CustomCSS)
				assert.Equal(t, "https://yt.test", cfg.SocialLinks["youtube"])
				assert.True(t, cfg.Features.ExitIntent.Enabled)
				assert.True(t, cfg.Features.ExitIntent.TriggerMouseLeave)
			},
		},
		{
			name:  "stringified features",
			input: `{"monetization_features":"{\"donationButton\":{\"enabled\":true,\"platform\":\"kofi\"}}"}`,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Features.DonationButton.Enabled)
				assert.Equal(t, DonationKofi, cfg.Features.DonationButton.Platform)
			},
		},
		{
			name:  "null features",
			input: `{"monetization_features":null,"social_links":null}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultFeatures().ContentLock.Title, cfg.Features.ContentLock.Title)
				assert.NotNil(t, cfg.SocialLinks)
			},
		},
		{
			name:      "broken sub object keeps defaults",
			input:     `{"monetization_features":{"countdownOffer":{"enabled":"yes"},"leadMagnet":{"enabled":true}}}`,
			wantDiags: []string{"monetization_features.countdownOffer.enabled"},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Features.CountdownOffer.Enabled)
				assert.Equal(t, "Limited Time Offer!", cfg.Features.CountdownOffer.Title)
				assert.True(t, cfg.Features.LeadMagnet.Enabled)
			},
		},
		{
			name:      "bad field keeps the rest of the sub object",
			input:     `{"monetization_features":{"leadMagnet":{"enabled":true,"title":"Guide","downloadUrl":{"href":"x"}}}}`,
			wantDiags: []string{"monetization_features.leadMagnet.downloadUrl"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Features.LeadMagnet.Enabled)
				assert.Equal(t, "Guide", cfg.Features.LeadMagnet.Title)
				assert.Equal(t, DefaultFeatures().LeadMagnet.DownloadURL, cfg.Features.LeadMagnet.DownloadURL)
			},
		},
		{
			name:  "numbers and numeric strings are coerced",
			input: `{"monetization_features":{"productShowcase":{"enabled":true,"products":[{"name":"Mug","price":19.99}]},"exitIntent":{"enabled":true,"inactivityTimeout":"30"},"socialProof":{"enabled":"true","testimonials":[{"name":"Ann","rating":"4"}]}}}`,
			check: func(t *testing.T, cfg *Config) {
				ps := cfg.Features.ProductShowcase
				assert.True(t, ps.Enabled)
				require.Len(t, ps.Products, 1)
				assert.Equal(t, "Mug", ps.Products[0].Name)
				assert.Equal(t, "19.99", ps.Products[0].Price)

				assert.True(t, cfg.Features.ExitIntent.Enabled)
				assert.Equal(t, 30, cfg.Features.ExitIntent.InactivitySeconds)

				sp := cfg.Features.SocialProof
				assert.True(t, sp.Enabled)
				require.Len(t, sp.Testimonials, 1)
				require.NotNil(t, sp.Testimonials[0].Rating)
				assert.Equal(t, 4, *sp.Testimonials[0].Rating)
			},
		},
		{
			name:      "bad list item field keeps the item",
			input:     `{"monetization_features":{"productShowcase":{"enabled":true,"products":[{"name":"Mug","price":[1]},"junk",{"name":"Cap"}]}}}`,
			wantDiags: []string{"monetization_features.productShowcase.products[0].price", "monetization_features.productShowcase.products[1]"},
			check: func(t *testing.T, cfg *Config) {
				ps := cfg.Features.ProductShowcase
				assert.True(t, ps.Enabled)
				require.Len(t, ps.Products, 2)
				assert.Equal(t, "Mug", ps.Products[0].Name)
				assert.Empty(t, ps.Products[0].Price)
				assert.Equal(t, "Cap", ps.Products[1].Name)
			},
		},
		{
			name:  "legacy affiliate list",
			input: `{"monetization_features":{"affiliate_links":[{"title":"Hosting","url":"https://host.test"}]}}`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Features.AffiliateLinks.Links, 1)
				assert.True(t, cfg.Features.AffiliateLinks.Enabled)
				assert.NotEmpty(t, cfg.Features.AffiliateLinks.Links[0].ID)
			},
		},
		{
			name:  "numeric id",
			input: `{"id":42}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "42", cfg.ID)
			},
		},
		{
			name:      "wrong scalar type",
			input:     `{"title":17}`,
			wantDiags: []string{"title"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultTitle, cfg.Title)
			},
		},
		{
			name:    "not an object",
			input:   `[1,2,3]`,
			wantErr: true,
		},
		{
			name:    "not json",
			input:   `<html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, diags, err := Decode([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			if tt.wantDiags == nil {
				assert.Empty(t, diags)
			} else {
				assert.Equal(t, tt.wantDiags, diags.Fields())
			}
			tt.check(t, cfg)
		})
	}
}

func TestEncodeDecodeKeepsFeatures(t *testing.T) {
	rating := 5
	cfg := Defaults()
	cfg.ID = "page-1"
	cfg.Theme = "amber"
	cfg.CustomJS = "alert(1)"
	cfg.Features.SocialProof.Enabled = true
	cfg.Features.SocialProof.Testimonials = []Testimonial{{ID: "t1", Name: "Bo", Text: "Great", Rating: &rating}}

	data, err := Encode(&cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"monetization_features"`)
	assert.Contains(t, string(data), `"custom_js"`)

	got, diags, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, &cfg, got)
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "landing.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
title: From YAML
theme: blue
font: Lato
monetization_features:
  productShowcase:
    enabled: true
    products:
      - name: Mug
        price: "$12"
`), 0o644))

	cfg, diags, err := DecodeFile(yamlPath)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "From YAML", cfg.Title)
	assert.Equal(t, "Lato", cfg.Font)
	require.Len(t, cfg.Features.ProductShowcase.Products, 1)
	assert.Equal(t, "$12", cfg.Features.ProductShowcase.Products[0].Price)

	_, _, err = DecodeFile(filepath.Join(dir, "missing.json"))
	assert.True(t, apperrors.IsNotFound(err))

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte("nope"), 0o644))
	_, _, err = DecodeFile(badPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), badPath)
}

func TestIsPageFile(t *testing.T) {
	assert.True(t, IsPageFile("a/b.json"))
	assert.True(t, IsPageFile("a/b.YML"))
	assert.False(t, IsPageFile("a/b.html"))
}

func TestRootID(t *testing.T) {
	assert.Equal(t, "nf404-abc-123", RootID("abc-123"))
	assert.Equal(t, "nf404-page", RootID(""))
	assert.Equal(t, "nf404-scriptalert1script", RootID("<script>alert(1)</script>"))
}
