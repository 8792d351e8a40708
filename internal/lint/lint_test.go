package lint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourohfour/monetizer/internal/document"
	"github.com/fourohfour/monetizer/internal/page"
)

func rules(r *Report) []string {
	out := []string{}
	for _, i := range r.Issues {
		out = append(out, i.Rule)
	}
	return out
}

func TestCheckRules(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "clean",
			doc:  `<html><head><title>x</title></head><body><a href="/" target="_blank" rel="noopener">a</a><img src="a.png" alt=""></body></html>`,
			want: []string{},
		},
		{
			name: "missing title",
			doc:  `<html><head></head><body></body></html>`,
			want: []string{RuleMissingTitle},
		},
		{
			name: "blank title",
			doc:  `<html><head><title>  </title></head><body></body></html>`,
			want: []string{RuleMissingTitle},
		},
		{
			name: "duplicate block",
			doc:  `<title>x</title><div data-feature="leadMagnet"></div><div data-feature="leadMagnet"></div>`,
			want: []string{RuleDuplicateBlock},
		},
		{
			name: "unknown block",
			doc:  `<title>x</title><div data-feature="popunder"></div>`,
			want: []string{RuleUnknownBlock},
		},
		{
			name: "img without alt",
			doc:  `<title>x</title><img src="a.png">`,
			want: []string{RuleMissingAlt},
		},
		{
			name: "target blank without rel",
			doc:  `<title>x</title><a href="https://x.test" target="_BLANK" rel="nofollow">x</a>`,
			want: []string{RuleUnsafeBlank},
		},
		{
			name: "noreferrer implies noopener",
			doc:  `<title>x</title><a href="https://x.test" target="_blank" rel="noreferrer">x</a>`,
			want: []string{},
		},
		{
			name: "two bodies",
			doc:  `<html><head><title>x</title></head><body><p>a</p></body><body><p>b</p></body></html>`,
			want: []string{RuleMultipleBody},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Check(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rules(r))
		})
	}
}

func TestHasErrors(t *testing.T) {
	r := &Report{Issues: []Issue{{Rule: RuleMissingAlt, Severity: SeverityWarning}}}
	assert.False(t, r.HasErrors())
	r.Issues = append(r.Issues, Issue{Rule: RuleMissingTitle, Severity: SeverityError})
	assert.True(t, r.HasErrors())
}

func TestCompiledDocumentIsClean(t *testing.T) {
	cfg := page.Defaults()
	cfg.ID = "lint-page"
	cfg.LogoURL = "https://cdn.test/logo.png"
	f := &cfg.Features
	f.AdSense.Enabled = true
	f.AdSense.ClientID = "ca-pub-1"
	f.AdSense.Placement = page.PlacementBottom
	f.ContentLock.Enabled = true
	f.CountdownOffer.Enabled = true
	f.LeadMagnet.Enabled = true
	f.SponsoredContent.Enabled = true
	f.SponsoredContent.ImageURL = "https://cdn.test/s.png"
	f.ProductShowcase.Enabled = true
	f.ProductShowcase.Products = []page.Product{
		{Name: "A", ImageURL: "https://cdn.test/a.png"},
		{Name: "B"},
		{Name: "C"},
		{Name: "D"},
	}
	f.ExitIntent.Enabled = true
	cfg.SocialLinks = map[string]string{"twitter": "https://twitter.com/acme"}

	doc, err := document.Compile(&cfg, document.Options{Now: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	r, err := Check(doc)
	require.NoError(t, err)
	assert.Empty(t, r.Issues)
	assert.Equal(t, []page.Kind{
		page.KindContentLock,
		page.KindCountdownOffer,
		page.KindLeadMagnet,
		page.KindSponsoredContent,
		page.KindProductShowcase,
		page.KindExitIntent,
		page.KindAdSense,
	}, r.Blocks)

	blocks, err := Blocks(doc)
	require.NoError(t, err)
	assert.Equal(t, r.Blocks, blocks)

	CheckFeatures(r, cfg.Features)
	assert.Empty(t, r.Issues)
}

func TestCheckFeatures(t *testing.T) {
	fs := page.DefaultFeatures()
	fs.AffiliateLinks.Enabled = true
	fs.LeadMagnet.Enabled = true

	r := &Report{Blocks: []page.Kind{page.KindLeadMagnet, page.KindExitIntent}, Issues: []Issue{}}
	CheckFeatures(r, fs)

	assert.Equal(t, []string{RuleEmptyBlock, RuleDisabledBlock}, rules(r))
	assert.Contains(t, r.Issues[0].Message, string(page.KindAffiliateLinks))
	assert.Contains(t, r.Issues[1].Message, string(page.KindExitIntent))
	assert.True(t, r.HasErrors())
}
