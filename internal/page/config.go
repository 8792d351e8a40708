// Package page holds the page configuration model: the description of one
// 404 page, its twelve monetization feature settings, named defaults and
// the tolerant wire decoder used for configs coming from the API, the page
// store and page files on disk.
package page

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Page statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// SocialPlatforms lists the supported social link keys in footer order.
var SocialPlatforms = []string{
	"facebook",
	"twitter",
	"instagram",
	"linkedin",
	"youtube",
	"website",
}

// Config is the full description of one 404 page. The compiler only reads
// it; callers that need to change it should work on a Clone.
type Config struct {
	ID          string            `json:"id" yaml:"id"`
	UserID      string            `json:"userId" yaml:"userId"`
	Status      string            `json:"status" yaml:"status"`
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description" yaml:"description"`
	LogoURL     string            `json:"logoUrl" yaml:"logoUrl"`
	Category    string            `json:"category" yaml:"category"`
	Font        string            `json:"font" yaml:"font"`
	Theme       string            `json:"theme" yaml:"theme"`
	SocialLinks map[string]string `json:"socialLinks" yaml:"socialLinks"`
	Features    Features          `json:"monetizationFeatures" yaml:"monetizationFeatures"`
	CustomCSS   string            `json:"customCSS" yaml:"customCSS"`
	CustomJS    string            `json:"customJS" yaml:"customJS"`
}

// SocialLink is one rendered footer entry.
type SocialLink struct {
	Platform string
	Label    string
	URL      string
}

var platformCaser = cases.Title(language.English)

// Socials returns the non-empty social links in footer order. Platforms
// outside SocialPlatforms are appended alphabetically after the known ones.
func (c *Config) Socials() []SocialLink {
	var links []SocialLink
	seen := make(map[string]bool, len(c.SocialLinks))
	for _, p := range SocialPlatforms {
		seen[p] = true
		if u := strings.TrimSpace(c.SocialLinks[p]); u != "" {
			links = append(links, SocialLink{Platform: p, Label: platformLabel(p), URL: u})
		}
	}

	var extra []string
	for p := range c.SocialLinks {
		if !seen[p] {
			extra = append(extra, p)
		}
	}
	sort.Strings(extra)
	for _, p := range extra {
		if u := strings.TrimSpace(c.SocialLinks[p]); u != "" {
			links = append(links, SocialLink{Platform: p, Label: platformLabel(p), URL: u})
		}
	}
	return links
}

func platformLabel(p string) string {
	switch p {
	case "linkedin":
		return "LinkedIn"
	case "youtube":
		return "YouTube"
	}
	return platformCaser.String(p)
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	if c.SocialLinks != nil {
		out.SocialLinks = make(map[string]string, len(c.SocialLinks))
		for k, v := range c.SocialLinks {
			out.SocialLinks[k] = v
		}
	}
	f := &out.Features
	if c.Features.AffiliateLinks.Links != nil {
		f.AffiliateLinks.Links = append([]AffiliateLink{}, c.Features.AffiliateLinks.Links...)
	}
	if c.Features.ProductShowcase.Products != nil {
		f.ProductShowcase.Products = append([]Product{}, c.Features.ProductShowcase.Products...)
	}
	if c.Features.SocialProof.Testimonials != nil {
		f.SocialProof.Testimonials = make([]Testimonial, len(c.Features.SocialProof.Testimonials))
		for i, t := range c.Features.SocialProof.Testimonials {
			if t.Rating != nil {
				r := *t.Rating
				t.Rating = &r
			}
			f.SocialProof.Testimonials[i] = t
		}
	}
	return &out
}

// RootID is the DOM id of the generated page's root element. Runtime and
// analytics scripts scope themselves to it.
func RootID(pageID string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, pageID)
	if id == "" {
		id = "page"
	}
	return "nf404-" + id
}
