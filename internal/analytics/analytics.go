// Package analytics builds the tracking script baked into generated pages.
// Whether a page carries the real beacon or a no-op stub is decided once,
// at generation time, from the owner's plan.
package analytics

import (
	"net/url"
	"strings"

	apperrors "github.com/fourohfour/monetizer/internal/errors"
)

// DefaultEndpoint is the production analytics host.
const DefaultEndpoint = "https://404monetizer.com"

// Plan is a subscription tier.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanStarter  Plan = "starter"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
)

// Plans lists the tiers from cheapest to most expensive.
var Plans = []Plan{PlanFree, PlanStarter, PlanPro, PlanBusiness}

// ParsePlan accepts a tier name in any case.
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Plans {
		if p == known {
			return p, nil
		}
	}
	return "", apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "unknown plan: "+s)
}

// HasAnalytics reports whether the tier is entitled to the tracking beacon.
func (p Plan) HasAnalytics() bool {
	return p == PlanPro || p == PlanBusiness
}

// EventType is the kind of a tracked visitor action.
type EventType string

const (
	EventPageView            EventType = "page_view"
	EventEmailSignup         EventType = "email_signup"
	EventNewsletterSignup    EventType = "newsletter_signup"
	EventLeadMagnetDownload  EventType = "lead_magnet_download"
	EventAffiliateClick      EventType = "affiliate_click"
	EventProductClick        EventType = "product_click"
	EventSponsoredClick      EventType = "sponsored_click"
	EventDonationClick       EventType = "donation_click"
	EventCountdownClick      EventType = "countdown_click"
	EventContentUnlock       EventType = "content_unlock"
	EventAdClick             EventType = "ad_click"
	EventExitIntentShown     EventType = "exit_intent_shown"
	EventExitIntentClick     EventType = "exit_intent_click"
	EventExitIntentDismissed EventType = "exit_intent_dismissed"
)

// Events lists every event type in a stable order.
var Events = []EventType{
	EventPageView,
	EventEmailSignup,
	EventNewsletterSignup,
	EventLeadMagnetDownload,
	EventAffiliateClick,
	EventProductClick,
	EventSponsoredClick,
	EventDonationClick,
	EventCountdownClick,
	EventContentUnlock,
	EventAdClick,
	EventExitIntentShown,
	EventExitIntentClick,
	EventExitIntentDismissed,
}

var revenue = map[EventType]float64{
	EventPageView:            0,
	EventEmailSignup:         0.50,
	EventNewsletterSignup:    0.45,
	EventLeadMagnetDownload:  0.85,
	EventAffiliateClick:      1.56,
	EventProductClick:        2.75,
	EventSponsoredClick:      1.20,
	EventDonationClick:       3.00,
	EventCountdownClick:      1.85,
	EventContentUnlock:       0.35,
	EventAdClick:             0.09,
	EventExitIntentShown:     0,
	EventExitIntentClick:     0.65,
	EventExitIntentDismissed: 0,
}

// EstimatedRevenue is the fixed revenue attributed to one event.
func EstimatedRevenue(e EventType) float64 {
	return revenue[e]
}

// Endpoint returns the ingestion URL for pageID under base. An empty or
// unparseable base falls back to DefaultEndpoint.
func Endpoint(base, pageID string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if u, err := url.Parse(base); base == "" || err != nil || u.Host == "" {
		base = DefaultEndpoint
	}
	return base + "/api/pages/" + url.PathEscape(pageID) + "/analytics"
}
