package feature

import (
	"fmt"
	"strings"
	"time"

	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/page"
)

// expiryLayouts are tried in order; the second is what datetime-local
// inputs produce.
var expiryLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseExpiry parses a countdown expiry. Inputs without a zone are read as
// UTC; use ExpiryAttr for the value the browser sees.
func ParseExpiry(s string) (time.Time, bool) {
	t, _, ok := parseExpiry(s)
	return t, ok
}

func parseExpiry(s string) (time.Time, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, "", false
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), layout, true
		}
	}
	return time.Time{}, "", false
}

// ExpiryAttr is the data-expiry value the page runtime parses. Date-times
// without a zone stay zoneless so the visitor's browser reads them in local
// time, the way the editor's datetime-local input meant them. Dates and
// zoned values are sent as UTC RFC3339. It is empty for an unreadable
// expiry.
func ExpiryAttr(s string) string {
	t, layout, ok := parseExpiry(s)
	switch {
	case !ok:
		return ""
	case layout == time.RFC3339 || layout == time.DateOnly:
		return t.Format(time.RFC3339)
	default:
		return t.Format("2006-01-02T15:04:05")
	}
}

// Remaining is a countdown split into display units.
type Remaining struct {
	Days, Hours, Minutes, Seconds int
}

// Expired reports whether every unit is zero.
func (r Remaining) Expired() bool {
	return r == Remaining{}
}

// Units returns the zero padded display values in days, hours, minutes,
// seconds order.
func (r Remaining) Units() [4]string {
	return [4]string{pad(r.Days), pad(r.Hours), pad(r.Minutes), pad(r.Seconds)}
}

func pad(n int) string {
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("%02d", n)
}

// Until computes the time left from now to expiry, floored at zero.
func Until(expiry, now time.Time) Remaining {
	d := expiry.Sub(now)
	if d <= 0 {
		return Remaining{}
	}
	secs := int(d / time.Second)
	return Remaining{
		Days:    secs / 86400,
		Hours:   secs % 86400 / 3600,
		Minutes: secs % 3600 / 60,
		Seconds: secs % 60,
	}
}

var countdownLabels = [4]struct{ unit, label string }{
	{"days", "Days"},
	{"hours", "Hours"},
	{"minutes", "Minutes"},
	{"seconds", "Seconds"},
}

// CountdownOffer renders a timed offer. The digits are computed at render
// time and kept ticking by the page runtime using data-expiry. A missing
// or unreadable expiry renders as already expired.
func CountdownOffer(s page.CountdownOffer, c Context) Fragment {
	if !s.IsEnabled() {
		return Fragment{}
	}
	p := c.Theme

	expiry, ok := ParseExpiry(s.ExpiryDate)
	var left Remaining
	if ok {
		left = Until(expiry, c.Now)
	}
	expired := left.Expired()

	var b builder
	b.open("section", blockAttrs(string(s.Kind()),
		"data-expiry", ExpiryAttr(s.ExpiryDate),
		"data-show-expired", fmt.Sprint(s.ShowExpired),
		"style", p.Surface())...)
	iconBadge(&b, c, iconClock)
	b.elem("h2", s.Title, "class", "nf-title")
	b.elem("p", s.Description, "class", "nf-text", "style", p.MutedText())

	b.open("div", "class", "nf-countdown", "role", "timer", "aria-live", "polite")
	for i, v := range left.Units() {
		b.open("div", "class", "nf-countdown-unit", "style", p.AccentSurface())
		b.elem("span", v, "class", "nf-countdown-value", "data-unit", countdownLabels[i].unit)
		b.elem("span", countdownLabels[i].label, "class", "nf-countdown-label")
		b.close("div")
	}
	b.close("div")

	expiredClass, ctaClass := "nf-expired hidden", "nf-cta"
	if expired && s.ShowExpired {
		expiredClass, ctaClass = "nf-expired", "nf-cta hidden"
	}
	b.elem("p", s.ExpiredText, "class", expiredClass, "data-nf-expired", "true", "style", p.MutedText())
	b.open("div", "class", ctaClass, "data-nf-cta", "true")
	b.link(s.ButtonURL, s.ButtonText, "nf-button", p.PrimaryButton(),
		"data-track", string(analytics.EventCountdownClick))
	b.close("div")
	b.close("section")

	return fragment(s.Kind(), &b)
}
