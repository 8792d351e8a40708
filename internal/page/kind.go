package page

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind identifies one of the twelve monetization features.
type Kind string

const (
	KindContentLock      Kind = "contentLock"
	KindCountdownOffer   Kind = "countdownOffer"
	KindAdSense          Kind = "adsense"
	KindEmailCollection  Kind = "emailCollection"
	KindNewsletterSignup Kind = "newsletterSignup"
	KindLeadMagnet       Kind = "leadMagnet"
	KindAffiliateLinks   Kind = "affiliateLinks"
	KindSponsoredContent Kind = "sponsoredContent"
	KindDonationButton   Kind = "donationButton"
	KindProductShowcase  Kind = "productShowcase"
	KindSocialProof      Kind = "socialProof"
	KindExitIntent       Kind = "exitIntent"
)

// Kinds lists every feature kind in canonical order.
var Kinds = []Kind{
	KindContentLock,
	KindCountdownOffer,
	KindAdSense,
	KindEmailCollection,
	KindNewsletterSignup,
	KindLeadMagnet,
	KindAffiliateLinks,
	KindSponsoredContent,
	KindDonationButton,
	KindProductShowcase,
	KindSocialProof,
	KindExitIntent,
}

var titleCaser = cases.Title(language.English)

// String returns the wire key of the kind.
func (k Kind) String() string {
	return string(k)
}

// Label returns a human readable name, e.g. "Content Lock".
func (k Kind) Label() string {
	if k == KindAdSense {
		return "AdSense"
	}
	var words []string
	start := 0
	s := string(k)
	for i := 1; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return titleCaser.String(strings.ToLower(strings.Join(words, " ")))
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}
