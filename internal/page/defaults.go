package page

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Named defaults for the top level fields.
const (
	DefaultTitle       = "Oops! Page not found"
	DefaultDescription = "The page you are looking for might have been removed, had its name changed, or is temporarily unavailable."
	DefaultFont        = "Inter"
	DefaultTheme       = "default"
	DefaultCategory    = "general"
)

// Defaults returns a fully defaulted config with every feature disabled.
func Defaults() Config {
	return Config{
		Status:      StatusDraft,
		Title:       DefaultTitle,
		Description: DefaultDescription,
		Category:    DefaultCategory,
		Font:        DefaultFont,
		Theme:       DefaultTheme,
		SocialLinks: map[string]string{},
		Features:    DefaultFeatures(),
	}
}

// DefaultFeatures returns the named defaults for all twelve features.
func DefaultFeatures() Features {
	return Features{
		ContentLock: ContentLock{
			Title:            "Unlock Exclusive Content",
			Description:      "Get access to premium content by entering your email.",
			UnlockType:       UnlockEmail,
			ButtonText:       "Unlock Now",
			EmailPlaceholder: "Enter your email",
			LockedContent:    "This exclusive content is available to subscribers.",
			UnlockedMessage:  "Content unlocked! Enjoy your exclusive access.",
		},
		CountdownOffer: CountdownOffer{
			Title:       "Limited Time Offer!",
			Description: "Don't miss out on this exclusive deal.",
			ButtonText:  "Claim Offer",
			ButtonURL:   "#",
			ShowExpired: true,
			ExpiredText: "Offer Expired",
		},
		AdSense: AdSense{
			Placement: PlacementTop,
			Format:    "auto",
		},
		EmailCollection: EmailCollection{
			Title:          "Stay Updated",
			Description:    "Subscribe to get the latest updates and exclusive offers.",
			Placeholder:    "Enter your email",
			ButtonText:     "Subscribe",
			SuccessMessage: "Thanks for subscribing!",
		},
		NewsletterSignup: NewsletterSignup{
			Title:          "Join Our Newsletter",
			Description:    "Get weekly insights delivered to your inbox.",
			Incentive:      "Plus get a free guide when you subscribe!",
			Placeholder:    "Your email address",
			ButtonText:     "Sign Up",
			SuccessMessage: "Welcome aboard! Check your inbox.",
		},
		LeadMagnet: LeadMagnet{
			Title:       "Free Download",
			Description: "Get our free guide to boost your results.",
			ButtonText:  "Download Now",
			DownloadURL: "#",
		},
		AffiliateLinks: AffiliateLinks{
			Title: "Recommended Products",
			Links: []AffiliateLink{},
		},
		SponsoredContent: SponsoredContent{
			Label:       "Sponsored",
			Title:       "Check out our partner",
			Description: "Discover amazing products from our trusted partner.",
			ButtonText:  "Learn More",
			URL:         "#",
		},
		DonationButton: DonationButton{
			Title:       "Support Our Work",
			Description: "If you find our content helpful, consider supporting us.",
			ButtonText:  "Donate",
			DonationURL: "#",
			Platform:    DonationPayPal,
		},
		ProductShowcase: ProductShowcase{
			Title:    "Featured Products",
			Products: []Product{},
		},
		SocialProof: SocialProof{
			Title:        "What Our Customers Say",
			Testimonials: []Testimonial{},
		},
		ExitIntent: ExitIntent{
			Title:             "Wait! Before you go...",
			Description:       "Get 10% off your first order.",
			ButtonText:        "Get Discount",
			ButtonURL:         "#",
			DismissText:       "No thanks",
			TriggerMouseLeave: true,
		},
	}
}

// Default button labels for list items.
const (
	DefaultAffiliateButton = "Learn More"
	DefaultProductButton   = "Buy Now"
)

// ApplyDefaults backfills every empty defaulted field of c in place so
// emitters never see a missing value. It is idempotent.
func ApplyDefaults(c *Config) {
	d := Defaults()

	orDefault(&c.Status, d.Status)
	orDefault(&c.Title, d.Title)
	orDefault(&c.Description, d.Description)
	orDefault(&c.Category, d.Category)
	orDefault(&c.Font, d.Font)
	orDefault(&c.Theme, d.Theme)

	if c.SocialLinks == nil {
		c.SocialLinks = map[string]string{}
	}
	for k, v := range c.SocialLinks {
		if strings.TrimSpace(v) == "" {
			delete(c.SocialLinks, k)
		}
	}

	applyFeatureDefaults(&c.Features, d.Features, c.ID)
}

func applyFeatureDefaults(f *Features, d Features, pageID string) {
	cl := &f.ContentLock
	orDefault(&cl.Title, d.ContentLock.Title)
	orDefault(&cl.Description, d.ContentLock.Description)
	orDefault(&cl.ButtonText, d.ContentLock.ButtonText)
	orDefault(&cl.EmailPlaceholder, d.ContentLock.EmailPlaceholder)
	orDefault(&cl.LockedContent, d.ContentLock.LockedContent)
	orDefault(&cl.UnlockedMessage, d.ContentLock.UnlockedMessage)
	switch cl.UnlockType {
	case UnlockEmail, UnlockClick, UnlockSocial:
	default:
		cl.UnlockType = UnlockEmail
	}

	co := &f.CountdownOffer
	orDefault(&co.Title, d.CountdownOffer.Title)
	orDefault(&co.Description, d.CountdownOffer.Description)
	orDefault(&co.ButtonText, d.CountdownOffer.ButtonText)
	orDefault(&co.ButtonURL, d.CountdownOffer.ButtonURL)
	orDefault(&co.ExpiredText, d.CountdownOffer.ExpiredText)

	ad := &f.AdSense
	orDefault(&ad.Format, d.AdSense.Format)
	switch ad.Placement {
	case PlacementTop, PlacementBottom, PlacementCustom:
	default:
		ad.Placement = PlacementTop
	}

	ec := &f.EmailCollection
	orDefault(&ec.Title, d.EmailCollection.Title)
	orDefault(&ec.Description, d.EmailCollection.Description)
	orDefault(&ec.Placeholder, d.EmailCollection.Placeholder)
	orDefault(&ec.ButtonText, d.EmailCollection.ButtonText)
	orDefault(&ec.SuccessMessage, d.EmailCollection.SuccessMessage)

	ns := &f.NewsletterSignup
	orDefault(&ns.Title, d.NewsletterSignup.Title)
	orDefault(&ns.Description, d.NewsletterSignup.Description)
	orDefault(&ns.Incentive, d.NewsletterSignup.Incentive)
	orDefault(&ns.Placeholder, d.NewsletterSignup.Placeholder)
	orDefault(&ns.ButtonText, d.NewsletterSignup.ButtonText)
	orDefault(&ns.SuccessMessage, d.NewsletterSignup.SuccessMessage)

	lm := &f.LeadMagnet
	orDefault(&lm.Title, d.LeadMagnet.Title)
	orDefault(&lm.Description, d.LeadMagnet.Description)
	orDefault(&lm.ButtonText, d.LeadMagnet.ButtonText)
	orDefault(&lm.DownloadURL, d.LeadMagnet.DownloadURL)

	al := &f.AffiliateLinks
	orDefault(&al.Title, d.AffiliateLinks.Title)
	if al.Links == nil {
		al.Links = []AffiliateLink{}
	}
	for i := range al.Links {
		orItemID(&al.Links[i].ID, pageID, KindAffiliateLinks, i)
		orDefault(&al.Links[i].ButtonText, DefaultAffiliateButton)
		orDefault(&al.Links[i].URL, "#")
	}

	sc := &f.SponsoredContent
	orDefault(&sc.Label, d.SponsoredContent.Label)
	orDefault(&sc.Title, d.SponsoredContent.Title)
	orDefault(&sc.Description, d.SponsoredContent.Description)
	orDefault(&sc.ButtonText, d.SponsoredContent.ButtonText)
	orDefault(&sc.URL, d.SponsoredContent.URL)

	db := &f.DonationButton
	orDefault(&db.Title, d.DonationButton.Title)
	orDefault(&db.Description, d.DonationButton.Description)
	orDefault(&db.ButtonText, d.DonationButton.ButtonText)
	orDefault(&db.DonationURL, d.DonationButton.DonationURL)
	switch db.Platform {
	case DonationPayPal, DonationBuyMeACoffee, DonationKofi, DonationPatreon, DonationCustom:
	default:
		db.Platform = DonationCustom
	}

	ps := &f.ProductShowcase
	orDefault(&ps.Title, d.ProductShowcase.Title)
	if ps.Products == nil {
		ps.Products = []Product{}
	}
	for i := range ps.Products {
		orItemID(&ps.Products[i].ID, pageID, KindProductShowcase, i)
		orDefault(&ps.Products[i].ButtonText, DefaultProductButton)
		orDefault(&ps.Products[i].URL, "#")
	}

	sp := &f.SocialProof
	orDefault(&sp.Title, d.SocialProof.Title)
	if sp.Testimonials == nil {
		sp.Testimonials = []Testimonial{}
	}
	for i := range sp.Testimonials {
		orItemID(&sp.Testimonials[i].ID, pageID, KindSocialProof, i)
	}

	ei := &f.ExitIntent
	orDefault(&ei.Title, d.ExitIntent.Title)
	orDefault(&ei.Description, d.ExitIntent.Description)
	orDefault(&ei.ButtonText, d.ExitIntent.ButtonText)
	orDefault(&ei.ButtonURL, d.ExitIntent.ButtonURL)
	orDefault(&ei.DismissText, d.ExitIntent.DismissText)
	if ei.InactivitySeconds < 0 {
		ei.InactivitySeconds = 0
	}
}

func orDefault[T ~string](field *T, def T) {
	if strings.TrimSpace(string(*field)) == "" {
		*field = def
	}
}

// orItemID fills a missing list item ID with a name-based UUID of the page,
// the feature and the item position, so the same config always compiles to
// the same markup.
func orItemID(id *string, pageID string, kind Kind, index int) {
	if strings.TrimSpace(*id) == "" {
		*id = ItemID(pageID, kind, index)
	}
}

// ItemID is the ID ApplyDefaults assigns to the index-th item of kind's
// list on page pageID.
func ItemID(pageID string, kind Kind, index int) string {
	name := pageID + "/" + string(kind) + "/" + strconv.Itoa(index)
	return uuid.NewSHA1(itemNamespace, []byte(name)).String()
}

var itemNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://404monetizer.com/items"))
