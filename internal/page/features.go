package page

// Feature is the closed set of monetization feature settings. Every
// settings record below implements it; the unexported marker keeps the set
// closed to this package.
type Feature interface {
	Kind() Kind
	IsEnabled() bool
	feature()
}

// UnlockType selects the controls a content lock renders.
type UnlockType string

const (
	UnlockEmail  UnlockType = "email"
	UnlockClick  UnlockType = "click"
	UnlockSocial UnlockType = "social"
)

// AdPlacement selects where the AdSense unit is emitted.
type AdPlacement string

const (
	PlacementTop    AdPlacement = "top"
	PlacementBottom AdPlacement = "bottom"
	PlacementCustom AdPlacement = "custom"
)

// DonationPlatform picks the icon and default copy of the donation button.
type DonationPlatform string

const (
	DonationPayPal       DonationPlatform = "paypal"
	DonationBuyMeACoffee DonationPlatform = "buymeacoffee"
	DonationKofi         DonationPlatform = "kofi"
	DonationPatreon      DonationPlatform = "patreon"
	DonationCustom       DonationPlatform = "custom"
)

type ContentLock struct {
	Enabled          bool       `json:"enabled" yaml:"enabled"`
	Title            string     `json:"title" yaml:"title"`
	Description      string     `json:"description" yaml:"description"`
	UnlockType       UnlockType `json:"unlockType" yaml:"unlockType"`
	ButtonText       string     `json:"buttonText" yaml:"buttonText"`
	EmailPlaceholder string     `json:"emailPlaceholder" yaml:"emailPlaceholder"`
	LockedContent    string     `json:"lockedContent" yaml:"lockedContent"`
	UnlockedMessage  string     `json:"unlockedMessage" yaml:"unlockedMessage"`
}

type CountdownOffer struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	ExpiryDate  string `json:"expiryDate" yaml:"expiryDate"`
	ButtonText  string `json:"buttonText" yaml:"buttonText"`
	ButtonURL   string `json:"buttonUrl" yaml:"buttonUrl"`
	ShowExpired bool   `json:"showExpiredState" yaml:"showExpiredState"`
	ExpiredText string `json:"expiredText" yaml:"expiredText"`
}

type AdSense struct {
	Enabled           bool        `json:"enabled" yaml:"enabled"`
	ClientID          string      `json:"clientId" yaml:"clientId"`
	SlotID            string      `json:"slotId" yaml:"slotId"`
	Placement         AdPlacement `json:"placement" yaml:"placement"`
	Format            string      `json:"format" yaml:"format"`
	CustomContainerID string      `json:"customContainerId" yaml:"customContainerId"`
}

type EmailCollection struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	Title          string `json:"title" yaml:"title"`
	Description    string `json:"description" yaml:"description"`
	Placeholder    string `json:"placeholder" yaml:"placeholder"`
	ButtonText     string `json:"buttonText" yaml:"buttonText"`
	SuccessMessage string `json:"successMessage" yaml:"successMessage"`
	WebhookURL     string `json:"webhookUrl" yaml:"webhookUrl"`
}

type NewsletterSignup struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	Title          string `json:"title" yaml:"title"`
	Description    string `json:"description" yaml:"description"`
	Incentive      string `json:"incentive" yaml:"incentive"`
	Placeholder    string `json:"placeholder" yaml:"placeholder"`
	ButtonText     string `json:"buttonText" yaml:"buttonText"`
	SuccessMessage string `json:"successMessage" yaml:"successMessage"`
	WebhookURL     string `json:"webhookUrl" yaml:"webhookUrl"`
}

type LeadMagnet struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	ButtonText  string `json:"buttonText" yaml:"buttonText"`
	DownloadURL string `json:"downloadUrl" yaml:"downloadUrl"`
	ImageURL    string `json:"imageUrl" yaml:"imageUrl"`
}

type AffiliateLink struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url" yaml:"url"`
	ImageURL    string `json:"imageUrl" yaml:"imageUrl"`
	ButtonText  string `json:"buttonText" yaml:"buttonText"`
}

type AffiliateLinks struct {
	Enabled bool            `json:"enabled" yaml:"enabled"`
	Title   string          `json:"title" yaml:"title"`
	Links   []AffiliateLink `json:"links" yaml:"links"`
}

type SponsoredContent struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Label       string `json:"label" yaml:"label"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	SponsorName string `json:"sponsorName" yaml:"sponsorName"`
	URL         string `json:"url" yaml:"url"`
	ImageURL    string `json:"imageUrl" yaml:"imageUrl"`
	ButtonText  string `json:"buttonText" yaml:"buttonText"`
}

type DonationButton struct {
	Enabled     bool             `json:"enabled" yaml:"enabled"`
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description" yaml:"description"`
	ButtonText  string           `json:"buttonText" yaml:"buttonText"`
	DonationURL string           `json:"donationUrl" yaml:"donationUrl"`
	Platform    DonationPlatform `json:"platform" yaml:"platform"`
}

type Product struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Price       string `json:"price" yaml:"price"`
	ImageURL    string `json:"imageUrl" yaml:"imageUrl"`
	URL         string `json:"url" yaml:"url"`
	ButtonText  string `json:"buttonText" yaml:"buttonText"`
}

type ProductShowcase struct {
	Enabled  bool      `json:"enabled" yaml:"enabled"`
	Title    string    `json:"title" yaml:"title"`
	Products []Product `json:"products" yaml:"products"`
}

// Testimonial.Rating is nil when the editor never set one; the renderers
// disagree about what that means, see feature.RatingFallback.
type Testimonial struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Role      string `json:"role" yaml:"role"`
	Text      string `json:"text" yaml:"text"`
	Rating    *int   `json:"rating,omitempty" yaml:"rating,omitempty"`
	AvatarURL string `json:"avatarUrl" yaml:"avatarUrl"`
}

type SocialProof struct {
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	Title        string        `json:"title" yaml:"title"`
	Testimonials []Testimonial `json:"testimonials" yaml:"testimonials"`
}

type ExitIntent struct {
	Enabled             bool   `json:"enabled" yaml:"enabled"`
	Title               string `json:"title" yaml:"title"`
	Description         string `json:"description" yaml:"description"`
	ButtonText          string `json:"buttonText" yaml:"buttonText"`
	ButtonURL           string `json:"buttonUrl" yaml:"buttonUrl"`
	DismissText         string `json:"dismissText" yaml:"dismissText"`
	TriggerMouseLeave   bool   `json:"triggerOnMouseLeave" yaml:"triggerOnMouseLeave"`
	TriggerBeforeUnload bool   `json:"triggerOnBeforeUnload" yaml:"triggerOnBeforeUnload"`
	InactivitySeconds   int    `json:"inactivityTimeout" yaml:"inactivityTimeout"`
}

func (ContentLock) Kind() Kind      { return KindContentLock }
func (CountdownOffer) Kind() Kind   { return KindCountdownOffer }
func (AdSense) Kind() Kind          { return KindAdSense }
func (EmailCollection) Kind() Kind  { return KindEmailCollection }
func (NewsletterSignup) Kind() Kind { return KindNewsletterSignup }
func (LeadMagnet) Kind() Kind       { return KindLeadMagnet }
func (AffiliateLinks) Kind() Kind   { return KindAffiliateLinks }
func (SponsoredContent) Kind() Kind { return KindSponsoredContent }
func (DonationButton) Kind() Kind   { return KindDonationButton }
func (ProductShowcase) Kind() Kind  { return KindProductShowcase }
func (SocialProof) Kind() Kind      { return KindSocialProof }
func (ExitIntent) Kind() Kind       { return KindExitIntent }

func (f ContentLock) IsEnabled() bool      { return f.Enabled }
func (f CountdownOffer) IsEnabled() bool   { return f.Enabled }
func (f AdSense) IsEnabled() bool          { return f.Enabled }
func (f EmailCollection) IsEnabled() bool  { return f.Enabled }
func (f NewsletterSignup) IsEnabled() bool { return f.Enabled }
func (f LeadMagnet) IsEnabled() bool       { return f.Enabled }
func (f SponsoredContent) IsEnabled() bool { return f.Enabled }
func (f DonationButton) IsEnabled() bool   { return f.Enabled }
func (f ExitIntent) IsEnabled() bool       { return f.Enabled }

// List features only count as enabled when there is something to show.
func (f AffiliateLinks) IsEnabled() bool  { return f.Enabled && len(f.Links) > 0 }
func (f ProductShowcase) IsEnabled() bool { return f.Enabled && len(f.Products) > 0 }
func (f SocialProof) IsEnabled() bool     { return f.Enabled && len(f.Testimonials) > 0 }

func (ContentLock) feature()      {}
func (CountdownOffer) feature()   {}
func (AdSense) feature()          {}
func (EmailCollection) feature()  {}
func (NewsletterSignup) feature() {}
func (LeadMagnet) feature()       {}
func (AffiliateLinks) feature()   {}
func (SponsoredContent) feature() {}
func (DonationButton) feature()   {}
func (ProductShowcase) feature()  {}
func (SocialProof) feature()      {}
func (ExitIntent) feature()       {}

// Features is the fixed record of all twelve feature settings.
type Features struct {
	ContentLock      ContentLock      `json:"contentLock" yaml:"contentLock"`
	CountdownOffer   CountdownOffer   `json:"countdownOffer" yaml:"countdownOffer"`
	AdSense          AdSense          `json:"adsense" yaml:"adsense"`
	EmailCollection  EmailCollection  `json:"emailCollection" yaml:"emailCollection"`
	NewsletterSignup NewsletterSignup `json:"newsletterSignup" yaml:"newsletterSignup"`
	LeadMagnet       LeadMagnet       `json:"leadMagnet" yaml:"leadMagnet"`
	AffiliateLinks   AffiliateLinks   `json:"affiliateLinks" yaml:"affiliateLinks"`
	SponsoredContent SponsoredContent `json:"sponsoredContent" yaml:"sponsoredContent"`
	DonationButton   DonationButton   `json:"donationButton" yaml:"donationButton"`
	ProductShowcase  ProductShowcase  `json:"productShowcase" yaml:"productShowcase"`
	SocialProof      SocialProof      `json:"socialProof" yaml:"socialProof"`
	ExitIntent       ExitIntent       `json:"exitIntent" yaml:"exitIntent"`
}

// All returns the twelve settings in canonical order.
func (f Features) All() []Feature {
	return []Feature{
		f.ContentLock,
		f.CountdownOffer,
		f.AdSense,
		f.EmailCollection,
		f.NewsletterSignup,
		f.LeadMagnet,
		f.AffiliateLinks,
		f.SponsoredContent,
		f.DonationButton,
		f.ProductShowcase,
		f.SocialProof,
		f.ExitIntent,
	}
}

// Get returns the settings for kind k, or nil for an unknown kind.
func (f Features) Get(k Kind) Feature {
	for _, feat := range f.All() {
		if feat.Kind() == k {
			return feat
		}
	}
	return nil
}

// Enabled returns the kinds that will contribute markup.
func (f Features) Enabled() []Kind {
	var kinds []Kind
	for _, feat := range f.All() {
		if feat.IsEnabled() {
			kinds = append(kinds, feat.Kind())
		}
	}
	return kinds
}
