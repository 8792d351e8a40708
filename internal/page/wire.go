package page

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "github.com/fourohfour/monetizer/internal/errors"
)

// Diagnostic records one field that could not be decoded and was replaced
// by its default.
type Diagnostic struct {
	Field string
	Err   error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Field, d.Err)
}

// Diagnostics is the list of fields Decode had to repair.
type Diagnostics []Diagnostic

// Fields returns the names of the repaired fields.
func (ds Diagnostics) Fields() []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Field)
	}
	return out
}

// wireConfig is the snake_case shape served by the pages API.
type wireConfig struct {
	ID                   string            `json:"id,omitempty"`
	UserID               string            `json:"user_id,omitempty"`
	Status               string            `json:"status"`
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	LogoURL              string            `json:"logo_url"`
	Category             string            `json:"category"`
	Font                 string            `json:"font"`
	Theme                string            `json:"theme"`
	SocialLinks          map[string]string `json:"social_links"`
	MonetizationFeatures Features          `json:"monetization_features"`
	CustomCSS            string            `json:"custom_css"`
	CustomJS             string            `json:"custom_js"`
}

// stringFields maps each string field to its wire key and legacy aliases.
func stringFields(c *Config) []struct {
	dst  *string
	keys []string
} {
	return []struct {
		dst  *string
		keys []string
	}{
		{&c.UserID, []string{"user_id", "userId"}},
		{&c.Status, []string{"status"}},
		{&c.Title, []string{"title"}},
		{&c.Description, []string{"description"}},
		{&c.LogoURL, []string{"logo_url", "logoUrl", "logoURL"}},
		{&c.Category, []string{"category"}},
		{&c.Font, []string{"font"}},
		{&c.Theme, []string{"theme"}},
		{&c.CustomCSS, []string{"custom_css", "customCSS", "customCss"}},
		{&c.CustomJS, []string{"custom_js", "customJS", "customJs"}},
	}
}

// Decode parses a page config from wire JSON. It accepts the snake_case
// API shape as well as the camelCase legacy shape, tolerates stringified or
// missing monetization features and decodes feature settings field by
// field, keeping the default of any field that fails to decode. Only input that is not a JSON object is an
// error.
func Decode(data []byte) (*Config, Diagnostics, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, nil, apperrors.WrapValidation(err, apperrors.ErrCodeInvalidPage, "page config is not a JSON object")
	}

	cfg := Defaults()
	var diags Diagnostics

	if raw, key, ok := lookup(top, "id"); ok {
		id, err := decodeID(raw)
		if err != nil {
			diags = append(diags, Diagnostic{Field: key, Err: err})
		} else {
			cfg.ID = id
		}
	}

	for _, f := range stringFields(&cfg) {
		raw, key, ok := lookup(top, f.keys...)
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			diags = append(diags, Diagnostic{Field: key, Err: err})
			continue
		}
		*f.dst = s
	}

	if raw, key, ok := lookup(top, "social_links", "socialLinks"); ok {
		links, err := decodeSocialLinks(raw)
		if err != nil {
			diags = append(diags, Diagnostic{Field: key, Err: err})
		} else {
			cfg.SocialLinks = links
		}
	}

	if raw, key, ok := lookup(top, "monetization_features", "monetizationFeatures"); ok {
		diags = append(diags, decodeFeatures(unwrapString(raw), key, &cfg.Features)...)
	}

	ApplyDefaults(&cfg)
	return &cfg, diags, nil
}

// lookup returns the first present, non-null key.
func lookup(top map[string]json.RawMessage, keys ...string) (json.RawMessage, string, bool) {
	for _, k := range keys {
		raw, ok := top[k]
		if !ok || isNull(raw) {
			continue
		}
		return raw, k, true
	}
	return nil, "", false
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// unwrapString turns a JSON string holding JSON into the inner document.
// Anything else is returned unchanged.
func unwrapString(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return raw
	}
	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return raw
	}
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(inner)
}

func decodeID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number")
	}
	return n.String(), nil
}

func decodeSocialLinks(raw json.RawMessage) (map[string]string, error) {
	var generic map[string]any
	if err := json.Unmarshal(unwrapString(raw), &generic); err != nil {
		return nil, err
	}
	links := make(map[string]string, len(generic))
	for k, v := range generic {
		if s, ok := v.(string); ok {
			links[strings.ToLower(k)] = s
		}
	}
	return links, nil
}

// featureKeys lists the accepted keys per kind, wire key first.
var featureKeys = map[Kind][]string{
	KindContentLock:      {"contentLock", "content_lock"},
	KindCountdownOffer:   {"countdownOffer", "countdown_offer"},
	KindAdSense:          {"adsense", "adSense", "ad_sense"},
	KindEmailCollection:  {"emailCollection", "email_collection"},
	KindNewsletterSignup: {"newsletterSignup", "newsletter_signup"},
	KindLeadMagnet:       {"leadMagnet", "lead_magnet"},
	KindAffiliateLinks:   {"affiliateLinks", "affiliate_links"},
	KindSponsoredContent: {"sponsoredContent", "sponsored_content"},
	KindDonationButton:   {"donationButton", "donation_button"},
	KindProductShowcase:  {"productShowcase", "product_showcase"},
	KindSocialProof:      {"socialProof", "social_proof"},
	KindExitIntent:       {"exitIntent", "exit_intent"},
}

func decodeFeatures(raw json.RawMessage, field string, f *Features) Diagnostics {
	if isNull(raw) {
		return nil
	}
	var subs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &subs); err != nil {
		return Diagnostics{{Field: field, Err: err}}
	}

	var diags Diagnostics
	for _, kind := range Kinds {
		sub, key, ok := lookup(subs, featureKeys[kind]...)
		if !ok {
			continue
		}
		diags = append(diags, decodeFeature(kind, unwrapString(sub), f, field+"."+key)...)
	}
	return diags
}

// decodeFeature decodes one sub-object field by field over the current
// settings of kind.
func decodeFeature(kind Kind, raw json.RawMessage, f *Features, path string) Diagnostics {
	if kind == KindAffiliateLinks {
		// Older pages stored the link list directly.
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
			links := &f.AffiliateLinks
			diags := decodeValue(trimmed, reflect.ValueOf(&links.Links).Elem(), path)
			links.Enabled = len(links.Links) > 0
			return diags
		}
	}
	dst := featureSettings(kind, f)
	if dst == nil {
		return Diagnostics{{Field: path, Err: fmt.Errorf("unknown feature kind %q", kind)}}
	}
	diags, err := decodeFields(raw, dst, path)
	if err != nil {
		return Diagnostics{{Field: path, Err: err}}
	}
	return diags
}

// featureSettings returns a pointer to the settings struct of kind.
func featureSettings(kind Kind, f *Features) any {
	switch kind {
	case KindContentLock:
		return &f.ContentLock
	case KindCountdownOffer:
		return &f.CountdownOffer
	case KindAdSense:
		return &f.AdSense
	case KindEmailCollection:
		return &f.EmailCollection
	case KindNewsletterSignup:
		return &f.NewsletterSignup
	case KindLeadMagnet:
		return &f.LeadMagnet
	case KindAffiliateLinks:
		return &f.AffiliateLinks
	case KindSponsoredContent:
		return &f.SponsoredContent
	case KindDonationButton:
		return &f.DonationButton
	case KindProductShowcase:
		return &f.ProductShowcase
	case KindSocialProof:
		return &f.SocialProof
	case KindExitIntent:
		return &f.ExitIntent
	}
	return nil
}

// decodeFields decodes the JSON object raw onto the struct dst points to,
// one key at a time. A key that fails to decode keeps the field's current
// value and is reported under path. Keys match json tags case-insensitively
// like encoding/json; unknown keys are ignored.
func decodeFields(raw json.RawMessage, dst any, path string) (Diagnostics, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}

	v := reflect.ValueOf(dst).Elem()
	fields := jsonFields(v.Type())

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var diags Diagnostics
	for _, k := range keys {
		idx, ok := fields[strings.ToLower(k)]
		if !ok {
			continue
		}
		diags = append(diags, decodeValue(obj[k], v.Field(idx), path+"."+k)...)
	}
	return diags, nil
}

var jsonFieldCache sync.Map // reflect.Type -> map[string]int

// jsonFields maps the lower-cased json name of every field of t to its
// index.
func jsonFields(t reflect.Type) map[string]int {
	if m, ok := jsonFieldCache.Load(t); ok {
		return m.(map[string]int)
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		m[strings.ToLower(name)] = i
	}
	jsonFieldCache.Store(t, m)
	return m
}

// decodeValue stores raw into fv. Lists of structs are decoded item by
// item, and scalars of the wrong JSON type are coerced when the meaning is
// unambiguous (19.99 for a string price, "30" for a number of seconds).
func decodeValue(raw json.RawMessage, fv reflect.Value, path string) Diagnostics {
	if isNull(raw) {
		return nil
	}
	target := reflect.New(fv.Type())
	err := json.Unmarshal(raw, target.Interface())
	if err == nil {
		fv.Set(target.Elem())
		return nil
	}

	if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.Struct {
		var items []json.RawMessage
		if jerr := json.Unmarshal(raw, &items); jerr != nil {
			return Diagnostics{{Field: path, Err: jerr}}
		}
		var diags Diagnostics
		out := reflect.MakeSlice(fv.Type(), 0, len(items))
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			elem := reflect.New(fv.Type().Elem())
			itemDiags, ierr := decodeFields(item, elem.Interface(), itemPath)
			if ierr != nil {
				diags = append(diags, Diagnostic{Field: itemPath, Err: ierr})
				continue
			}
			diags = append(diags, itemDiags...)
			out = reflect.Append(out, elem.Elem())
		}
		fv.Set(out)
		return diags
	}

	if coerced, ok := coerceScalar(raw, fv.Type()); ok {
		if json.Unmarshal(coerced, target.Interface()) == nil {
			fv.Set(target.Elem())
			return nil
		}
	}
	return Diagnostics{{Field: path, Err: err}}
}

// coerceScalar rewrites a JSON scalar into the JSON type t expects.
func coerceScalar(raw json.RawMessage, t reflect.Type) (json.RawMessage, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false
	}
	isString := trimmed[0] == '"'

	switch t.Kind() {
	case reflect.String:
		if isString || trimmed[0] == '{' || trimmed[0] == '[' {
			return nil, false
		}
		quoted, err := json.Marshal(string(trimmed))
		return quoted, err == nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := number(trimmed, isString)
		if !ok {
			return nil, false
		}
		return json.RawMessage(strconv.FormatInt(int64(n), 10)), true
	case reflect.Float32, reflect.Float64:
		if !isString {
			return nil, false
		}
		n, ok := number(trimmed, true)
		if !ok {
			return nil, false
		}
		return json.RawMessage(strconv.FormatFloat(n, 'f', -1, 64)), true
	case reflect.Bool:
		if !isString {
			return nil, false
		}
		var s string
		if json.Unmarshal(trimmed, &s) != nil {
			return nil, false
		}
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, false
		}
		return json.RawMessage(strconv.FormatBool(b)), true
	}
	return nil, false
}

// number reads a JSON number, or a JSON string holding one.
func number(raw json.RawMessage, quoted bool) (float64, bool) {
	text := string(raw)
	if quoted {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0, false
		}
		text = strings.TrimSpace(s)
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Encode serializes c in the snake_case API shape.
func Encode(c *Config) ([]byte, error) {
	w := wireConfig{
		ID:                   c.ID,
		UserID:               c.UserID,
		Status:               c.Status,
		Title:                c.Title,
		Description:          c.Description,
		LogoURL:              c.LogoURL,
		Category:             c.Category,
		Font:                 c.Font,
		Theme:                c.Theme,
		SocialLinks:          c.SocialLinks,
		MonetizationFeatures: c.Features,
		CustomCSS:            c.CustomCSS,
		CustomJS:             c.CustomJS,
	}
	return json.Marshal(w)
}

// DecodeFile reads a page file. JSON files and YAML files (.yaml, .yml)
// are accepted; YAML is converted to JSON and goes through Decode.
func DecodeFile(path string) (*Config, Diagnostics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperrors.NewNotFoundError(apperrors.ErrCodeFileNotFound, "page file not found").WithFile(path)
		}
		return nil, nil, apperrors.NewIOError(apperrors.ErrCodeFileNotFound, "failed to read page file", err).WithFile(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, nil, apperrors.WrapValidation(err, apperrors.ErrCodeInvalidPage, "page file is not valid YAML").WithFile(path)
		}
		data, err = json.Marshal(doc)
		if err != nil {
			return nil, nil, apperrors.WrapValidation(err, apperrors.ErrCodeInvalidPage, "page file cannot be represented as JSON").WithFile(path)
		}
	}

	cfg, diags, err := Decode(data)
	if err != nil {
		var ae *apperrors.AppError
		if errors.As(err, &ae) {
			return nil, nil, ae.WithFile(path)
		}
		return nil, nil, err
	}
	return cfg, diags, nil
}

// IsPageFile reports whether path has a page file extension.
func IsPageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
