package export

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/fourohfour/monetizer/internal/errors"
)

// Host is a hosting target that needs wiring to serve 404.html.
type Host string

const (
	HostApache    Host = "apache"
	HostNginx     Host = "nginx"
	HostNetlify   Host = "netlify"
	HostVercel    Host = "vercel"
	HostWordPress Host = "wordpress"
	HostShopify   Host = "shopify"
)

// Hosts lists every supported host.
var Hosts = []Host{HostApache, HostNginx, HostNetlify, HostVercel, HostWordPress, HostShopify}

// DocumentName is the file name of the compiled page inside a bundle.
const DocumentName = "404.html"

var hostFiles = map[Host]string{
	HostApache:    ".htaccess",
	HostNginx:     "nginx-404.conf",
	HostNetlify:   "_redirects",
	HostVercel:    "vercel.json",
	HostWordPress: "404.php",
	HostShopify:   "404.liquid",
}

// ParseHost validates a host name.
func ParseHost(s string) (Host, error) {
	h := Host(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := hostFiles[h]; ok {
		return h, nil
	}
	return "", apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "unknown host: "+s)
}

// ParseHosts validates a list of host names. "all" selects every host.
func ParseHosts(names []string) ([]Host, error) {
	out := []Host{}
	seen := make(map[Host]bool)
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), "all") {
			return append([]Host(nil), Hosts...), nil
		}
		h, err := ParseHost(n)
		if err != nil {
			return nil, err
		}
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	return out, nil
}

// Filename is the bundle file the host snippet is written to.
func (h Host) Filename() string {
	return hostFiles[h]
}

// Snippet returns the wiring file for h. Shopify embeds the compiled
// document in a raw block; the rest point the server at DocumentName, which
// must sit next to the snippet.
func Snippet(h Host, doc string) (string, error) {
	switch h {
	case HostApache:
		return "ErrorDocument 404 /" + DocumentName + "\n", nil

	case HostNginx:
		return fmt.Sprintf(`error_page 404 /%[1]s;

location = /%[1]s {
    internal;
}
`, DocumentName), nil

	case HostNetlify:
		return "/*    /" + DocumentName + "    404\n", nil

	case HostVercel:
		cfg := map[string]any{
			"routes": []map[string]any{
				{"handle": "filesystem"},
				{"src": "/(.*)", "status": 404, "dest": "/" + DocumentName},
			},
		}
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil

	case HostWordPress:
		return fmt.Sprintf(`<?php
/* 404 template generated by monetizer */
status_header(404);
nocache_headers();
header('Content-Type: text/html; charset=utf-8');
readfile(__DIR__ . '/%s');
`, DocumentName), nil

	case HostShopify:
		return "{% layout none %}\n{% raw %}\n" + liquidRaw(doc) + "{% endraw %}\n", nil
	}
	return "", apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "unknown host: "+string(h))
}

// liquidRaw makes doc safe inside a raw block: every tag opener is closed
// out of the block and printed as a string literal, so no endraw in user
// code can end the block early.
func liquidRaw(doc string) string {
	return strings.ReplaceAll(doc, "{%", `{% endraw %}{{ "{%" }}{% raw %}`)
}
