package shopify

import (
	"net/url"
	"strings"
)

// NormalizeCheckoutURL rewrites a checkout URL onto the canonical store
// domain. The Storefront API sometimes hands back URLs on a custom storefront
// alias; those hosts do not always serve the hosted checkout. A URL already on
// storeDomain is returned untouched; otherwise the host is replaced with
// storeDomain, the scheme forced to https, and any port dropped. Path and
// query are preserved.
//
// If the URL does not parse, the path after the scheme+host prefix is grafted
// onto the canonical domain; failing that, the store root is returned so the
// buyer always lands somewhere sensible.
func NormalizeCheckoutURL(raw, storeDomain string) string {
	root := "https://" + storeDomain + "/"

	u, err := url.Parse(raw)
	if err == nil && u.Host != "" {
		if u.Host == storeDomain {
			return raw
		}
		u.Scheme = "https"
		u.Host = storeDomain
		return u.String()
	}

	// Salvage the path from scheme://host/rest by hand. Index 8 lands just
	// past "https://"; the next slash starts the path.
	if idx := strings.Index(raw[min(8, len(raw)):], "/"); idx >= 0 {
		return "https://" + storeDomain + raw[min(8, len(raw))+idx:]
	}

	return root
}
