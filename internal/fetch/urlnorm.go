package fetch

import (
	"net"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// trackingParams are query parameters stripped during normalization so
// cache keys and dedup are stable across decorated links.
var trackingParams = map[string]bool{
	"gclid":       true,
	"fbclid":      true,
	"msclkid":     true,
	"mc_cid":      true,
	"mc_eid":      true,
	"ref":         true,
	"ref_src":     true,
	"igshid":      true,
	"_hsenc":      true,
	"_hsmi":       true,
	"vero_id":     true,
	"yclid":       true,
	"twclid":      true,
	"mkt_tok":     true,
	"wickedid":    true,
	"clickid":     true,
	"affiliateid": true,
}

// NormalizeURL canonicalizes a raw URL for fetching and cache keying:
// defaults the scheme to https, lowercases the host, strips tracking
// parameters and the fragment, and ensures a path.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", eris.New("fetch: empty url")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", eris.Wrap(err, "fetch: parse url")
	}
	if u.Host == "" {
		return "", eris.Errorf("fetch: url has no host: %s", raw)
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	q := u.Query()
	changed := false
	for key := range q {
		if trackingParams[strings.ToLower(key)] || strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
			changed = true
		}
	}
	if changed || u.RawQuery != "" {
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// multiLevelTLDs are second-level public suffixes where the registrable
// domain spans three labels (example.co.uk).
var multiLevelTLDs = map[string]bool{
	"co.uk": true, "org.uk": true, "ac.uk": true, "gov.uk": true,
	"com.au": true, "net.au": true, "org.au": true,
	"co.nz": true, "co.jp": true, "co.in": true, "co.za": true,
	"com.br": true, "com.mx": true, "com.sg": true, "com.cn": true,
}

// RegistrableDomain returns the eTLD+1 for a URL host, best effort. Used
// as the throttle key so www.acme.com and blog.acme.com share one budget.
func RegistrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	host := strings.ToLower(u.Hostname())
	if net.ParseIP(host) != nil {
		return host
	}

	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	if multiLevelTLDs[strings.Join(labels[len(labels)-2:], ".")] && len(labels) >= 3 {
		return strings.Join(labels[len(labels)-3:], ".")
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
