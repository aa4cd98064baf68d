package extract

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/contact-enrich/internal/model"
)

var (
	// emailRe matches plainly written addresses.
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// wordObfuscatedRe matches "user (at) host (dot) tld" and the bare
	// word forms "user at host dot tld". Brackets around at/dot are
	// optional so both families collapse to one pattern.
	wordObfuscatedRe = regexp.MustCompile(`(?i)\b([a-z0-9._%+\-]+)\s*[\(\[\{]?\s*\bat\b\s*[\)\]\}]?\s*((?:[a-z0-9\-]+\s*[\(\[\{]?\s*\bdot\b\s*[\)\]\}]?\s*)+[a-z]{2,})\b`)

	// dotSepRe rewrites the "dot" separators captured above.
	dotSepRe = regexp.MustCompile(`(?i)\s*[\(\[\{]?\s*\bdot\b\s*[\)\]\}]?\s*`)

	// jsConcatRe removes simple string-concatenation joins inside script
	// bodies ("foo" + "@" + "bar.com") before the email scan.
	jsConcatRe = regexp.MustCompile(`['"]\s*\+\s*['"]`)
)

// placeholderDomains are template/example hosts that never identify a
// real contact.
var placeholderDomains = map[string]bool{
	"example.com":         true,
	"example.org":         true,
	"example.net":         true,
	"domain.com":          true,
	"yourdomain.com":      true,
	"yoursite.com":        true,
	"email.com":           true,
	"mysite.com":          true,
	"company.com":         true,
	"test.com":            true,
	"sentry.io":           true,
	"wixpress.com":        true,
	"sentry.wixpress.com": true,
}

// assetExtensions flag matches that are really versioned filenames
// (logo@2x.png) rather than addresses.
var assetExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico", ".css", ".js"}

// EmailExtractor finds addresses across several obfuscation families:
// plain text, mailto: anchors, (at)/(dot) word substitutions, HTML
// entity encoding, and simple script string concatenation.
type EmailExtractor struct{}

func (e *EmailExtractor) Name() string { return "email" }

func (e *EmailExtractor) Extract(page *model.FetchedPage, doc *goquery.Document) (Findings, error) {
	var out Findings

	// mailto: anchors are the highest-signal source.
	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if idx := strings.IndexByte(addr, '?'); idx >= 0 {
			addr = addr[:idx]
		}
		if decoded, err := url.QueryUnescape(addr); err == nil {
			addr = decoded
		}
		// A mailto: link was put there on purpose; placeholder-domain
		// filtering only applies to text-scanned candidates.
		e.add(&out, addr, true)
	})

	// Plain and entity-encoded addresses. Unescaping the raw markup
	// covers &#64;/&#46;-encoded separators in one pass.
	text := visibleText(doc)
	decoded := html.UnescapeString(page.HTML)
	for _, source := range []string{text, decoded} {
		for _, match := range emailRe.FindAllString(source, -1) {
			e.add(&out, match, false)
		}
	}

	// Word substitutions: "press at acme dot io", "foo (at) bar (dot) com".
	for _, m := range wordObfuscatedRe.FindAllStringSubmatch(text, -1) {
		local, host := m[1], m[2]
		rebuilt := local + "@" + dotSepRe.ReplaceAllString(host, ".")
		if emailRe.MatchString(rebuilt) {
			e.add(&out, rebuilt, false)
		}
	}

	// Script concatenation: strip the joins, rescan.
	joined := jsConcatRe.ReplaceAllString(scriptText(doc), "")
	for _, match := range emailRe.FindAllString(joined, -1) {
		e.add(&out, match, false)
	}

	return out, nil
}

// add normalizes and validates before recording. Trusted sources
// (mailto: anchors) bypass the placeholder-domain filter.
func (e *EmailExtractor) add(out *Findings, raw string, trusted bool) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	addr = strings.Trim(addr, ".")
	if addr == "" {
		return
	}

	at := strings.LastIndexByte(addr, '@')
	if at <= 0 || at == len(addr)-1 {
		return
	}
	domain := addr[at+1:]

	if !trusted && placeholderDomains[domain] {
		return
	}
	for _, ext := range assetExtensions {
		if strings.HasSuffix(domain, ext) {
			return
		}
	}

	// TLD sanity: alphabetic, 2-24 chars.
	lastDot := strings.LastIndexByte(domain, '.')
	if lastDot < 0 {
		return
	}
	tld := domain[lastDot+1:]
	if len(tld) < 2 || len(tld) > 24 {
		return
	}
	for _, r := range tld {
		if r < 'a' || r > 'z' {
			return
		}
	}

	out.AddEmail(addr)
}
