// Package locate produces the bounded, ordered list of candidate pages
// likely to hold contact data for a site.
package locate

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/fetch"
	"github.com/sells-group/contact-enrich/internal/model"
)

// commonPaths is the fixed catalog of paths that conventionally hold
// contact data, probed in order after the home page.
var commonPaths = []string{
	"/contact",
	"/contact-us",
	"/contactus",
	"/about",
	"/about-us",
	"/team",
	"/support",
	"/help",
	"/write-for-us",
	"/contribute",
	"/advertise",
	"/impressum",
}

// linkHints flag anchors on the home page worth following even when they
// live at unconventional paths.
var linkHints = []string{
	"contact", "about", "team", "support", "get in touch",
	"reach us", "impressum", "write for us", "advertise",
}

// PageFetcher is the subset of the fetcher the locator needs.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchedPage, error)
}

// Locator builds candidate page lists. It fetches only the home page
// itself; the per-path candidates are returned unprobed so the pipeline
// controls every fetch.
type Locator struct {
	fetcher  PageFetcher
	maxPages int
}

// New creates a Locator. maxPages bounds the candidate list (home page
// included); values below 1 fall back to 16.
func New(fetcher PageFetcher, maxPages int) *Locator {
	if maxPages < 1 {
		maxPages = 16
	}
	return &Locator{fetcher: fetcher, maxPages: maxPages}
}

// Locate returns the ordered candidate URLs for a site: home page first,
// then the fixed path catalog, then contact-suggesting links discovered
// on the home page. Deduplicated, same-host only, bounded by maxPages.
// A home page that fails to fetch degrades to catalog-only; it is never
// fatal.
func (l *Locator) Locate(ctx context.Context, baseURL string) []string {
	normalized, err := fetch.NormalizeURL(baseURL)
	if err != nil {
		zap.L().Debug("locate: bad base url", zap.String("url", baseURL), zap.Error(err))
		return nil
	}
	base, err := url.Parse(normalized)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var pages []string
	add := func(raw string) {
		if len(pages) >= l.maxPages {
			return
		}
		canonical, err := fetch.NormalizeURL(raw)
		if err != nil || seen[canonical] {
			return
		}
		seen[canonical] = true
		pages = append(pages, canonical)
	}

	home := base.Scheme + "://" + base.Host + "/"
	add(home)

	for _, path := range commonPaths {
		add(base.Scheme + "://" + base.Host + path)
	}

	// Home-page links come last: hint-matched, same-host, resolved.
	for _, link := range l.homeLinks(ctx, home, base) {
		add(link)
	}

	return pages
}

// homeLinks fetches the home page and returns anchors whose text or href
// suggest contact data.
func (l *Locator) homeLinks(ctx context.Context, home string, base *url.URL) []string {
	// The pipeline fetches the home page first anyway, so this extra
	// fetch is a cache hit in practice.
	page, err := l.fetcher.Fetch(ctx, home)
	if err != nil {
		zap.L().Debug("locate: home page fetch failed",
			zap.String("url", home),
			zap.Error(err),
		)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !suggestsContact(a.Text(), href) {
			return
		}
		ref, parseErr := url.Parse(href)
		if parseErr != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host != base.Host {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		resolved.Fragment = ""
		links = append(links, resolved.String())
	})
	return links
}

// suggestsContact reports whether anchor text or href hint at contact
// data.
func suggestsContact(text, href string) bool {
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") || strings.HasPrefix(lower, "javascript:") {
		return false
	}
	textLower := strings.ToLower(strings.TrimSpace(text))
	for _, hint := range linkHints {
		if strings.Contains(textLower, hint) || strings.Contains(lower, strings.ReplaceAll(hint, " ", "-")) {
			return true
		}
	}
	return false
}
