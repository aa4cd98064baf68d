package override

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/extract"
	"github.com/sells-group/contact-enrich/internal/model"
)

// PageFetcher fetches one normalized page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.FetchedPage, error)
}

// Strategy extracts contact findings for a site the generic pipeline
// handles poorly. An empty Findings means the caller should fall back
// to generic extraction.
type Strategy interface {
	Apply(ctx context.Context, fetcher PageFetcher, baseURL string) (extract.Findings, error)
}

// ruleStrategy interprets one declarative SiteRule: fetch the listed
// pages and run the standard extractors against the scoped fragments.
type ruleStrategy struct {
	rule SiteRule
}

func (s *ruleStrategy) Apply(ctx context.Context, fetcher PageFetcher, baseURL string) (extract.Findings, error) {
	var out extract.Findings

	extractors := extract.DefaultExtractors()
	for _, target := range s.targets(baseURL) {
		page, err := fetcher.Fetch(ctx, target)
		if err != nil {
			zap.L().Debug("override: page fetch failed",
				zap.String("domain", s.rule.Domain),
				zap.String("url", target),
				zap.Error(err),
			)
			continue
		}
		scoped := s.scope(page)
		out.Merge(extract.Page(scoped, extractors))
	}

	return out, nil
}

// targets resolves the rule's paths against the base URL, home page first.
func (s *ruleStrategy) targets(baseURL string) []string {
	out := []string{baseURL}
	base, err := url.Parse(baseURL)
	if err != nil {
		return out
	}
	for _, p := range s.rule.Paths {
		ref, err := url.Parse(p)
		if err != nil {
			continue
		}
		out = append(out, base.ResolveReference(ref).String())
	}
	return out
}

// scope reduces the page to the fragments matched by the rule's
// selectors. Pages where nothing matches pass through whole, so a rule
// with stale selectors degrades to generic behavior instead of hiding
// the page.
func (s *ruleStrategy) scope(page *model.FetchedPage) *model.FetchedPage {
	if len(s.rule.Selectors) == 0 {
		return page
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return page
	}

	var b strings.Builder
	for _, sel := range s.rule.Selectors {
		doc.Find(sel).Each(func(_ int, node *goquery.Selection) {
			if frag, err := goquery.OuterHtml(node); err == nil {
				b.WriteString(frag)
				b.WriteString("\n")
			}
		})
	}
	if b.Len() == 0 {
		return page
	}

	scoped := *page
	scoped.HTML = "<html><body>" + b.String() + "</body></html>"
	return &scoped
}
