// Package extract holds the per-page analyzers that turn fetched HTML
// into typed contact findings. Each extractor is independent: a failure
// in one never blocks the others, and results are order-independent
// because the merger unions them.
package extract

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/model"
	"github.com/sells-group/contact-enrich/internal/resilience"
)

// Version tags ContactInfo records with the extractor generation that
// produced them, so stale records can be re-enriched after upgrades.
const Version = "2.1.0"

// Extractor analyzes one fetched page for typed findings.
type Extractor interface {
	Name() string
	Extract(page *model.FetchedPage, doc *goquery.Document) (Findings, error)
}

// DefaultExtractors returns the full analyzer set in no particular order.
func DefaultExtractors() []Extractor {
	return []Extractor{
		&EmailExtractor{},
		&PhoneExtractor{},
		&SocialExtractor{},
		&FormExtractor{},
		&AddressExtractor{},
	}
}

// Page runs every extractor against one page, isolating failures. The
// document is parsed once and shared.
func Page(page *model.FetchedPage, extractors []Extractor) Findings {
	var out Findings

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		zap.L().Debug("extract: unparseable document",
			zap.String("url", page.URL),
			zap.Error(err),
		)
		return out
	}

	for _, ex := range extractors {
		found, err := ex.Extract(page, doc)
		// Partial findings are kept even on error: a malformed JSON-LD
		// block must not discard what the anchors and heuristics found.
		out.Merge(found)
		if err != nil {
			// A ParseError means one malformed source; either way the
			// failure stays contained to this extractor.
			var pe *resilience.ParseError
			if !errors.As(err, &pe) {
				zap.L().Debug("extract: extractor failed",
					zap.String("extractor", ex.Name()),
					zap.String("url", page.URL),
					zap.Error(err),
				)
			}
		}
	}

	return out
}
