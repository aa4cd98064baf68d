package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/contact-enrich/internal/model"
)

// phonePatterns cover the common written forms. Dedup is by exact string;
// no E.164 canonicalization is attempted, so "(312) 555-0142" and
// "312-555-0142" may both survive. That is a deliberate extension point.
var phonePatterns = []*regexp.Regexp{
	// Parenthesized area code: (312) 555-0142
	regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.\s]?\d{4}`),
	// Dashed or dotted: 312-555-0142, 312.555.0142
	regexp.MustCompile(`\b\d{3}[-.]\d{3}[-.]\d{4}\b`),
	// International: +44 20 7946 0958, +1-312-555-0142
	regexp.MustCompile(`\+\d{1,3}[-.\s]?\(?\d{1,4}\)?(?:[-.\s]?\d{2,4}){2,4}`),
}

// PhoneExtractor finds phone numbers in tel: anchors and visible text.
type PhoneExtractor struct{}

func (p *PhoneExtractor) Name() string { return "phone" }

func (p *PhoneExtractor) Extract(_ *model.FetchedPage, doc *goquery.Document) (Findings, error) {
	var out Findings

	doc.Find(`a[href^="tel:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		num := strings.TrimPrefix(href, "tel:")
		if decoded, err := url.QueryUnescape(num); err == nil {
			num = decoded
		}
		p.add(&out, num)
	})

	text := visibleText(doc)
	for _, re := range phonePatterns {
		for _, match := range re.FindAllString(text, -1) {
			p.add(&out, match)
		}
	}

	return out, nil
}

func (p *PhoneExtractor) add(out *Findings, raw string) {
	num := strings.TrimSpace(raw)
	digits := countDigits(num)
	if digits < 7 || digits > 15 {
		return
	}
	out.AddPhone(num)
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
