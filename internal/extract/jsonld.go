package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/contact-enrich/internal/resilience"
)

// structuredData is the subset of embedded JSON-LD the extractors care
// about: Organization/LocalBusiness descriptors with a postal address
// and sameAs social links.
type structuredData struct {
	Address string
	SameAs  []string
}

// orgTypes are the JSON-LD @type values treated as site-owner entities.
var orgTypes = map[string]bool{
	"Organization":        true,
	"LocalBusiness":       true,
	"Corporation":         true,
	"ProfessionalService": true,
	"Store":               true,
	"Restaurant":          true,
}

// parseStructuredData scans script[type="application/ld+json"] blocks.
// Malformed blocks are skipped individually; a ParseError is returned
// only when every block failed to decode.
func parseStructuredData(doc *goquery.Document) (*structuredData, error) {
	out := &structuredData{}
	total, failed := 0, 0

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		total++
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			failed++
			return
		}
		walkJSONLD(raw, out)
	})

	if total > 0 && failed == total {
		return out, &resilience.ParseError{Source: "json-ld", Err: errAllBlocksMalformed}
	}
	return out, nil
}

var errAllBlocksMalformed = jsonParseErr("all ld+json blocks malformed")

type jsonParseErr string

func (e jsonParseErr) Error() string { return string(e) }

// walkJSONLD descends arrays and @graph wrappers looking for org nodes.
func walkJSONLD(node any, out *structuredData) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			walkJSONLD(item, out)
		}
	case map[string]any:
		if graph, ok := v["@graph"]; ok {
			walkJSONLD(graph, out)
		}
		if isOrgNode(v) {
			if out.Address == "" {
				out.Address = formatAddress(v["address"])
			}
			out.SameAs = append(out.SameAs, stringList(v["sameAs"])...)
		}
		// Orgs are sometimes nested under publisher/author.
		for _, key := range []string{"publisher", "author", "mainEntity"} {
			if child, ok := v[key]; ok {
				walkJSONLD(child, out)
			}
		}
	}
}

func isOrgNode(node map[string]any) bool {
	switch t := node["@type"].(type) {
	case string:
		return orgTypes[t]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && orgTypes[s] {
				return true
			}
		}
	}
	return false
}

// formatAddress renders either a plain string or a PostalAddress object
// into one display line.
func formatAddress(node any) string {
	switch v := node.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		var parts []string
		for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode", "addressCountry"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func stringList(node any) []string {
	switch v := node.(type) {
	case string:
		if v != "" {
			return []string{v}
		}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
