package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/contact-enrich/internal/model"
)

// streetAddressRe is deliberately conservative: a street number, a named
// street with a recognized suffix, and up to one trailing line. Heuristic
// matching only runs inside footer/contact-labeled regions to bound false
// positives.
var streetAddressRe = regexp.MustCompile(
	`\b\d{1,5}\s+[A-Z][A-Za-z0-9.'\- ]{2,40}\s+` +
		`(?:Street|St\.?|Avenue|Ave\.?|Road|Rd\.?|Boulevard|Blvd\.?|Drive|Dr\.?|Lane|Ln\.?|Way|Court|Ct\.?|Place|Pl\.?|Plaza|Square|Sq\.?|Parkway|Pkwy\.?)` +
		`(?:[,\s]+(?:Suite|Ste\.?|Unit|Floor|Fl\.?|#)\s*[A-Za-z0-9\-]+)?` +
		`(?:[,\s]+[A-Z][A-Za-z.\- ]+)?(?:[,\s]+[A-Z]{2})?(?:[,\s]+\d{5}(?:-\d{4})?)?`)

// addressScopeSelector limits heuristic scanning to regions that
// plausibly carry the site owner's address.
const addressScopeSelector = `footer, address, ` +
	`[class*="footer"], [class*="address"], [class*="contact"], ` +
	`[id*="footer"], [id*="address"], [id*="contact"]`

// AddressExtractor prefers structured Organization/LocalBusiness address
// data and falls back to scoped heuristic matching.
type AddressExtractor struct{}

func (a *AddressExtractor) Name() string { return "address" }

func (a *AddressExtractor) Extract(_ *model.FetchedPage, doc *goquery.Document) (Findings, error) {
	var out Findings

	sd, sdErr := parseStructuredData(doc)
	if sd != nil && sd.Address != "" {
		out.SetAddress(sd.Address, model.AddressSourceStructured)
		return out, nil
	}

	var scoped strings.Builder
	doc.Find(addressScopeSelector).Each(func(_ int, s *goquery.Selection) {
		scoped.WriteString(s.Text())
		scoped.WriteByte('\n')
	})

	if match := streetAddressRe.FindString(scoped.String()); match != "" {
		out.SetAddress(collapseWhitespace(match), model.AddressSourceHeuristic)
	}

	return out, sdErr
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
