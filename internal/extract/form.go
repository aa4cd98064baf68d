package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/contact-enrich/internal/model"
)

// contactWords signal contact intent in anchor text, hrefs, and form
// attributes.
var contactWords = []string{
	"contact", "get in touch", "reach us", "reach out",
	"enquiry", "enquire", "inquiry", "talk to us", "message us",
}

// FormExtractor scores <form> elements for contact-form likelihood. When
// no form qualifies, it falls back to the first anchor whose text or href
// denotes contact, resolved against the page URL.
type FormExtractor struct{}

func (f *FormExtractor) Name() string { return "contact_form" }

func (f *FormExtractor) Extract(page *model.FetchedPage, doc *goquery.Document) (Findings, error) {
	var out Findings

	bestScore := 0
	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		if score := scoreForm(form); score > bestScore {
			bestScore = score
		}
	})
	if bestScore > 0 {
		out.AddContactForm(pageAddress(page))
		return out, nil
	}

	// Fallback: follow the first contact-denoting anchor.
	base, err := url.Parse(pageAddress(page))
	if err != nil {
		return out, nil
	}
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !isContactLink(a.Text(), href) {
			return true
		}
		ref, parseErr := url.Parse(href)
		if parseErr != nil {
			return true
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return true
		}
		resolved.Fragment = ""
		found = resolved.String()
		return false
	})
	if found != "" {
		out.AddContactForm(found)
	}

	return out, nil
}

// scoreForm rates one form. Positive scores indicate a plausible contact
// form; search and login forms score themselves out.
func scoreForm(form *goquery.Selection) int {
	score := 0

	form.Find("input, textarea").Each(func(_ int, input *goquery.Selection) {
		typ, _ := input.Attr("type")
		typ = strings.ToLower(typ)
		attrs := inputSignature(input)

		switch {
		case typ == "email" || strings.Contains(attrs, "email"):
			score += 2
		case typ == "password":
			score -= 3
		case typ == "search" || strings.Contains(attrs, "search"):
			score -= 3
		case strings.Contains(attrs, "name") || strings.Contains(attrs, "first") || strings.Contains(attrs, "last"):
			score++
		}
		if goquery.NodeName(input) == "textarea" {
			score++
		}
	})

	sig := formSignature(form)
	for _, word := range contactWords {
		if strings.Contains(sig, word) {
			score += 2
			break
		}
	}

	return score
}

// inputSignature joins the attributes that name an input's purpose.
func inputSignature(input *goquery.Selection) string {
	var parts []string
	for _, attr := range []string{"name", "id", "placeholder", "aria-label"} {
		if v, ok := input.Attr(attr); ok {
			parts = append(parts, v)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// formSignature joins the form's own attributes with its visible text.
func formSignature(form *goquery.Selection) string {
	var parts []string
	for _, attr := range []string{"action", "id", "class", "name"} {
		if v, ok := form.Attr(attr); ok {
			parts = append(parts, v)
		}
	}
	parts = append(parts, form.Text())
	return strings.ToLower(strings.Join(parts, " "))
}

// isContactLink reports whether anchor text or href denotes a contact
// destination.
func isContactLink(text, href string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	hrefLower := strings.ToLower(href)
	if strings.HasPrefix(hrefLower, "mailto:") || strings.HasPrefix(hrefLower, "tel:") || strings.HasPrefix(hrefLower, "javascript:") {
		return false
	}
	for _, word := range contactWords {
		if strings.Contains(text, word) || strings.Contains(hrefLower, strings.ReplaceAll(word, " ", "-")) {
			return true
		}
	}
	return false
}

// pageAddress prefers the post-redirect URL when available.
func pageAddress(page *model.FetchedPage) string {
	if page.FinalURL != "" {
		return page.FinalURL
	}
	return page.URL
}
