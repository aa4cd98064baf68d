package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// visibleText returns the rendered text of a document with script, style,
// and noscript content removed. The text is NFKC-normalized so fullwidth
// and compatibility characters (a favorite of email obfuscators) fold to
// their ASCII forms before pattern matching.
func visibleText(doc *goquery.Document) string {
	body := doc.Find("body")
	if body.Length() == 0 {
		return norm.NFKC.String(doc.Text())
	}
	clone := body.Clone()
	clone.Find("script, style, noscript, template").Remove()
	return norm.NFKC.String(clone.Text())
}

// scriptText returns the concatenated contents of all inline scripts,
// for extractors that look inside obfuscation code.
func scriptText(doc *goquery.Document) string {
	var sb strings.Builder
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		sb.WriteString(s.Text())
		sb.WriteByte('\n')
	})
	return sb.String()
}
