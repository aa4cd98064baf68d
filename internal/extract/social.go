package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/contact-enrich/internal/model"
)

// socialPattern describes one platform's profile URL shapes. The first
// capture group of each pattern is the username.
type socialPattern struct {
	platform string
	patterns []*regexp.Regexp
}

// socialPatterns covers the major platforms. Order matters only for
// readability; results dedup by (platform, username).
var socialPatterns = []socialPattern{
	{
		platform: "twitter",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:www\.)?(?:twitter\.com|x\.com)/(@?[A-Za-z0-9_]{1,15})(?:/?(?:\?.*)?)?$`),
		},
	},
	{
		platform: "facebook",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:www\.)?(?:facebook|fb)\.com/([A-Za-z0-9.\-]+)/?$`),
			regexp.MustCompile(`(?i)https?://(?:www\.)?facebook\.com/profile\.php\?id=(\d+)`),
		},
	},
	{
		platform: "instagram",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:www\.)?instagram\.com/([A-Za-z0-9_.]+)/?$`),
		},
	},
	{
		platform: "linkedin",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:[a-z]{2,3}\.)?linkedin\.com/(?:company|in|school)/([A-Za-z0-9\-_%]+)/?`),
		},
	},
	{
		platform: "youtube",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:www\.)?youtube\.com/(?:channel|c|user)/([A-Za-z0-9_\-]+)`),
			regexp.MustCompile(`(?i)https?://(?:www\.)?youtube\.com/@([A-Za-z0-9_\-.]+)`),
		},
	},
	{
		platform: "tiktok",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:www\.)?tiktok\.com/@([A-Za-z0-9_.]+)`),
		},
	},
	{
		platform: "pinterest",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:www\.)?pinterest\.(?:com|co\.uk|ca)/([A-Za-z0-9_]+)/?$`),
		},
	},
	{
		platform: "github",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:www\.)?github\.com/([A-Za-z0-9\-]+)/?$`),
		},
	},
	{
		platform: "telegram",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:www\.)?(?:t\.me|telegram\.me)/([A-Za-z0-9_]+)`),
		},
	},
}

// shareURLMarkers identify share/intent/plugin URLs that mention a
// platform without linking the site's own profile.
var shareURLMarkers = []string{
	"/share", "/sharer", "/intent", "/plugins/", "/embed",
	"share.php", "shareArticle", "/oauth", "/login", "/signup",
	"/hashtag/", "/search",
}

// reservedSlugs are path segments that match profile patterns but are
// platform pages, not accounts.
var reservedSlugs = map[string]bool{
	"home": true, "about": true, "privacy": true, "legal": true,
	"help": true, "pages": true, "groups": true, "events": true,
	"policies": true, "settings": true, "explore": true,
}

// SocialExtractor finds profile links in anchor hrefs and JSON-LD
// sameAs metadata.
type SocialExtractor struct{}

func (s *SocialExtractor) Name() string { return "social" }

func (s *SocialExtractor) Extract(_ *model.FetchedPage, doc *goquery.Document) (Findings, error) {
	var out Findings

	var candidates []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		candidates = append(candidates, href)
	})

	sd, sdErr := parseStructuredData(doc)
	if sd != nil {
		candidates = append(candidates, sd.SameAs...)
	}

	for _, href := range candidates {
		s.match(&out, href)
	}

	return out, sdErr
}

func (s *SocialExtractor) match(out *Findings, href string) {
	href = strings.TrimSpace(href)
	if href == "" {
		return
	}
	lower := strings.ToLower(href)
	for _, marker := range shareURLMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return
		}
	}

	for _, sp := range socialPatterns {
		for _, re := range sp.patterns {
			m := re.FindStringSubmatch(href)
			if m == nil {
				continue
			}
			username := strings.TrimPrefix(m[1], "@")
			if username == "" || reservedSlugs[strings.ToLower(username)] {
				continue
			}
			out.AddSocial(model.SocialProfile{
				Platform: sp.platform,
				URL:      href,
				Username: username,
			})
			return
		}
	}
}
