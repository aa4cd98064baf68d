package override

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enrich/internal/extract"
	"github.com/sells-group/contact-enrich/internal/model"
)

type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (*model.FetchedPage, error) {
	f.calls = append(f.calls, rawURL)
	html, ok := f.pages[rawURL]
	if !ok {
		return nil, eris.Errorf("no page for %s", rawURL)
	}
	return &model.FetchedPage{
		URL:       rawURL,
		FinalURL:  rawURL,
		HTML:      html,
		FetchedAt: time.Now(),
	}, nil
}

func TestNewRegistryLoadsCatalog(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r.Len(), 5)
}

func TestLookupMatchesRegistrableDomain(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"known domain", "https://medium.com/about", true},
		{"subdomain of known domain", "https://blog.medium.com/post", true},
		{"unknown domain", "https://example-widgets.com", false},
		{"unparseable", "://bad", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := r.Lookup(tt.url)
			assert.Equal(t, tt.want, ok)
		})
	}
}

type hookStrategy struct{}

func (hookStrategy) Apply(context.Context, PageFetcher, string) (extract.Findings, error) {
	var f extract.Findings
	f.AddEmail("press@medium.com")
	return f, nil
}

func TestRegisterHookTakesPrecedence(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	r.RegisterHook("medium.com", hookStrategy{})

	s, ok := r.Lookup("https://medium.com")
	require.True(t, ok)

	found, err := s.Apply(context.Background(), &stubFetcher{}, "https://medium.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"press@medium.com"}, found.Emails)
}

func TestRuleStrategyScopesExtraction(t *testing.T) {
	rule := SiteRule{
		Domain:    "medium.com",
		Paths:     []string{"/about"},
		Selectors: []string{"footer"},
	}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://pub.medium.com": `<html><body>
			<p>Spam: <a href="mailto:noise@lurker.net">noise</a></p>
			<footer><a href="mailto:editors@pub.io">editors</a></footer>
		</body></html>`,
		"https://pub.medium.com/about": `<html><body>
			<footer><a href="https://twitter.com/pubmag">follow us</a></footer>
		</body></html>`,
	}}

	s := &ruleStrategy{rule: rule}
	found, err := s.Apply(context.Background(), fetcher, "https://pub.medium.com")
	require.NoError(t, err)

	assert.Equal(t, []string{"editors@pub.io"}, found.Emails,
		"only the footer fragment should be scanned")
	require.Len(t, found.SocialProfiles, 1)
	assert.Equal(t, "twitter", found.SocialProfiles[0].Platform)
	assert.Equal(t, "pubmag", found.SocialProfiles[0].Username)
	assert.Equal(t, []string{"https://pub.medium.com", "https://pub.medium.com/about"}, fetcher.calls)
}

func TestRuleStrategyFallsThroughWhenSelectorsMiss(t *testing.T) {
	rule := SiteRule{Domain: "medium.com", Selectors: []string{"div.nope"}}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://pub.medium.com": `<html><body><a href="mailto:hi@pub.io">hi</a></body></html>`,
	}}

	s := &ruleStrategy{rule: rule}
	found, err := s.Apply(context.Background(), fetcher, "https://pub.medium.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"hi@pub.io"}, found.Emails)
}

func TestRuleStrategyToleratesFetchFailures(t *testing.T) {
	rule := SiteRule{Domain: "medium.com", Paths: []string{"/about"}}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://pub.medium.com/about": `<html><body><a href="mailto:hi@pub.io">hi</a></body></html>`,
	}}

	s := &ruleStrategy{rule: rule}
	found, err := s.Apply(context.Background(), fetcher, "https://pub.medium.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"hi@pub.io"}, found.Emails)
}
