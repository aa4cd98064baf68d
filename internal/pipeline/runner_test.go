package pipeline

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enrich/internal/config"
	"github.com/sells-group/contact-enrich/internal/model"
)

// memStore is an in-memory Store for runner tests.
type memStore struct {
	mu   sync.Mutex
	opps map[string]*model.Opportunity
}

func newMemStore(opps ...model.Opportunity) *memStore {
	s := &memStore{opps: make(map[string]*model.Opportunity)}
	for _, o := range opps {
		s.opps[o.ID] = &o
	}
	return s
}

func (s *memStore) sorted() []model.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Opportunity
	for _, o := range s.opps {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPremium != out[j].IsPremium {
			return out[i].IsPremium
		}
		if out[i].DomainAuthority != out[j].DomainAuthority {
			return out[i].DomainAuthority > out[j].DomainAuthority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *memStore) ListAll(context.Context) ([]model.Opportunity, error) {
	return s.sorted(), nil
}

func (s *memStore) ListOpportunitiesNeedingContact(_ context.Context, premiumOnly bool, limit int) ([]model.Opportunity, error) {
	var out []model.Opportunity
	for _, o := range s.sorted() {
		if premiumOnly && !o.IsPremium {
			continue
		}
		if !o.NeedsContact() {
			continue
		}
		out = append(out, o)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) GetContactInfo(_ context.Context, id string) (*model.ContactInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.opps[id]
	if !ok {
		return nil, eris.Errorf("opportunity not found: %s", id)
	}
	return o.ContactInfo.Clone(), nil
}

func (s *memStore) SetContactInfo(_ context.Context, id string, info *model.ContactInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.opps[id]
	if !ok {
		return eris.Errorf("opportunity not found: %s", id)
	}
	o.ContactInfo = info.Clone()
	return nil
}

func (s *memStore) ImportOpportunities(_ context.Context, opps []model.Opportunity) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range opps {
		s.opps[o.ID] = &o
	}
	return len(opps), nil
}

func (s *memStore) Migrate(context.Context) error { return nil }
func (s *memStore) Close() error                  { return nil }

// mapFetcher serves canned HTML by exact URL.
type mapFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *mapFetcher) Fetch(_ context.Context, url string) (*model.FetchedPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	html, ok := f.pages[url]
	if !ok {
		return nil, eris.Errorf("fetch failed: %s", url)
	}
	return &model.FetchedPage{URL: url, FinalURL: url, StatusCode: 200, HTML: html, FetchedAt: time.Now()}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Batch:  config.BatchConfig{Size: 4, StaggerMs: 0, Limit: 100, PauseSecs: 0},
		Locate: config.LocateConfig{MaxPages: 3},
	}
}

func newTestRunner(t *testing.T, st *memStore, fetcher *mapFetcher) *Runner {
	t.Helper()
	r, err := New(testConfig(), st, fetcher)
	require.NoError(t, err)
	return r
}

func TestRunEnrichesAndPersists(t *testing.T) {
	st := newMemStore(
		model.Opportunity{ID: "a", URL: "https://a-widgets.net", Domain: "a-widgets.net", DomainAuthority: 40},
		model.Opportunity{
			ID: "done", URL: "https://done.net", Domain: "done.net",
			ContactInfo: &model.ContactInfo{Emails: []string{"x@done.net"}},
		},
	)
	fetcher := &mapFetcher{pages: map[string]string{
		"https://a-widgets.net/": `<html><body><a href="/contact">Contact</a></body></html>`,
		"https://a-widgets.net/contact": `<html><body>
			<a href="mailto:hello@a-widgets.net">email us</a>
			<a href="https://twitter.com/awidgets">tweet</a>
		</body></html>`,
	}}

	r := newTestRunner(t, st, fetcher)
	report, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed, "already-enriched row must not be selected")
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Failed)

	info, err := st.GetContactInfo(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, []string{"hello@a-widgets.net"}, info.Emails)
	require.Len(t, info.SocialProfiles, 1)
	assert.Equal(t, "awidgets", info.SocialProfiles[0].Username)
	assert.NotEmpty(t, info.Metadata.AttemptedPages)
	assert.Equal(t, "crawl", info.Metadata.Source)

	assert.Equal(t, 50.0, report.CoverageBefore.Percent)
	assert.Equal(t, 100.0, report.CoverageAfter.Percent)
}

func TestRunDryRunLeavesStoreUntouched(t *testing.T) {
	st := newMemStore(
		model.Opportunity{ID: "a", URL: "https://a-widgets.net", Domain: "a-widgets.net"},
	)
	fetcher := &mapFetcher{pages: map[string]string{
		"https://a-widgets.net/": `<html><body><a href="mailto:hi@a-widgets.net">hi</a></body></html>`,
	}}

	r := newTestRunner(t, st, fetcher)
	report, err := r.Run(context.Background(), RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Updated, "dry run still reports what would change")

	info, err := st.GetContactInfo(context.Background(), "a")
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.Equal(t, report.CoverageBefore, report.CoverageAfter)
}

func TestRunContainsIndividualFailures(t *testing.T) {
	st := newMemStore(
		model.Opportunity{ID: "dead", URL: "https://dead-host.net", Domain: "dead-host.net", DomainAuthority: 90},
		model.Opportunity{ID: "ok", URL: "https://ok-host.net", Domain: "ok-host.net", DomainAuthority: 10},
	)
	fetcher := &mapFetcher{pages: map[string]string{
		"https://ok-host.net/": `<html><body><a href="mailto:hi@ok-host.net">hi</a></body></html>`,
	}}

	r := newTestRunner(t, st, fetcher)
	report, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Failed)

	info, err := st.GetContactInfo(context.Background(), "ok")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, []string{"hi@ok-host.net"}, info.Emails)
}

func TestRunGuessesEmailsWhenCrawlFindsNone(t *testing.T) {
	st := newMemStore(
		model.Opportunity{ID: "bare", URL: "https://bare-site.net", Domain: "bare-site.net"},
	)
	fetcher := &mapFetcher{pages: map[string]string{
		"https://bare-site.net/": `<html><body><p>Nothing to see here.</p></body></html>`,
	}}

	r := newTestRunner(t, st, fetcher)
	report, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	info, err := st.GetContactInfo(context.Background(), "bare")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Empty(t, info.Emails)
	assert.Equal(t, []string{"contact@bare-site.net", "info@bare-site.net"}, info.GuessedEmails)

	// Guessed emails alone never move coverage.
	assert.Equal(t, 0.0, report.CoverageAfter.Percent)
}

func TestRunPremiumOnly(t *testing.T) {
	st := newMemStore(
		model.Opportunity{ID: "std", URL: "https://std-site.net", Domain: "std-site.net"},
		model.Opportunity{ID: "prem", URL: "https://prem-site.net", Domain: "prem-site.net", IsPremium: true},
	)
	fetcher := &mapFetcher{pages: map[string]string{
		"https://prem-site.net/": `<html><body><a href="mailto:hi@prem-site.net">hi</a></body></html>`,
		"https://std-site.net/":  `<html><body><a href="mailto:hi@std-site.net">hi</a></body></html>`,
	}}

	r := newTestRunner(t, st, fetcher)
	report, err := r.Run(context.Background(), RunOptions{PremiumOnly: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)

	info, err := st.GetContactInfo(context.Background(), "std")
	require.NoError(t, err)
	assert.Nil(t, info, "standard opportunities must be skipped")
}
