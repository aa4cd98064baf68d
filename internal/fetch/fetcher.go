// Package fetch provides the rate-limited, retrying HTTP client used to
// crawl third-party sites. All network activity in the pipeline goes
// through one Fetcher so per-domain throttling and response caching are
// enforced in a single place.
package fetch

import (
	"context"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/config"
	"github.com/sells-group/contact-enrich/internal/model"
	"github.com/sells-group/contact-enrich/internal/resilience"
)

// userAgents is the fixed rotation pool. Desktop browser strings only;
// some hosts serve stripped markup to anything that looks like a bot.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:126.0) Gecko/20100101 Firefox/126.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
}

// Fetcher fetches pages with per-domain throttling, user-agent rotation,
// bounded retries, and a 24h in-memory response cache. It never panics;
// exhausted retries come back as a typed *resilience.FetchError.
type Fetcher struct {
	client   *http.Client
	cache    *Cache
	throttle *Throttle
	retry    resilience.RetryConfig
	maxBody  int64
	nextUA   atomic.Uint64
}

// New creates a Fetcher from config with its own cache and throttle state.
func New(cfg config.FetchConfig) *Fetcher {
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 5
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxBody := int64(cfg.MaxBodyBytes)
	if maxBody <= 0 {
		maxBody = 512 * 1024
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialBackoffSecs > 0 {
		retry.InitialBackoff = time.Duration(cfg.InitialBackoffSecs) * time.Second
	}
	retry.OnRetry = resilience.RetryLogger("fetch", "get")

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		cache:    NewCache(cfg.CacheTTL()),
		throttle: NewThrottle(cfg.DomainDelay()),
		retry:    retry,
		maxBody:  maxBody,
	}
}

// Fetch retrieves one HTML page. The URL is normalized first; cache hits
// return immediately and do not consume throttle budget.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.FetchedPage, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	if page, ok := f.cache.Get(normalized); ok {
		zap.L().Debug("fetch: cache hit", zap.String("url", normalized))
		return page, nil
	}

	if err := f.throttle.Wait(ctx, normalized); err != nil {
		return nil, eris.Wrap(err, "fetch: throttle wait")
	}

	page, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) (*model.FetchedPage, error) {
		return f.doFetch(ctx, normalized)
	})
	if err != nil {
		status := 0
		var te *resilience.TransientError
		if errors.As(err, &te) {
			status = te.StatusCode
		}
		return nil, &resilience.FetchError{
			URL:        normalized,
			StatusCode: status,
			Attempts:   f.retry.MaxAttempts,
			Err:        err,
		}
	}

	f.cache.Set(normalized, *page)
	return page, nil
}

// doFetch performs a single attempt. Transient failures are wrapped so
// the retry layer knows to try again; everything else fails fast.
func (f *Fetcher) doFetch(ctx context.Context, targetURL string) (*model.FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "fetch: execute request"), 0)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := eris.Errorf("fetch: status %d for %s", resp.StatusCode, targetURL)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, parseErr := mime.ParseMediaType(ct)
		if parseErr == nil && !isHTMLMediaType(mediaType) {
			return nil, &resilience.ParseError{
				Source: targetURL,
				Err:    eris.Errorf("unsupported content type %q", mediaType),
			}
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "fetch: read body"), 0)
	}

	return &model.FetchedPage{
		URL:        targetURL,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		HTML:       string(body),
		FetchedAt:  time.Now().UTC(),
	}, nil
}

func (f *Fetcher) userAgent() string {
	idx := f.nextUA.Add(1)
	return userAgents[idx%uint64(len(userAgents))]
}

func isHTMLMediaType(mediaType string) bool {
	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain":
		return true
	}
	return strings.HasSuffix(mediaType, "+html")
}
