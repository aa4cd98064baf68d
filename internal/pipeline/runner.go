// Package pipeline orchestrates enrichment runs: select opportunities
// still missing contact data, crawl and extract in rate-limited batches,
// merge additively, and report coverage movement.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/contact-enrich/internal/config"
	"github.com/sells-group/contact-enrich/internal/enrich"
	"github.com/sells-group/contact-enrich/internal/extract"
	"github.com/sells-group/contact-enrich/internal/locate"
	"github.com/sells-group/contact-enrich/internal/model"
	"github.com/sells-group/contact-enrich/internal/override"
	"github.com/sells-group/contact-enrich/internal/resilience"
	"github.com/sells-group/contact-enrich/internal/store"
)

// PageFetcher is the subset of the fetcher the runner needs.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchedPage, error)
}

// Runner executes enrichment runs against the store.
type Runner struct {
	cfg        *config.Config
	store      store.Store
	fetcher    PageFetcher
	locator    *locate.Locator
	overrides  *override.Registry
	extractors []extract.Extractor
}

// New wires a Runner from its dependencies.
func New(cfg *config.Config, st store.Store, fetcher PageFetcher) (*Runner, error) {
	overrides, err := override.NewRegistry()
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load overrides")
	}
	return &Runner{
		cfg:        cfg,
		store:      st,
		fetcher:    fetcher,
		locator:    locate.New(fetcher, cfg.Locate.MaxPages),
		overrides:  overrides,
		extractors: extract.DefaultExtractors(),
	}, nil
}

// RunOptions tune a single run. Zero values fall back to the batch
// section of the config.
type RunOptions struct {
	DryRun      bool
	PremiumOnly bool
	BatchSize   int
	Limit       int
}

// Run selects opportunities needing contact data and enriches them in
// staggered batches. Individual failures never abort the run.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*model.RunReport, error) {
	start := time.Now()
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID))

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = r.cfg.Batch.Size
	}
	limit := opts.Limit
	if limit == 0 {
		limit = r.cfg.Batch.Limit
	}

	all, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: list opportunities")
	}
	before := ComputeCoverage(all)

	picks, err := r.store.ListOpportunitiesNeedingContact(ctx, opts.PremiumOnly, limit)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: select opportunities")
	}

	log.Info("pipeline: starting run",
		zap.Int("selected", len(picks)),
		zap.Int("batch_size", batchSize),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("premium_only", opts.PremiumOnly),
	)

	var updated, unchanged, failed atomic.Int64

	for chunkStart := 0; chunkStart < len(picks); chunkStart += batchSize {
		chunk := picks[chunkStart:min(chunkStart+batchSize, len(picks))]

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(batchSize)

		for i, opp := range chunk {
			delay := time.Duration(i) * r.cfg.Batch.Stagger()
			g.Go(func() error {
				// A panicking extractor or strategy must not take the
				// batch down with it.
				defer func() {
					if rec := recover(); rec != nil {
						failed.Add(1)
						log.Error("pipeline: opportunity panicked",
							zap.String("opportunity_id", opp.ID),
							zap.Any("panic", rec),
							zap.Stack("stack"),
						)
					}
				}()

				if delay > 0 {
					select {
					case <-gctx.Done():
						return nil
					case <-time.After(delay):
					}
				}

				dirty, err := r.enrichOne(gctx, opp, opts.DryRun)
				switch {
				case err != nil:
					failed.Add(1)
					log.Warn("pipeline: opportunity failed",
						zap.String("opportunity_id", opp.ID),
						zap.String("domain", opp.Domain),
						zap.Error(err),
					)
				case dirty:
					updated.Add(1)
				default:
					unchanged.Add(1)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, eris.Wrap(err, "pipeline: batch")
		}

		if chunkStart+batchSize < len(picks) {
			select {
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "pipeline: run canceled")
			case <-time.After(r.cfg.Batch.Pause()):
			}
		}
	}

	after := before
	if !opts.DryRun {
		allAfter, err := r.store.ListAll(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: recompute coverage")
		}
		after = ComputeCoverage(allAfter)
	}

	report := &model.RunReport{
		RunID:          runID,
		Processed:      len(picks),
		Updated:        int(updated.Load()),
		Failed:         int(failed.Load()),
		Unchanged:      int(unchanged.Load()),
		DryRun:         opts.DryRun,
		Duration:       time.Since(start),
		CoverageBefore: before,
		CoverageAfter:  after,
	}

	log.Info("pipeline: run complete",
		zap.Int("processed", report.Processed),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration),
		zap.Float64("coverage_before", before.Percent),
		zap.Float64("coverage_after", after.Percent),
	)
	return report, nil
}

// enrichOne crawls one opportunity, merges findings into its existing
// record, and persists when anything changed.
func (r *Runner) enrichOne(ctx context.Context, opp model.Opportunity, dryRun bool) (bool, error) {
	findings, attempted, source, err := r.collect(ctx, opp)
	if err != nil {
		return false, err
	}

	info, dirty := enrich.Merge(opp.ContactInfo, findings, attempted, source)
	if enrich.AddGuessedEmails(info, enrich.GuessEmails(opp.Domain)) {
		dirty = true
	}
	if !dirty {
		return false, nil
	}
	if dryRun {
		return true, nil
	}

	if err := r.store.SetContactInfo(ctx, opp.ID, info); err != nil {
		return false, &resilience.PersistError{OpportunityID: opp.ID, Err: err}
	}
	return true, nil
}

// collect gathers findings for one opportunity: a registered override
// strategy first, the generic locate-and-extract crawl otherwise. An
// override that yields nothing falls back to the generic crawl.
func (r *Runner) collect(ctx context.Context, opp model.Opportunity) (extract.Findings, []string, string, error) {
	if strategy, ok := r.overrides.Lookup(opp.URL); ok {
		found, err := strategy.Apply(ctx, r.fetcher, opp.URL)
		if err == nil && !found.Empty() {
			return found, []string{opp.URL}, "override", nil
		}
		zap.L().Debug("pipeline: override yielded nothing, falling back",
			zap.String("domain", opp.Domain),
			zap.Error(err),
		)
	}

	var findings extract.Findings
	var attempted []string
	var lastErr error

	for _, candidate := range r.locator.Locate(ctx, opp.URL) {
		page, err := r.fetcher.Fetch(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return findings, attempted, "", eris.Wrap(ctx.Err(), "pipeline: crawl canceled")
			}
			lastErr = err
			continue
		}
		attempted = append(attempted, candidate)
		findings.Merge(extract.Page(page, r.extractors))
	}

	if len(attempted) == 0 {
		if lastErr == nil {
			lastErr = eris.Errorf("no candidate pages for %s", opp.URL)
		}
		return findings, nil, "", eris.Wrapf(lastErr, "pipeline: crawl %s", opp.Domain)
	}
	return findings, attempted, "crawl", nil
}
