// Package store persists opportunities and their enrichment results.
// Two implementations exist: SQLite for single-operator use and
// PostgreSQL for shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enrich/internal/model"
)

// Store defines the persistence interface for the enrichment pipeline.
type Store interface {
	// ListOpportunitiesNeedingContact returns opportunities without a
	// usable contact channel, highest priority first (premium before
	// standard, then by descending domain authority). A limit <= 0
	// means no limit.
	ListOpportunitiesNeedingContact(ctx context.Context, premiumOnly bool, limit int) ([]model.Opportunity, error)

	// ListAll returns every opportunity in priority order.
	ListAll(ctx context.Context) ([]model.Opportunity, error)

	// GetContactInfo returns the stored contact record for an
	// opportunity, or nil when none has been recorded yet.
	GetContactInfo(ctx context.Context, opportunityID string) (*model.ContactInfo, error)

	// SetContactInfo replaces the contact record for an opportunity.
	SetContactInfo(ctx context.Context, opportunityID string, info *model.ContactInfo) error

	// ImportOpportunities upserts seed opportunities by ID without
	// touching any contact info already recorded for them.
	ImportOpportunities(ctx context.Context, opps []model.Opportunity) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
