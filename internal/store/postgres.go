package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enrich/internal/db"
	"github.com/sells-group/contact-enrich/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Tests use it with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS opportunities (
	id               TEXT PRIMARY KEY,
	url              TEXT NOT NULL,
	domain           TEXT NOT NULL,
	is_premium       BOOLEAN NOT NULL DEFAULT false,
	domain_authority INTEGER NOT NULL DEFAULT 0,
	contact_info     JSONB,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_opportunities_priority
	ON opportunities(is_premium DESC, domain_authority DESC);
CREATE INDEX IF NOT EXISTS idx_opportunities_domain ON opportunities(domain);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const postgresSelectColumns = `id, url, domain, is_premium, domain_authority, contact_info`

func (s *PostgresStore) ListOpportunitiesNeedingContact(ctx context.Context, premiumOnly bool, limit int) ([]model.Opportunity, error) {
	query := `SELECT ` + postgresSelectColumns + ` FROM opportunities WHERE true`
	if premiumOnly {
		query += ` AND is_premium`
	}
	query += ` ORDER BY is_premium DESC, domain_authority DESC, id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list needing contact")
	}
	defer rows.Close()

	var out []model.Opportunity
	for rows.Next() {
		o, err := scanPgOpportunity(rows)
		if err != nil {
			return nil, err
		}
		if !o.NeedsContact() {
			continue
		}
		out = append(out, *o)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, eris.Wrap(rows.Err(), "postgres: list needing contact iterate")
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]model.Opportunity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postgresSelectColumns+` FROM opportunities
		 ORDER BY is_premium DESC, domain_authority DESC, id ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list all")
	}
	defer rows.Close()

	var out []model.Opportunity
	for rows.Next() {
		o, err := scanPgOpportunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list all iterate")
}

func (s *PostgresStore) GetContactInfo(ctx context.Context, opportunityID string) (*model.ContactInfo, error) {
	var infoJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT contact_info FROM opportunities WHERE id = $1`,
		opportunityID,
	).Scan(&infoJSON)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("opportunity not found: %s", opportunityID)
		}
		return nil, eris.Wrapf(err, "postgres: get contact info %s", opportunityID)
	}
	if len(infoJSON) == 0 {
		return nil, nil
	}

	var info model.ContactInfo
	if err := json.Unmarshal(infoJSON, &info); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal contact info")
	}
	return &info, nil
}

func (s *PostgresStore) SetContactInfo(ctx context.Context, opportunityID string, info *model.ContactInfo) error {
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal contact info")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE opportunities SET contact_info = $1, updated_at = $2 WHERE id = $3`,
		infoJSON, time.Now().UTC(), opportunityID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set contact info %s", opportunityID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("opportunity not found: %s", opportunityID)
	}
	return nil
}

// ImportOpportunities bulk-upserts seed rows via a temp table and COPY.
// Contact info is deliberately absent from the column list so re-imports
// never clobber enrichment results.
func (s *PostgresStore) ImportOpportunities(ctx context.Context, opps []model.Opportunity) (int, error) {
	if len(opps) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(opps))
	for _, o := range opps {
		rows = append(rows, []any{o.ID, o.URL, o.Domain, o.IsPremium, o.DomainAuthority, now, now})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "opportunities",
		Columns:      []string{"id", "url", "domain", "is_premium", "domain_authority", "created_at", "updated_at"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"url", "domain", "is_premium", "domain_authority", "updated_at"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: import opportunities")
	}
	return int(n), nil
}

func scanPgOpportunity(rows pgx.Rows) (*model.Opportunity, error) {
	var o model.Opportunity
	var infoJSON []byte

	if err := rows.Scan(&o.ID, &o.URL, &o.Domain, &o.IsPremium, &o.DomainAuthority, &infoJSON); err != nil {
		return nil, eris.Wrap(err, "postgres: scan opportunity")
	}
	if len(infoJSON) > 0 {
		o.ContactInfo = &model.ContactInfo{}
		if err := json.Unmarshal(infoJSON, o.ContactInfo); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal contact info")
		}
	}
	return &o, nil
}
