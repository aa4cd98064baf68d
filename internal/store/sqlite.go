package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/contact-enrich/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS opportunities (
	id               TEXT PRIMARY KEY,
	url              TEXT NOT NULL,
	domain           TEXT NOT NULL,
	is_premium       INTEGER NOT NULL DEFAULT 0,
	domain_authority INTEGER NOT NULL DEFAULT 0,
	contact_info     TEXT,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_opportunities_priority
	ON opportunities(is_premium DESC, domain_authority DESC);
CREATE INDEX IF NOT EXISTS idx_opportunities_domain ON opportunities(domain);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteSelectColumns = `id, url, domain, is_premium, domain_authority, contact_info`

func (s *SQLiteStore) ListOpportunitiesNeedingContact(ctx context.Context, premiumOnly bool, limit int) ([]model.Opportunity, error) {
	query := `SELECT ` + sqliteSelectColumns + ` FROM opportunities WHERE 1=1`
	var args []any
	if premiumOnly {
		query += ` AND is_premium = 1`
	}
	query += ` ORDER BY is_premium DESC, domain_authority DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list needing contact")
	}
	defer rows.Close()

	// HasContact is a model-level rule (guessed emails alone do not
	// count), so the final filter happens here rather than in SQL.
	var out []model.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
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
	return out, eris.Wrap(rows.Err(), "sqlite: list needing contact iterate")
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]model.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteSelectColumns+` FROM opportunities
		 ORDER BY is_premium DESC, domain_authority DESC, id ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list all")
	}
	defer rows.Close()

	var out []model.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list all iterate")
}

func (s *SQLiteStore) GetContactInfo(ctx context.Context, opportunityID string) (*model.ContactInfo, error) {
	var infoJSON sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT contact_info FROM opportunities WHERE id = ?`,
		opportunityID,
	).Scan(&infoJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("opportunity not found: %s", opportunityID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get contact info %s", opportunityID)
	}
	if !infoJSON.Valid || infoJSON.String == "" {
		return nil, nil
	}

	var info model.ContactInfo
	if err := json.Unmarshal([]byte(infoJSON.String), &info); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal contact info")
	}
	return &info, nil
}

func (s *SQLiteStore) SetContactInfo(ctx context.Context, opportunityID string, info *model.ContactInfo) error {
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal contact info")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE opportunities SET contact_info = ?, updated_at = ? WHERE id = ?`,
		string(infoJSON), time.Now().UTC(), opportunityID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set contact info %s", opportunityID)
	}
	return checkRowsAffected(res, "opportunity", opportunityID)
}

func (s *SQLiteStore) ImportOpportunities(ctx context.Context, opps []model.Opportunity) (int, error) {
	if len(opps) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: import begin tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, o := range opps {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO opportunities (id, url, domain, is_premium, domain_authority, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			   url = excluded.url, domain = excluded.domain,
			   is_premium = excluded.is_premium, domain_authority = excluded.domain_authority,
			   updated_at = excluded.updated_at`,
			o.ID, o.URL, o.Domain, boolToInt(o.IsPremium), o.DomainAuthority, now, now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: import opportunity %s", o.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: import commit")
	}
	return len(opps), nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scannable interface {
	Scan(dest ...any) error
}

func scanOpportunity(row scannable) (*model.Opportunity, error) {
	var o model.Opportunity
	var premium int
	var infoJSON sql.NullString

	err := row.Scan(&o.ID, &o.URL, &o.Domain, &premium, &o.DomainAuthority, &infoJSON)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan opportunity")
	}
	o.IsPremium = premium != 0

	if infoJSON.Valid && infoJSON.String != "" {
		o.ContactInfo = &model.ContactInfo{}
		if err := json.Unmarshal([]byte(infoJSON.String), o.ContactInfo); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal contact info")
		}
	}
	return &o, nil
}
