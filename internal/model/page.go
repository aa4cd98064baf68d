package model

import "time"

// FetchedPage is one successfully fetched HTML document.
type FetchedPage struct {
	URL        string    `json:"url"`
	FinalURL   string    `json:"final_url"`
	StatusCode int       `json:"status_code"`
	HTML       string    `json:"html"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Coverage summarizes how many opportunities hold a usable contact
// channel, overall and for the premium subset.
type Coverage struct {
	Total              int     `json:"total"`
	WithContact        int     `json:"with_contact"`
	Percent            float64 `json:"percent"`
	PremiumTotal       int     `json:"premium_total"`
	PremiumWithContact int     `json:"premium_with_contact"`
	PremiumPercent     float64 `json:"premium_percent"`
}

// RunReport is the end-of-run summary for one enrichment run.
type RunReport struct {
	RunID          string        `json:"run_id"`
	Processed      int           `json:"processed"`
	Updated        int           `json:"updated"`
	Failed         int           `json:"failed"`
	Unchanged      int           `json:"unchanged"`
	DryRun         bool          `json:"dry_run"`
	Duration       time.Duration `json:"duration"`
	CoverageBefore Coverage      `json:"coverage_before"`
	CoverageAfter  Coverage      `json:"coverage_after"`
}
