// Package enrich combines extractor findings into the canonical
// ContactInfo record. Merging is strictly additive: set fields union
// with case-insensitive dedup, and a populated field is only ever
// replaced by higher-confidence data, never cleared.
package enrich

import (
	"strings"
	"time"

	"github.com/sells-group/contact-enrich/internal/extract"
	"github.com/sells-group/contact-enrich/internal/model"
)

// Merge unions findings into a copy of existing (nil means a fresh
// record) and reports whether anything changed. Metadata is refreshed
// only on change so untouched records keep their original timestamps
// and skip persistence.
func Merge(existing *model.ContactInfo, findings extract.Findings, attemptedPages []string, source string) (*model.ContactInfo, bool) {
	merged := existing.Clone()
	if merged == nil {
		merged = &model.ContactInfo{}
	}

	dirty := false

	for _, email := range findings.Emails {
		if addString(&merged.Emails, strings.ToLower(email), true) {
			dirty = true
		}
	}
	for _, phone := range findings.Phones {
		if addString(&merged.Phones, phone, false) {
			dirty = true
		}
	}
	for _, profile := range findings.SocialProfiles {
		if addProfile(merged, profile) {
			dirty = true
		}
	}
	for _, form := range findings.ContactForms {
		if addString(&merged.ContactForms, form, false) {
			dirty = true
		}
	}
	if replaceAddress(merged, findings) {
		dirty = true
	}

	if dirty {
		merged.Metadata.Source = source
		merged.Metadata.ExtractorVersion = extract.Version
		merged.Metadata.LastUpdated = time.Now().UTC()
		for _, page := range attemptedPages {
			addString(&merged.Metadata.AttemptedPages, page, false)
		}
	}

	return merged, dirty
}

// AddGuessedEmails records fabricated fallback addresses. They are kept
// apart from verified emails and only added while no verified email
// exists, so a guess can never masquerade as a finding.
func AddGuessedEmails(info *model.ContactInfo, guesses []string) bool {
	if info == nil || len(info.Emails) > 0 {
		return false
	}
	dirty := false
	for _, guess := range guesses {
		if addString(&info.GuessedEmails, strings.ToLower(guess), true) {
			dirty = true
		}
	}
	return dirty
}

// addString appends value unless present; caseFold dedups
// case-insensitively.
func addString(set *[]string, value string, caseFold bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, existing := range *set {
		if existing == value || (caseFold && strings.EqualFold(existing, value)) {
			return false
		}
	}
	*set = append(*set, value)
	return true
}

func addProfile(info *model.ContactInfo, p model.SocialProfile) bool {
	if p.Platform == "" || p.Username == "" {
		return false
	}
	key := p.Key()
	for _, existing := range info.SocialProfiles {
		if existing.Key() == key {
			return false
		}
	}
	info.SocialProfiles = append(info.SocialProfiles, p)
	return true
}

// replaceAddress applies the confidence rule: fill when empty, upgrade
// heuristic to structured, never downgrade or clear.
func replaceAddress(info *model.ContactInfo, findings extract.Findings) bool {
	if findings.Address == "" {
		return false
	}
	switch {
	case info.Address == "":
	case findings.AddressSource == model.AddressSourceStructured && info.AddressSource != model.AddressSourceStructured:
	default:
		return false
	}
	if info.Address == findings.Address && info.AddressSource == findings.AddressSource {
		return false
	}
	info.Address = findings.Address
	info.AddressSource = findings.AddressSource
	return true
}
