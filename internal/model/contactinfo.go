package model

import (
	"strings"
	"time"
)

// AddressSource records how an address was obtained. Structured data
// (JSON-LD Organization/LocalBusiness) outranks heuristic text matching
// when merging.
type AddressSource string

const (
	AddressSourceNone       AddressSource = ""
	AddressSourceStructured AddressSource = "structured"
	AddressSourceHeuristic  AddressSource = "heuristic"
)

// SocialProfile is one discovered social-media presence, unique per
// (Platform, lowercase Username).
type SocialProfile struct {
	Platform    string `json:"platform"`
	URL         string `json:"url"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Key returns the dedup key for a profile.
func (p SocialProfile) Key() string {
	return p.Platform + "/" + strings.ToLower(p.Username)
}

// ExtractionMetadata describes how and when a ContactInfo record was
// last enriched.
type ExtractionMetadata struct {
	Source           string    `json:"source,omitempty"`
	ExtractorVersion string    `json:"extractor_version,omitempty"`
	LastUpdated      time.Time `json:"last_updated,omitempty"`
	AttemptedPages   []string  `json:"attempted_pages,omitempty"`
}

// ContactInfo is the canonical enriched contact-channel record for an
// Opportunity. All slice fields are duplicate-free sets; emails and
// social usernames dedup case-insensitively.
//
// GuessedEmails holds fabricated fallback addresses (contact@domain,
// info@domain). They are kept apart from Emails so downstream consumers
// can distinguish verified findings from guesses, and they never count
// toward coverage.
type ContactInfo struct {
	Emails         []string           `json:"emails,omitempty"`
	GuessedEmails  []string           `json:"guessed_emails,omitempty"`
	Phones         []string           `json:"phones,omitempty"`
	SocialProfiles []SocialProfile    `json:"social_profiles,omitempty"`
	ContactForms   []string           `json:"contact_forms,omitempty"`
	Address        string             `json:"address,omitempty"`
	AddressSource  AddressSource      `json:"address_source,omitempty"`
	Metadata       ExtractionMetadata `json:"metadata,omitempty"`
}

// HasContact reports whether the record holds at least one usable contact
// channel. Guessed emails and bare addresses do not qualify.
func (c *ContactInfo) HasContact() bool {
	if c == nil {
		return false
	}
	return len(c.Emails) > 0 || len(c.Phones) > 0 ||
		len(c.SocialProfiles) > 0 || len(c.ContactForms) > 0
}

// Clone returns a deep copy so merges never alias the stored record.
func (c *ContactInfo) Clone() *ContactInfo {
	if c == nil {
		return nil
	}
	out := *c
	out.Emails = append([]string(nil), c.Emails...)
	out.GuessedEmails = append([]string(nil), c.GuessedEmails...)
	out.Phones = append([]string(nil), c.Phones...)
	out.SocialProfiles = append([]SocialProfile(nil), c.SocialProfiles...)
	out.ContactForms = append([]string(nil), c.ContactForms...)
	out.Metadata.AttemptedPages = append([]string(nil), c.Metadata.AttemptedPages...)
	return &out
}
