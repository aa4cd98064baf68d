package model

// Opportunity is a candidate external site under consideration for outreach.
// The discovery subsystem owns everything except ContactInfo, which this
// pipeline writes back after enrichment.
type Opportunity struct {
	ID              string       `json:"id"`
	URL             string       `json:"url"`
	Domain          string       `json:"domain"`
	IsPremium       bool         `json:"is_premium"`
	DomainAuthority int          `json:"domain_authority"`
	ContactInfo     *ContactInfo `json:"contact_info,omitempty"`
}

// NeedsContact reports whether the opportunity still lacks a usable
// contact channel and should be selected for enrichment.
func (o Opportunity) NeedsContact() bool {
	return o.ContactInfo == nil || !o.ContactInfo.HasContact()
}
