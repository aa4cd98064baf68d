package extract

import (
	"strings"

	"github.com/sells-group/contact-enrich/internal/model"
)

// Findings is the union of typed contact data discovered on one or more
// pages. All slices behave as sets: Add methods dedup case-insensitively
// where the data is case-insensitive (emails, social usernames).
type Findings struct {
	Emails         []string
	Phones         []string
	SocialProfiles []model.SocialProfile
	ContactForms   []string
	Address        string
	AddressSource  model.AddressSource
}

// Empty reports whether nothing was found.
func (f *Findings) Empty() bool {
	return len(f.Emails) == 0 && len(f.Phones) == 0 &&
		len(f.SocialProfiles) == 0 && len(f.ContactForms) == 0 &&
		f.Address == ""
}

// AddEmail adds a normalized (lower-case) email if not already present.
func (f *Findings) AddEmail(email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return
	}
	for _, existing := range f.Emails {
		if existing == email {
			return
		}
	}
	f.Emails = append(f.Emails, email)
}

// AddPhone adds a phone if the exact string is not already present.
// Dedup is raw-string only; E.164 canonicalization is a known extension
// point.
func (f *Findings) AddPhone(phone string) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return
	}
	for _, existing := range f.Phones {
		if existing == phone {
			return
		}
	}
	f.Phones = append(f.Phones, phone)
}

// AddSocial adds a profile unless (platform, username) is already known.
func (f *Findings) AddSocial(p model.SocialProfile) {
	if p.Platform == "" || p.Username == "" {
		return
	}
	key := p.Key()
	for _, existing := range f.SocialProfiles {
		if existing.Key() == key {
			return
		}
	}
	f.SocialProfiles = append(f.SocialProfiles, p)
}

// AddContactForm adds a contact form URL if not already present.
func (f *Findings) AddContactForm(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	for _, existing := range f.ContactForms {
		if existing == url {
			return
		}
	}
	f.ContactForms = append(f.ContactForms, url)
}

// SetAddress records an address, keeping the higher-confidence source:
// structured data always wins over heuristic text, and the first value
// of equal confidence sticks.
func (f *Findings) SetAddress(addr string, source model.AddressSource) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	if f.Address == "" || (source == model.AddressSourceStructured && f.AddressSource != model.AddressSourceStructured) {
		f.Address = addr
		f.AddressSource = source
	}
}

// Merge unions other into f with the same dedup rules as the Add methods.
func (f *Findings) Merge(other Findings) {
	for _, e := range other.Emails {
		f.AddEmail(e)
	}
	for _, p := range other.Phones {
		f.AddPhone(p)
	}
	for _, s := range other.SocialProfiles {
		f.AddSocial(s)
	}
	for _, c := range other.ContactForms {
		f.AddContactForm(c)
	}
	f.SetAddress(other.Address, other.AddressSource)
}
