package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enrich/internal/extract"
	"github.com/sells-group/contact-enrich/internal/model"
)

func TestMerge_FromNil(t *testing.T) {
	var f extract.Findings
	f.AddEmail("hello@acme.com")
	f.AddPhone("(312) 555-0142")

	merged, dirty := Merge(nil, f, []string{"https://acme.com/"}, "acme.com")

	require.True(t, dirty)
	assert.Equal(t, []string{"hello@acme.com"}, merged.Emails)
	assert.Equal(t, []string{"(312) 555-0142"}, merged.Phones)
	assert.Equal(t, extract.Version, merged.Metadata.ExtractorVersion)
	assert.False(t, merged.Metadata.LastUpdated.IsZero())
	assert.Equal(t, []string{"https://acme.com/"}, merged.Metadata.AttemptedPages)
}

func TestMerge_Monotonic(t *testing.T) {
	existing := &model.ContactInfo{
		Emails: []string{"old@acme.com"},
		Phones: []string{"312-555-0100"},
		SocialProfiles: []model.SocialProfile{
			{Platform: "twitter", Username: "acme", URL: "https://twitter.com/acme"},
		},
		ContactForms: []string{"https://acme.com/contact"},
	}

	var f extract.Findings
	f.AddEmail("new@acme.com")

	merged, dirty := Merge(existing, f, nil, "acme.com")

	require.True(t, dirty)
	// Every prior element survives.
	assert.Subset(t, merged.Emails, existing.Emails)
	assert.Subset(t, merged.Phones, existing.Phones)
	assert.Subset(t, merged.ContactForms, existing.ContactForms)
	assert.Contains(t, merged.Emails, "new@acme.com")
	assert.Len(t, merged.SocialProfiles, 1)
}

func TestMerge_NoChangeIsClean(t *testing.T) {
	existing := &model.ContactInfo{
		Emails:  []string{"hello@acme.com"},
		Address: "1 Infinite Loop",
		Metadata: model.ExtractionMetadata{
			Source: "acme.com",
		},
	}

	var f extract.Findings
	f.AddEmail("HELLO@acme.com")

	merged, dirty := Merge(existing, f, []string{"https://acme.com/contact"}, "acme.com")

	assert.False(t, dirty)
	assert.Equal(t, existing.Emails, merged.Emails)
	assert.True(t, merged.Metadata.LastUpdated.IsZero(),
		"clean merge must not churn metadata")
}

func TestMerge_DoesNotMutateExisting(t *testing.T) {
	existing := &model.ContactInfo{Emails: []string{"a@acme.com"}}

	var f extract.Findings
	f.AddEmail("b@acme.com")

	_, dirty := Merge(existing, f, nil, "acme.com")

	require.True(t, dirty)
	assert.Equal(t, []string{"a@acme.com"}, existing.Emails)
}

func TestMerge_AddressConfidence(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		existing      *model.ContactInfo
		newAddr       string
		newSource     model.AddressSource
		wantAddr      string
		wantSource    model.AddressSource
		wantDirty     bool
	}{
		{
			name:       "fills empty",
			existing:   &model.ContactInfo{},
			newAddr:    "500 Main Street",
			newSource:  model.AddressSourceHeuristic,
			wantAddr:   "500 Main Street",
			wantSource: model.AddressSourceHeuristic,
			wantDirty:  true,
		},
		{
			name:       "structured upgrades heuristic",
			existing:   &model.ContactInfo{Address: "500 Main Street", AddressSource: model.AddressSourceHeuristic},
			newAddr:    "1 Infinite Loop",
			newSource:  model.AddressSourceStructured,
			wantAddr:   "1 Infinite Loop",
			wantSource: model.AddressSourceStructured,
			wantDirty:  true,
		},
		{
			name:       "heuristic never replaces structured",
			existing:   &model.ContactInfo{Address: "1 Infinite Loop", AddressSource: model.AddressSourceStructured},
			newAddr:    "500 Main Street",
			newSource:  model.AddressSourceHeuristic,
			wantAddr:   "1 Infinite Loop",
			wantSource: model.AddressSourceStructured,
			wantDirty:  false,
		},
		{
			name:       "heuristic never replaces heuristic",
			existing:   &model.ContactInfo{Address: "500 Main Street", AddressSource: model.AddressSourceHeuristic},
			newAddr:    "700 Oak Avenue",
			newSource:  model.AddressSourceHeuristic,
			wantAddr:   "500 Main Street",
			wantSource: model.AddressSourceHeuristic,
			wantDirty:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var f extract.Findings
			f.SetAddress(tt.newAddr, tt.newSource)

			merged, dirty := Merge(tt.existing, f, nil, "acme.com")

			assert.Equal(t, tt.wantDirty, dirty)
			assert.Equal(t, tt.wantAddr, merged.Address)
			assert.Equal(t, tt.wantSource, merged.AddressSource)
		})
	}
}

func TestGuessEmails(t *testing.T) {
	assert.Equal(t, []string{"contact@acme.com", "info@acme.com"}, GuessEmails("www.Acme.com"))
	assert.Nil(t, GuessEmails("localhost"))
	assert.Nil(t, GuessEmails(""))
}

func TestAddGuessedEmails_OnlyWhenNoVerified(t *testing.T) {
	info := &model.ContactInfo{}
	dirty := AddGuessedEmails(info, GuessEmails("acme.com"))
	require.True(t, dirty)
	assert.Equal(t, []string{"contact@acme.com", "info@acme.com"}, info.GuessedEmails)
	assert.Empty(t, info.Emails, "guesses never land in the verified set")
	assert.False(t, info.HasContact(), "guessed emails do not count as contact")

	withVerified := &model.ContactInfo{Emails: []string{"hello@acme.com"}}
	assert.False(t, AddGuessedEmails(withVerified, GuessEmails("acme.com")))
	assert.Empty(t, withVerified.GuessedEmails)
}
