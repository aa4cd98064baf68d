package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasContact(t *testing.T) {
	tests := []struct {
		name string
		info *ContactInfo
		want bool
	}{
		{"nil record", nil, false},
		{"empty record", &ContactInfo{}, false},
		{"email", &ContactInfo{Emails: []string{"a@b.net"}}, true},
		{"phone", &ContactInfo{Phones: []string{"555-123-4567"}}, true},
		{"social", &ContactInfo{SocialProfiles: []SocialProfile{{Platform: "twitter", Username: "a"}}}, true},
		{"form", &ContactInfo{ContactForms: []string{"https://a.net/contact"}}, true},
		{"guessed email only", &ContactInfo{GuessedEmails: []string{"contact@a.net"}}, false},
		{"address only", &ContactInfo{Address: "1 Main St", AddressSource: AddressSourceHeuristic}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.HasContact())
		})
	}
}

func TestNeedsContact(t *testing.T) {
	assert.True(t, Opportunity{}.NeedsContact())
	assert.True(t, Opportunity{ContactInfo: &ContactInfo{GuessedEmails: []string{"x@y.net"}}}.NeedsContact())
	assert.False(t, Opportunity{ContactInfo: &ContactInfo{Emails: []string{"x@y.net"}}}.NeedsContact())
}

func TestCloneIsDeep(t *testing.T) {
	orig := &ContactInfo{
		Emails:         []string{"a@b.net"},
		SocialProfiles: []SocialProfile{{Platform: "github", Username: "a"}},
		Metadata:       ExtractionMetadata{AttemptedPages: []string{"https://a.net/"}},
	}
	clone := orig.Clone()
	clone.Emails[0] = "changed@b.net"
	clone.SocialProfiles[0].Username = "changed"
	clone.Metadata.AttemptedPages[0] = "changed"

	assert.Equal(t, "a@b.net", orig.Emails[0])
	assert.Equal(t, "a", orig.SocialProfiles[0].Username)
	assert.Equal(t, "https://a.net/", orig.Metadata.AttemptedPages[0])

	var nilInfo *ContactInfo
	assert.Nil(t, nilInfo.Clone())
}

func TestSocialProfileKey(t *testing.T) {
	a := SocialProfile{Platform: "twitter", Username: "Acme"}
	b := SocialProfile{Platform: "twitter", Username: "acme"}
	c := SocialProfile{Platform: "github", Username: "acme"}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}
