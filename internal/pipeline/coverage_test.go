package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/contact-enrich/internal/model"
)

func TestComputeCoverage(t *testing.T) {
	var opps []model.Opportunity
	for i := 0; i < 10; i++ {
		o := model.Opportunity{ID: fmt.Sprintf("o%d", i), IsPremium: i < 4}
		if i < 6 {
			o.ContactInfo = &model.ContactInfo{Emails: []string{"x@y.net"}}
		}
		opps = append(opps, o)
	}

	cov := ComputeCoverage(opps)
	assert.Equal(t, 10, cov.Total)
	assert.Equal(t, 6, cov.WithContact)
	assert.Equal(t, 60.0, cov.Percent)
	assert.Equal(t, 4, cov.PremiumTotal)
	assert.Equal(t, 4, cov.PremiumWithContact)
	assert.Equal(t, 100.0, cov.PremiumPercent)
}

func TestComputeCoverageEmpty(t *testing.T) {
	cov := ComputeCoverage(nil)
	assert.Equal(t, 0.0, cov.Percent)
	assert.Equal(t, 0.0, cov.PremiumPercent)
}

func TestComputeCoverageIgnoresGuessesAndAddresses(t *testing.T) {
	opps := []model.Opportunity{
		{ID: "a", ContactInfo: &model.ContactInfo{GuessedEmails: []string{"contact@a.net"}}},
		{ID: "b", ContactInfo: &model.ContactInfo{Address: "1 Main St", AddressSource: model.AddressSourceHeuristic}},
		{ID: "c", ContactInfo: &model.ContactInfo{Phones: []string{"555-123-4567"}}},
	}
	cov := ComputeCoverage(opps)
	assert.Equal(t, 1, cov.WithContact)
}
