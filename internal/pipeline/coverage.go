package pipeline

import "github.com/sells-group/contact-enrich/internal/model"

// ComputeCoverage tallies how many opportunities hold a usable contact
// channel, overall and for the premium subset.
func ComputeCoverage(opps []model.Opportunity) model.Coverage {
	var cov model.Coverage
	for _, o := range opps {
		cov.Total++
		if o.IsPremium {
			cov.PremiumTotal++
		}
		if o.ContactInfo.HasContact() {
			cov.WithContact++
			if o.IsPremium {
				cov.PremiumWithContact++
			}
		}
	}
	if cov.Total > 0 {
		cov.Percent = 100 * float64(cov.WithContact) / float64(cov.Total)
	}
	if cov.PremiumTotal > 0 {
		cov.PremiumPercent = 100 * float64(cov.PremiumWithContact) / float64(cov.PremiumTotal)
	}
	return cov
}
