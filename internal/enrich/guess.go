package enrich

import "strings"

// guessLocalParts are the conventional role addresses tried when a site
// yields no verified email at all.
var guessLocalParts = []string{"contact", "info"}

// GuessEmails fabricates role addresses for a domain. Callers must route
// the result through AddGuessedEmails so the guesses stay in the
// low-confidence field.
func GuessEmails(domain string) []string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "www.")
	if domain == "" || !strings.Contains(domain, ".") {
		return nil
	}
	out := make([]string, 0, len(guessLocalParts))
	for _, local := range guessLocalParts {
		out = append(out, local+"@"+domain)
	}
	return out
}
