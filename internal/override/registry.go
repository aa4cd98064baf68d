// Package override routes a small set of known domains to site-specific
// extraction strategies. Most sites go through the generic extractors;
// the registry exists for high-traffic platforms whose contact data
// lives behind markup the heuristics cannot reach.
package override

import (
	_ "embed"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/contact-enrich/internal/fetch"
)

//go:embed rules.yaml
var rulesYAML []byte

type ruleFile struct {
	Sites []SiteRule `yaml:"sites"`
}

// SiteRule is one declarative entry in the rules catalog.
type SiteRule struct {
	// Domain is the registrable domain the rule applies to.
	Domain string `yaml:"domain"`
	// Paths lists site-relative pages to fetch in addition to the home page.
	Paths []string `yaml:"paths"`
	// Selectors scope extraction to matching fragments. When empty the
	// whole page is used.
	Selectors []string `yaml:"selectors"`
}

// Registry maps registrable domains to strategies. Coded hooks take
// precedence over YAML rules for the same domain.
type Registry struct {
	rules map[string]SiteRule
	hooks map[string]Strategy
}

// NewRegistry loads the embedded rules catalog.
func NewRegistry() (*Registry, error) {
	var f ruleFile
	if err := yaml.Unmarshal(rulesYAML, &f); err != nil {
		return nil, eris.Wrap(err, "override: parse rules catalog")
	}
	r := &Registry{
		rules: make(map[string]SiteRule, len(f.Sites)),
		hooks: make(map[string]Strategy),
	}
	for _, s := range f.Sites {
		d := strings.ToLower(strings.TrimSpace(s.Domain))
		if d == "" {
			return nil, eris.New("override: rule with empty domain")
		}
		r.rules[d] = s
	}
	return r, nil
}

// RegisterHook installs a coded strategy for a domain, replacing any
// YAML rule for the same domain.
func (r *Registry) RegisterHook(domain string, s Strategy) {
	r.hooks[strings.ToLower(domain)] = s
}

// Lookup returns the strategy for a URL's registrable domain, if any.
func (r *Registry) Lookup(rawURL string) (Strategy, bool) {
	domain := fetch.RegistrableDomain(rawURL)
	if domain == "" {
		return nil, false
	}
	if s, ok := r.hooks[domain]; ok {
		return s, true
	}
	if rule, ok := r.rules[domain]; ok {
		return &ruleStrategy{rule: rule}, true
	}
	return nil, false
}

// Len reports how many domains have strategies.
func (r *Registry) Len() int {
	n := len(r.rules)
	for d := range r.hooks {
		if _, dup := r.rules[d]; !dup {
			n++
		}
	}
	return n
}
