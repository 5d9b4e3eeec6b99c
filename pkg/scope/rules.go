// Package scope decides which URLs on the target host are eligible for crawling.
package scope

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Sriram-PR/site-snapshot/pkg/config"
	"github.com/Sriram-PR/site-snapshot/pkg/parse"
	"github.com/Sriram-PR/site-snapshot/pkg/utils"
)

// hostPlaceholder is substituted with the quoted target host in rule patterns
const hostPlaceholder = "{host}"

// Policy is the crawlable-surface capability the crawler depends on
type Policy interface {
	// InScope reports whether rawURL may be enqueued
	InScope(rawURL string) bool
	// Match returns the name of the first rule that accepts rawURL
	Match(rawURL string) (string, bool)
}

// Rule is one named URL shape. A URL matches when Pattern matches the whole
// fragment-free URL and Except, if set, does not match its first path segment.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Except  *regexp.Regexp
}

func (r Rule) matches(rawURL, firstSegment string) bool {
	if r.Pattern == nil || !r.Pattern.MatchString(rawURL) {
		return false
	}
	return r.Except == nil || !r.Except.MatchString(firstSegment)
}

// RuleSet is an ordered allow-list bound to one host
type RuleSet struct {
	host  string
	rules []Rule
}

var _ Policy = (*RuleSet)(nil)

// DefaultRules returns the built-in shapes for a small catalog site
func DefaultRules(host string) []Rule {
	h := regexp.QuoteMeta(strings.ToLower(host))
	prefix := `^https://` + h
	return []Rule{
		{Name: "root", Pattern: regexp.MustCompile(prefix + `/?$`)},
		{Name: "catalog", Pattern: regexp.MustCompile(prefix + `/catalog/?$`)},
		{Name: "privacy", Pattern: regexp.MustCompile(prefix + `/privacy/?$`)},
		{Name: "cookie", Pattern: regexp.MustCompile(prefix + `/(?:cookie|cookies|cookie-policy)/?$`)},
		{Name: "product", Pattern: regexp.MustCompile(prefix + `/(?:catalog/)?tproduct/\d+-[^/?#]+/?$`)},
		{
			Name:    "section",
			Pattern: regexp.MustCompile(`(?i)` + prefix + `/[^/?#]+/?$`),
			Except:  regexp.MustCompile(`(?i)^(?:catalog|privacy|cookie|tproduct)`),
		},
	}
}

// NewRuleSet builds the policy for host. With no custom rules the built-in
// DefaultRules are used.
func NewRuleSet(host string, custom []config.ScopeRuleConfig) (*RuleSet, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return nil, fmt.Errorf("%w: scope needs a target host", utils.ErrConfigValidation)
	}
	if len(custom) == 0 {
		return &RuleSet{host: host, rules: DefaultRules(host)}, nil
	}

	quoted := regexp.QuoteMeta(host)
	rules := make([]Rule, 0, len(custom))
	for _, rc := range custom {
		if strings.TrimSpace(rc.Pattern) == "" {
			return nil, fmt.Errorf("%w: scope rule '%s' has an empty pattern", utils.ErrConfigValidation, rc.Name)
		}
		pattern := strings.ReplaceAll(rc.Pattern, hostPlaceholder, quoted)
		compiled, err := utils.CompileRegexPatterns([]string{pattern, rc.Except})
		if err != nil {
			return nil, fmt.Errorf("scope rule '%s': %w", rc.Name, err)
		}
		rule := Rule{Name: rc.Name, Pattern: compiled[0]}
		if rc.Except != "" {
			rule.Except = compiled[1]
		}
		rules = append(rules, rule)
	}
	return &RuleSet{host: host, rules: rules}, nil
}

// Rules returns the rule names in evaluation order
func (rs *RuleSet) Rules() []string {
	names := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		names[i] = r.Name
	}
	return names
}

// InScope implements Policy
func (rs *RuleSet) InScope(rawURL string) bool {
	_, ok := rs.Match(rawURL)
	return ok
}

// Match implements Policy. The fragment is stripped before matching and URLs
// that are not https on the target host never match, whatever the patterns say.
func (rs *RuleSet) Match(rawURL string) (string, bool) {
	candidate, _, _ := strings.Cut(rawURL, "#")
	u, err := url.Parse(candidate)
	if err != nil || u.Scheme != "https" || !parse.SameHost(u, rs.host) {
		return "", false
	}
	first := firstSegment(u.Path)
	for _, r := range rs.rules {
		if r.matches(candidate, first) {
			return r.Name, true
		}
	}
	return "", false
}

func firstSegment(path string) string {
	path = strings.TrimLeft(path, "/")
	seg, _, _ := strings.Cut(path, "/")
	return seg
}
