package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/normalize"
)

// Projection turns a regexp submatch into a field value.
// Returning ok=false makes the rule count as "no match".
type Projection func(match []string) (value string, ok bool)

// PatternRule is one candidate strategy for a field: a pattern plus a projection.
type PatternRule struct {
	Name    string
	Pattern *regexp.Regexp
	Project Projection
}

// Rule compiles expr and panics on an invalid expression; rule tables are literals.
func Rule(name, expr string, project Projection) PatternRule {
	if project == nil {
		project = Group(1)
	}
	return PatternRule{Name: name, Pattern: regexp.MustCompile(expr), Project: project}
}

// Apply runs the rule against text.
func (r PatternRule) Apply(text string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return r.Project(m)
}

// Match is a resolved field value and the rule that produced it.
type Match struct {
	Value string
	Rule  string
}

// FieldExtractor tries its rules in order and keeps the first successful projection.
// Rule order is part of the field's contract.
type FieldExtractor struct {
	Field   constants.Field
	Rules   []PatternRule
	Default string
	// Reject, when set, vetoes the first match. A vetoed match resolves to
	// Default and lower-priority rules are not tried.
	Reject func(value string) bool
}

// Extract returns the resolved value, or Default with ok=false.
func (f FieldExtractor) Extract(text string) (Match, bool) {
	for _, r := range f.Rules {
		v, ok := r.Apply(text)
		if !ok {
			continue
		}
		if f.Reject != nil && f.Reject(v) {
			return Match{Value: f.Default, Rule: r.Name + ":rejected"}, false
		}
		return Match{Value: v, Rule: r.Name}, true
	}
	return Match{Value: f.Default}, false
}

// Group projects submatch n through the standard value cleanup.
func Group(n int) Projection {
	return func(m []string) (string, bool) {
		if n >= len(m) {
			return "", false
		}
		v := normalize.Value(m[n])
		return v, v != ""
	}
}

// Compact projects submatch n with all whitespace removed, upper-cased.
func Compact(n int) Projection {
	return func(m []string) (string, bool) {
		if n >= len(m) {
			return "", false
		}
		v := strings.ToUpper(normalize.RemoveSpaces(m[n]))
		return v, v != ""
	}
}

// Squash projects submatch n with all whitespace removed and case kept.
func Squash(n int) Projection {
	return func(m []string) (string, bool) {
		if n >= len(m) {
			return "", false
		}
		v := normalize.RemoveSpaces(m[n])
		return v, v != ""
	}
}

// Then chains a post-processing step after a projection.
func Then(p Projection, post func(string) (string, bool)) Projection {
	return func(m []string) (string, bool) {
		v, ok := p(m)
		if !ok {
			return "", false
		}
		return post(v)
	}
}

// labelCutter truncates a same-line capture where the next known label, or a
// +60 phone number, starts.
func labelCutter(labels string) func(string) (string, bool) {
	re := regexp.MustCompile(`(?i)\s*(?:\b(?:` + labels + `)\b[^:：\n]{0,12}[:：]|\(?\+60\)?\s?\d).*$`)
	return func(v string) (string, bool) {
		v = normalize.Value(re.ReplaceAllString(v, ""))
		return v, v != ""
	}
}

var (
	cutContact = labelCutter(`phone|tel|hp|mobile|contact|address|alamat|order|tracking|post\s*code|cod|sku|qty|quantity|seller|sender`)
	cutItem    = labelCutter(`sku|qty|quantity|variation|price|seller|sender|weight|order|tracking`)
)

// containsAny reports whether lower-cased text contains any keyword.
func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
