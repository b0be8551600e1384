// Package matcher implements the rule-based scheme eligibility matcher.
//
// Every function in this package is pure: results depend only on the
// profile and schemes passed in, so a Matcher is safe for concurrent use.
package matcher

import (
	"sort"

	"kisanmitra-scheme-engine/internal/models"
)

// Matcher evaluates farmer profiles against schemes using a rule registry.
type Matcher struct {
	rules Registry
}

// New creates a matcher over a copy of the given registry.
func New(rules Registry) *Matcher {
	copied := make(Registry, len(rules))
	for id, rs := range rules {
		copied[id] = rs
	}
	return &Matcher{rules: copied}
}

// NewDefault creates a matcher with the built-in scheme rule sets.
func NewDefault() *Matcher {
	return New(DefaultRegistry())
}

var defaultMatcher = NewDefault()

// HasRules reports whether the scheme id has a dedicated rule set. Schemes
// without one only ever receive the general bonus.
func (m *Matcher) HasRules(schemeID string) bool {
	_, ok := m.rules[schemeID]
	return ok
}

// Evaluate scores a single farmer against a single scheme.
func (m *Matcher) Evaluate(profile *models.FarmerProfile, scheme *models.Scheme) models.MatchResult {
	card := &Scorecard{}

	if rules, ok := m.rules[scheme.ID]; ok {
		rules(Facts{Profile: profile, Acres: profileAcres(profile)}, card)
	}

	// General bonus, independent of the scheme
	if profile.IsPriorityCategory() {
		card.Award(PriorityBonus, "Priority category farmer")
	}

	isEligible := card.score >= EligibilityThreshold && len(card.missing) == 0

	if !isEligible && len(card.missing) > 0 {
		card.actions = append(card.actions, ActionCompleteRequirements)
	}

	score := card.score
	if score > MaxMatchScore {
		score = MaxMatchScore
	}
	if score < 0 {
		score = 0
	}

	return models.MatchResult{
		Scheme:              scheme,
		MatchScore:          score,
		IsEligible:          isEligible,
		Reasons:             nonNil(card.reasons),
		MissingRequirements: nonNil(card.missing),
		RequiredActions:     nonNil(card.actions),
	}
}

// MatchAll evaluates the profile against every scheme and returns the
// results ordered by descending match score.
func (m *Matcher) MatchAll(profile *models.FarmerProfile, schemes []*models.Scheme) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(schemes))
	for _, scheme := range schemes {
		if scheme == nil {
			continue
		}
		results = append(results, m.Evaluate(profile, scheme))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	return results
}

// FilterEligible returns only the eligible results of MatchAll, keeping
// their order.
func (m *Matcher) FilterEligible(profile *models.FarmerProfile, schemes []*models.Scheme) []models.MatchResult {
	return EligibleOnly(m.MatchAll(profile, schemes))
}

// EligibleOnly filters already ranked results down to eligible ones.
func EligibleOnly(results []models.MatchResult) []models.MatchResult {
	eligible := make([]models.MatchResult, 0, len(results))
	for _, r := range results {
		if r.IsEligible {
			eligible = append(eligible, r)
		}
	}
	return eligible
}

// Evaluate scores a profile against a scheme using the built-in rules.
func Evaluate(profile *models.FarmerProfile, scheme *models.Scheme) models.MatchResult {
	return defaultMatcher.Evaluate(profile, scheme)
}

// MatchAll ranks every scheme for the profile using the built-in rules.
func MatchAll(profile *models.FarmerProfile, schemes []*models.Scheme) []models.MatchResult {
	return defaultMatcher.MatchAll(profile, schemes)
}

// FilterEligible returns the eligible schemes for the profile using the
// built-in rules.
func FilterEligible(profile *models.FarmerProfile, schemes []*models.Scheme) []models.MatchResult {
	return defaultMatcher.FilterEligible(profile, schemes)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
