// Package models defines the data structures for the scheme eligibility engine.
package models

import (
	"time"
)

// MatchResult is the outcome of evaluating one farmer against one scheme.
// It is computed fresh on every evaluation and never persisted.
type MatchResult struct {
	Scheme              *Scheme  `json:"scheme"`
	MatchScore          int      `json:"matchScore"`
	IsEligible          bool     `json:"isEligible"`
	Reasons             []string `json:"reasons"`
	MissingRequirements []string `json:"missingRequirements"`
	RequiredActions     []string `json:"requiredActions"`
}

// SchemeID returns the id of the evaluated scheme, or "" when unset.
func (r *MatchResult) SchemeID() string {
	if r.Scheme == nil {
		return ""
	}
	return r.Scheme.ID
}

// MatchSummary is a lightweight view of a result for listings and emails.
type MatchSummary struct {
	SchemeID      string `json:"scheme_id"`
	SchemeName    string `json:"scheme_name"`
	BenefitAmount string `json:"benefit_amount"`
	Deadline      string `json:"deadline"`
	MatchScore    int    `json:"match_score"`
	IsEligible    bool   `json:"is_eligible"`
}

// ToSummary converts a MatchResult to MatchSummary.
func (r *MatchResult) ToSummary() MatchSummary {
	summary := MatchSummary{
		MatchScore: r.MatchScore,
		IsEligible: r.IsEligible,
	}
	if r.Scheme != nil {
		summary.SchemeID = r.Scheme.ID
		summary.SchemeName = r.Scheme.Name
		summary.BenefitAmount = r.Scheme.BenefitAmount
		summary.Deadline = r.Scheme.Deadline
	}
	return summary
}

// BatchSummary provides statistics for a farmer batch matching run.
type BatchSummary struct {
	BatchID             string        `json:"batch_id"`
	TotalFarmers        int           `json:"total_farmers"`
	RejectedRows        int           `json:"rejected_rows"`
	StoredFarmers       int           `json:"stored_farmers"`
	TotalSchemes        int           `json:"total_schemes"`
	TotalEvaluations    int           `json:"total_evaluations"`
	EligibleMatches     int           `json:"eligible_matches"`
	FarmersWithMatches  int           `json:"farmers_with_matches"`
	NotificationsSent   int           `json:"notifications_sent"`
	NotificationsFailed int           `json:"notifications_failed"`
	ProcessingTime      time.Duration `json:"processing_time"`
	Errors              []string      `json:"errors,omitempty"`
}
