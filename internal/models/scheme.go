// Package models defines the data structures for the scheme eligibility engine.
package models

import (
	"strings"
	"time"
)

// Scheme identifiers with dedicated rule sets.
const (
	SchemeIDPMKisan            = "SCH-001"
	SchemeIDCropInsurance      = "SCH-002"
	SchemeIDSoilHealthCard     = "SCH-003"
	SchemeIDMicroIrrigation    = "SCH-004"
	SchemeIDKisanCreditCard    = "SCH-005"
	SchemeIDSustainableFarming = "SCH-006"
)

// Scheme represents a government welfare scheme for farmers.
type Scheme struct {
	ID                string     `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	Ministry          string     `json:"ministry" db:"ministry"`
	Description       string     `json:"description" db:"description"`
	BenefitAmount     string     `json:"benefitAmount" db:"benefit_amount"`
	Eligibility       string     `json:"eligibility" db:"eligibility"`
	Category          string     `json:"category" db:"category"`
	RequiredDocuments []string   `json:"requiredDocuments" db:"required_documents"`
	Deadline          string     `json:"deadline" db:"deadline"`
	IsActive          bool       `json:"-" db:"is_active"`
	UpdatedAt         *time.Time `json:"-" db:"updated_at"`
}

// SchemeFilter narrows a scheme listing the way the explorer page does.
// Empty values and "all" disable the corresponding filter.
type SchemeFilter struct {
	Query    string `json:"query,omitempty"`
	Ministry string `json:"ministry,omitempty"`
	Category string `json:"category,omitempty"`
}

// Matches reports whether the scheme passes the filter.
func (f SchemeFilter) Matches(s *Scheme) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(s.Name), q) &&
			!strings.Contains(strings.ToLower(s.Description), q) {
			return false
		}
	}
	if !isWildcard(f.Ministry) && s.Ministry != f.Ministry {
		return false
	}
	if !isWildcard(f.Category) && s.Category != f.Category {
		return false
	}
	return true
}

func isWildcard(v string) bool {
	return v == "" || strings.EqualFold(v, "all")
}
