// Package models defines the data structures for the scheme eligibility engine.
package models

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrEmptyFarmerName   = errors.New("farmer name cannot be empty")
	ErrInvalidAge        = errors.New("age must be between 18 and 120")
	ErrInvalidLandSize   = errors.New("land size must be greater than zero")
	ErrInvalidLandUnit   = errors.New("land unit must be Acres, Hectares or Bigha")
	ErrInvalidIncome     = errors.New("annual income cannot be negative")
	ErrInvalidFamilySize = errors.New("family size must be at least 1")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrFarmerNotFound    = errors.New("farmer not found")
	ErrSchemeNotFound    = errors.New("scheme not found")
)

// ValidateFarmerProfile validates a profile before it is stored.
// The matcher never calls this; it tolerates incomplete profiles.
func ValidateFarmerProfile(p *FarmerProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyFarmerName
	}

	if p.Age != 0 && (p.Age < 18 || p.Age > 120) {
		return ErrInvalidAge
	}

	if p.LandSize <= 0 {
		return ErrInvalidLandSize
	}

	if !p.LandUnit.IsValid() {
		return ErrInvalidLandUnit
	}

	if p.AnnualIncome < 0 {
		return ErrInvalidIncome
	}

	if p.FamilySize < 1 {
		return ErrInvalidFamilySize
	}

	if p.Email != "" && !isValidEmail(p.Email) {
		return ErrInvalidEmail
	}

	return nil
}

// isValidEmail performs basic email validation.
func isValidEmail(email string) bool {
	if email == "" {
		return false
	}

	// Basic check: must contain @ and have content before and after
	atIndex := strings.Index(email, "@")
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	// Must have a dot after @
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex <= atIndex+1 || dotIndex == len(email)-1 {
		return false
	}

	return true
}
