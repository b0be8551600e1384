package matcher

import (
	"fmt"
	"math"
	"strings"

	"kisanmitra-scheme-engine/internal/models"
	"kisanmitra-scheme-engine/internal/utils"
)

// Scoring constants. These are tuned values carried over unchanged so that
// displayed scores stay stable across releases.
const (
	EligibilityThreshold = 60
	MaxMatchScore        = 100
	PriorityBonus        = 5

	pmKisanIncomeCeiling = 300000
	kccIncomeCeiling     = 400000
	kccCreditPerAcre     = 50000
	kccCreditCap         = 300000
)

// Action appended whenever a scheme is blocked by a missing requirement.
const ActionCompleteRequirements = "Complete missing requirements to become eligible"

var (
	insuranceCoveredCrops = []string{"Wheat", "Rice", "Cotton", "Soybean", "Maize", "Pulses"}
	dripBenefitCrops      = []string{"Cotton", "Sugarcane", "Vegetables", "Fruits"}
	irrigationStates      = []string{"Madhya Pradesh", "Maharashtra", "Gujarat", "Rajasthan", "Karnataka"}
	sustainableStates     = []string{"Madhya Pradesh", "Rajasthan", "Maharashtra", "Karnataka", "Andhra Pradesh"}
)

// Scorecard accumulates points and messages while a single scheme is
// evaluated. A new Scorecard is created per evaluation and discarded after.
type Scorecard struct {
	score   int
	reasons []string
	missing []string
	actions []string
}

// Award adds points for a satisfied criterion.
func (s *Scorecard) Award(points int, reason string) {
	s.score += points
	s.reasons = append(s.reasons, reason)
}

// Require records an unmet mandatory criterion and any remediation steps.
func (s *Scorecard) Require(missing string, actions ...string) {
	s.missing = append(s.missing, missing)
	s.actions = append(s.actions, actions...)
}

// Score returns the raw, unclamped score.
func (s *Scorecard) Score() int {
	return s.score
}

// Facts are the derived profile values shared by every rule set.
type Facts struct {
	Profile *models.FarmerProfile
	Acres   float64
}

// RuleSet scores a farmer against one scheme's criteria.
type RuleSet func(f Facts, card *Scorecard)

// Registry maps scheme ids to their rule sets.
type Registry map[string]RuleSet

// DefaultRegistry returns the rule sets for the built-in schemes.
func DefaultRegistry() Registry {
	return Registry{
		models.SchemeIDPMKisan:            pmKisanRules,
		models.SchemeIDCropInsurance:      cropInsuranceRules,
		models.SchemeIDSoilHealthCard:     soilHealthRules,
		models.SchemeIDMicroIrrigation:    microIrrigationRules,
		models.SchemeIDKisanCreditCard:    kisanCreditCardRules,
		models.SchemeIDSustainableFarming: sustainableFarmingRules,
	}
}

func pmKisanRules(f Facts, card *Scorecard) {
	p := f.Profile

	if p.OwnsLand() {
		card.Award(30, "You own farmland")
	} else {
		card.Require("Must own land (currently: " + p.LandOwnership + ")")
	}

	if p.AnnualIncome < pmKisanIncomeCeiling {
		card.Award(25, "Annual income below Rs. 3 lakh")
	}

	if p.AadhaarLinked {
		card.Award(20, "Aadhaar linked to bank account")
	} else {
		card.Require("Aadhaar must be linked", "Link Aadhaar to bank account")
	}

	if p.BankAccount {
		card.Award(15, "Bank account verified")
	} else {
		card.Require("Verified bank account required")
	}

	// Available in every state.
	card.Award(10, fmt.Sprintf("%s is covered under this scheme", p.State))
}

func cropInsuranceRules(f Facts, card *Scorecard) {
	p := f.Profile

	if covered := matchingCrops(p.CropTypes, insuranceCoveredCrops); len(covered) > 0 {
		card.Award(35, "You grow covered crops: "+strings.Join(covered, ", "))
	} else {
		card.Require("Must grow notified crops (Wheat, Rice, Cotton, etc.)")
	}

	if f.Acres >= 1 {
		card.Award(25, fmt.Sprintf("Land size: %s %s", utils.FormatNumber(p.LandSize), p.LandUnit))
	} else {
		card.Require("Minimum 1 acre land required")
	}

	if p.AadhaarLinked {
		card.Award(20, "Aadhaar verified")
	}

	if p.BankAccount {
		card.Award(20, "Bank account for premium deduction")
	}
}

func soilHealthRules(f Facts, card *Scorecard) {
	p := f.Profile

	card.Award(50, "All farmers are eligible")

	if p.SoilType != "" {
		card.Award(25, p.SoilType+" will benefit from customized recommendations")
	}

	if p.OwnsLand() {
		card.Award(25, "Land ownership verified")
	}
}

func microIrrigationRules(f Facts, card *Scorecard) {
	p := f.Profile

	if f.Acres >= 2 {
		card.Award(30, fmt.Sprintf("Land size (%s %s) qualifies", utils.FormatNumber(p.LandSize), p.LandUnit))
	} else {
		card.Require("Minimum 2 acres required for subsidy")
	}

	if p.IrrigationType == models.IrrigationRainfed || p.IrrigationType == models.IrrigationTubewell {
		card.Award(25, fmt.Sprintf("Can upgrade from %s to micro-irrigation", p.IrrigationType))
	}

	if crops := matchingCrops(p.CropTypes, dripBenefitCrops); len(crops) > 0 {
		card.Award(20, strings.Join(crops, ", ")+" benefit from drip irrigation")
	}

	if containsString(irrigationStates, p.State) {
		card.Award(15, "Active in "+p.State)
	}

	if p.BankAccount && p.AadhaarLinked {
		card.Award(10, "Required documents available")
	}
}

func kisanCreditCardRules(f Facts, card *Scorecard) {
	p := f.Profile

	if p.OwnsLand() {
		card.Award(30, "Land ownership verified")
	}

	if f.Acres >= 2 {
		limit := math.Min(f.Acres*kccCreditPerAcre, kccCreditCap)
		card.Award(25, "Can get credit limit: Rs. "+utils.FormatIndianNumber(limit))
	}

	if p.AnnualIncome < kccIncomeCeiling {
		card.Award(20, "Income range qualifies for subsidized interest")
	}

	if p.BankAccount {
		card.Award(15, "Bank account verified")
	} else {
		card.Require("Active bank account required", "Open or verify bank account")
	}

	if len(p.CropTypes) > 0 {
		card.Award(10, "Cultivating: "+strings.Join(p.CropTypes, ", "))
	}
}

func sustainableFarmingRules(f Facts, card *Scorecard) {
	p := f.Profile

	if containsString(sustainableStates, p.State) {
		card.Award(25, p.State+" is covered under NMSA")
	} else {
		card.Require("Not currently active in " + p.State)
	}

	if f.Acres >= 1 && f.Acres <= 5 {
		card.Award(25, "Small farmer category gets priority")
	}

	if p.IrrigationType == models.IrrigationDrip || p.IrrigationType == models.IrrigationSprinkler {
		card.Award(20, "Already using sustainable irrigation")
	}

	card.Award(10, "Soil type documented - shows awareness")
}

// matchingCrops returns the farmer's crops that appear in list, compared
// case-insensitively, in the farmer's order and spelling.
func matchingCrops(crops, list []string) []string {
	var matched []string
	for _, crop := range crops {
		for _, candidate := range list {
			if strings.EqualFold(crop, candidate) {
				matched = append(matched, crop)
				break
			}
		}
	}
	return matched
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
