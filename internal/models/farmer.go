// Package models defines the data structures for the scheme eligibility engine.
package models

import (
	"strings"
	"time"
)

// LandUnit is the unit a farmer reports land size in.
type LandUnit string

const (
	LandUnitAcres    LandUnit = "Acres"
	LandUnitHectares LandUnit = "Hectares"
	LandUnitBigha    LandUnit = "Bigha"
)

// ValidLandUnits returns all recognised land units.
func ValidLandUnits() []LandUnit {
	return []LandUnit{
		LandUnitAcres,
		LandUnitHectares,
		LandUnitBigha,
	}
}

// IsValid checks if the land unit is one of the recognised units.
func (u LandUnit) IsValid() bool {
	for _, valid := range ValidLandUnits() {
		if u == valid {
			return true
		}
	}
	return false
}

// AcresPerUnit returns the conversion factor to acres.
// Unrecognised units are treated as already being in acres.
func (u LandUnit) AcresPerUnit() float64 {
	switch u {
	case LandUnitHectares:
		return 2.47
	case LandUnitBigha:
		return 0.625
	default:
		return 1
	}
}

// ParseLandUnit converts common spellings of a land unit to a LandUnit.
// The returned bool is false when the value was not recognised, in which
// case the unit falls back to acres.
func ParseLandUnit(s string) (LandUnit, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	unitMap := map[string]LandUnit{
		"acre":     LandUnitAcres,
		"acres":    LandUnitAcres,
		"ac":       LandUnitAcres,
		"hectare":  LandUnitHectares,
		"hectares": LandUnitHectares,
		"ha":       LandUnitHectares,
		"bigha":    LandUnitBigha,
		"bighas":   LandUnitBigha,
	}

	if mapped, ok := unitMap[normalized]; ok {
		return mapped, true
	}
	return LandUnitAcres, false
}

// Land ownership values used by the rule sets.
const (
	LandOwnershipOwned              = "Owned"
	LandOwnershipLeased             = "Leased"
	LandOwnershipShared             = "Shared"
	LandOwnershipGovernmentAllotted = "Government Allotted"
)

// Farmer categories that receive priority.
const (
	FarmerCategorySmall    = "Small Farmer"
	FarmerCategoryMarginal = "Marginal Farmer"
)

// Irrigation types referenced by the rule sets.
const (
	IrrigationTubewell  = "Tubewell"
	IrrigationCanal     = "Canal"
	IrrigationRainfed   = "Rainfed"
	IrrigationDrip      = "Drip"
	IrrigationSprinkler = "Sprinkler"
)

// FarmerProfile describes a farmer for eligibility matching.
// LandUnit must be one of the exact enum values to convert: the matcher
// treats any other string, including "hectares", as acres. Only the CSV
// ingest path normalises free text through ParseLandUnit.
type FarmerProfile struct {
	ID             int64     `json:"id,omitempty" db:"id"`
	Name           string    `json:"name" db:"name"`
	Age            int       `json:"age" db:"age"`
	Gender         string    `json:"gender" db:"gender"`
	Phone          string    `json:"phone,omitempty" db:"phone"`
	Email          string    `json:"email,omitempty" db:"email"`
	State          string    `json:"state" db:"state"`
	District       string    `json:"district" db:"district"`
	Village        string    `json:"village" db:"village"`
	LandOwnership  string    `json:"landOwnership" db:"land_ownership"`
	LandSize       float64   `json:"landSize" db:"land_size"`
	LandUnit       LandUnit  `json:"landUnit" db:"land_unit"`
	CropTypes      []string  `json:"cropTypes" db:"crop_types"`
	SoilType       string    `json:"soilType" db:"soil_type"`
	IrrigationType string    `json:"irrigationType" db:"irrigation_type"`
	AnnualIncome   float64   `json:"annualIncome" db:"annual_income"`
	FamilySize     int       `json:"familySize" db:"family_size"`
	FarmerCategory string    `json:"farmerCategory" db:"farmer_category"`
	BankAccount    bool      `json:"bankAccount" db:"bank_account"`
	AadhaarLinked  bool      `json:"aadhaarLinked" db:"aadhaar_linked"`
	BatchID        string    `json:"batchId,omitempty" db:"batch_id"`
	JoinedDate     time.Time `json:"joinedDate,omitempty" db:"joined_date"`
}

// IsPriorityCategory reports whether the farmer is a small or marginal farmer.
func (p *FarmerProfile) IsPriorityCategory() bool {
	return p.FarmerCategory == FarmerCategorySmall || p.FarmerCategory == FarmerCategoryMarginal
}

// OwnsLand reports whether the farmer owns the land they cultivate.
func (p *FarmerProfile) OwnsLand() bool {
	return p.LandOwnership == LandOwnershipOwned
}

// BulkInsertResult contains the results of a bulk insert operation.
type BulkInsertResult struct {
	InsertedCount int      `json:"inserted_count"`
	FailedCount   int      `json:"failed_count"`
	InsertedIDs   []int64  `json:"inserted_ids,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}
