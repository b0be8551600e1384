package matcher

import (
	"kisanmitra-scheme-engine/internal/models"
)

// NormalizeToAcres converts a land size in the given unit to acres.
// Hectares convert at 2.47, Bigha at 0.625. Acres and any unit string that
// is not recognised are returned unchanged.
func NormalizeToAcres(size float64, unit models.LandUnit) float64 {
	switch unit {
	case models.LandUnitHectares, models.LandUnitBigha:
		return size * unit.AcresPerUnit()
	default:
		return size
	}
}

// profileAcres returns the profile's land holding in acres.
func profileAcres(p *models.FarmerProfile) float64 {
	return NormalizeToAcres(p.LandSize, p.LandUnit)
}
