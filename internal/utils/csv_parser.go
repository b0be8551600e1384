// Package utils provides utility functions for the scheme eligibility engine.
package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"kisanmitra-scheme-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
	ErrInvalidBool    = errors.New("invalid yes/no value")
)

// RequiredColumns defines the columns that must be present in the CSV.
var RequiredColumns = []string{
	"name",
	"state",
	"land_size",
	"annual_income",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	// name aliases
	"farmer_name": "name",
	"farmer name": "name",
	"full_name":   "name",
	"fullname":    "name",

	// contact aliases
	"mobile":        "phone",
	"phone_number":  "phone",
	"mobile_number": "phone",
	"email_address": "email",
	"mail":          "email",

	// land aliases
	"land":           "land_size",
	"landsize":       "land_size",
	"land size":      "land_size",
	"acreage":        "land_size",
	"holding":        "land_size",
	"unit":           "land_unit",
	"landunit":       "land_unit",
	"land unit":      "land_unit",
	"ownership":      "land_ownership",
	"land ownership": "land_ownership",

	// agriculture aliases
	"crops":           "crop_types",
	"crop":            "crop_types",
	"croptypes":       "crop_types",
	"crop types":      "crop_types",
	"soil":            "soil_type",
	"soil type":       "soil_type",
	"irrigation":      "irrigation_type",
	"water":           "irrigation_type",
	"irrigation type": "irrigation_type",

	// income aliases
	"income":         "annual_income",
	"annualincome":   "annual_income",
	"annual income":  "annual_income",
	"yearly_income":  "annual_income",
	"monthly_income": "annual_income", // Will multiply by 12
	"monthlyincome":  "annual_income",
	"monthly income": "annual_income",

	// household aliases
	"family":      "family_size",
	"familysize":  "family_size",
	"family size": "family_size",
	"category":    "farmer_category",
	"farmer type": "farmer_category",

	// verification aliases
	"bank":           "bank_account",
	"bank account":   "bank_account",
	"aadhaar":        "aadhaar_linked",
	"aadhar":         "aadhaar_linked",
	"aadhaar linked": "aadhaar_linked",
	"aadhar_linked":  "aadhaar_linked",
}

// CSVParser handles parsing of farmer CSV files.
type CSVParser struct {
	columnMapping   map[string]int
	originalHeaders map[string]string // Maps normalized column name to original header
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping:   make(map[string]int),
		originalHeaders: make(map[string]string),
	}
}

// ParseFarmers parses CSV content and returns validated farmer profiles.
func (p *CSVParser) ParseFarmers(content string, batchID string) ([]*models.FarmerProfile, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var farmers []*models.FarmerProfile
	var parseErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		farmer, err := p.parseRow(record, batchID)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		if err := models.ValidateFarmerProfile(farmer); err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		farmers = append(farmers, farmer)
	}

	if len(farmers) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return farmers, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)
	p.originalHeaders = make(map[string]string)

	for i, col := range header {
		normalized := normalizeHeader(col)
		original := normalized

		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}

		p.columnMapping[normalized] = i
		p.originalHeaders[normalized] = original
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow parses a single CSV row into a FarmerProfile.
func (p *CSVParser) parseRow(record []string, batchID string) (*models.FarmerProfile, error) {
	// Optional columns yield "" when absent
	get := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	farmer := &models.FarmerProfile{
		Name:           get("name"),
		Gender:         get("gender"),
		Phone:          get("phone"),
		Email:          get("email"),
		State:          get("state"),
		District:       get("district"),
		Village:        get("village"),
		LandOwnership:  get("land_ownership"),
		CropTypes:      splitList(get("crop_types")),
		SoilType:       get("soil_type"),
		IrrigationType: get("irrigation_type"),
		FarmerCategory: get("farmer_category"),
		LandUnit:       models.LandUnitAcres,
		FamilySize:     1,
		BatchID:        batchID,
	}

	var err error

	if farmer.LandSize, err = parseFloat(get("land_size")); err != nil {
		return nil, fmt.Errorf("invalid land_size: %w", err)
	}

	if unit := get("land_unit"); unit != "" {
		parsed, ok := models.ParseLandUnit(unit)
		if !ok {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidLandUnit, unit)
		}
		farmer.LandUnit = parsed
	}

	if farmer.AnnualIncome, err = parseFloat(get("annual_income")); err != nil {
		return nil, fmt.Errorf("invalid annual_income: %w", err)
	}
	if strings.Contains(p.originalHeaders["annual_income"], "monthly") {
		farmer.AnnualIncome *= 12
	}

	if v := get("age"); v != "" {
		if farmer.Age, err = parseInt(v); err != nil {
			return nil, fmt.Errorf("invalid age: %w", err)
		}
	}

	if v := get("family_size"); v != "" {
		if farmer.FamilySize, err = parseInt(v); err != nil {
			return nil, fmt.Errorf("invalid family_size: %w", err)
		}
	}

	if farmer.BankAccount, err = parseBool(get("bank_account")); err != nil {
		return nil, fmt.Errorf("invalid bank_account: %w", err)
	}

	if farmer.AadhaarLinked, err = parseBool(get("aadhaar_linked")); err != nil {
		return nil, fmt.Errorf("invalid aadhaar_linked: %w", err)
	}

	return farmer, nil
}

func normalizeHeader(col string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
}

// splitList splits a crop list on commas, semicolons or pipes.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseBool accepts the yes/no spellings used in field surveys. Empty is false.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "no", "n", "false", "0", "none", "not linked":
		return false, nil
	case "yes", "y", "true", "1", "linked", "verified":
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBool, s)
	}
}

// parseFloat parses a string to float64, handling common formats.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	// Remove commas and currency symbols
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.TrimPrefix(s, "Rs")
	s = strings.TrimSpace(s)

	return strconv.ParseFloat(s, 64)
}

// parseInt parses a string to int, handling common formats.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	// Handle float strings (e.g., "5.0")
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) *CSVValidationResult {
	result := &CSVValidationResult{
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalized := normalizeHeader(col)
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}
		normalizedColumns[normalized] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range RequiredColumns {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
