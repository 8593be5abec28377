package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/money"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
)

// RequiredColumns defines the columns that must be present in a scenarios CSV.
var RequiredColumns = []string{
	"scenario_id",
	"venda_debito",
	"venda_credito_vista",
	"venda_credito_parcelado",
	"numero_parcelas",
}

// ColumnAliases maps alternative column names to standard names. Aliases ending in
// "_reais" carry major-unit amounts and are converted to cents.
var ColumnAliases = map[string]string{
	// scenario_id aliases
	"id":          "scenario_id",
	"scenario":    "scenario_id",
	"cenario":     "scenario_id",
	"merchant_id": "scenario_id",
	"loja":        "scenario_id",

	// email aliases
	"e-mail":        "email",
	"email_address": "email",
	"contato":       "email",

	// volume aliases
	"debito":                  "venda_debito",
	"debit":                   "venda_debito",
	"debito_reais":            "venda_debito",
	"credito":                 "venda_credito_vista",
	"credito_vista":           "venda_credito_vista",
	"credit":                  "venda_credito_vista",
	"credito_vista_reais":     "venda_credito_vista",
	"parcelado":               "venda_credito_parcelado",
	"credito_parcelado":       "venda_credito_parcelado",
	"installment":             "venda_credito_parcelado",
	"credito_parcelado_reais": "venda_credito_parcelado",

	// installments aliases
	"parcelas":     "numero_parcelas",
	"installments": "numero_parcelas",

	// sector aliases
	"setor":  "segmento",
	"sector": "segmento",
}

// filterColumns maps optional boolean columns to the filter they enable.
var filterColumns = map[string]func(*models.FilterCriteria){
	"sem_mensalidade": func(f *models.FilterCriteria) { f.NoMonthlyFee = true },
	"ecommerce":       func(f *models.FilterCriteria) { f.Ecommerce = true },
	"tarja":           func(f *models.FilterCriteria) { f.MagStripe = true },
	"nfc":             func(f *models.FilterCriteria) { f.Contactless = true },
	"chip":            func(f *models.FilterCriteria) { f.Chip = true },
	"sem_fio":         func(f *models.FilterCriteria) { f.Wireless = true },
	"pj":              func(f *models.FilterCriteria) { f.PJ = true },
	"pf":              func(f *models.FilterCriteria) { f.PF = true },
	"wifi":            func(f *models.FilterCriteria) { f.WiFi = true },
	"imprime_recibo":  func(f *models.FilterCriteria) { f.PrintsReceipt = true },
	"sem_celular":     func(f *models.FilterCriteria) { f.NoPhone = true },
	"vale_refeicao":   func(f *models.FilterCriteria) { f.MealVoucher = true },
}

// CSVParser handles parsing of merchant scenario CSV files.
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

// ParseScenarios parses CSV content into validated batch scenarios. Row errors are
// collected and the remaining rows are still returned.
func (p *CSVParser) ParseScenarios(content string) ([]*models.BatchScenario, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var scenarios []*models.BatchScenario
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

		scenario, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		if err := models.ValidateBatchScenario(scenario); err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		scenarios = append(scenarios, scenario)
	}

	if len(scenarios) == 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return scenarios, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)
	p.originalHeaders = make(map[string]string)

	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
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

// parseRow parses a single CSV row into a BatchScenario.
func (p *CSVParser) parseRow(record []string) (*models.BatchScenario, error) {
	getValue := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	scenario := &models.BatchScenario{
		ScenarioID: getValue("scenario_id"),
		Email:      getValue("email"),
	}

	volumes := []struct {
		column string
		dst    *decimal.Decimal
	}{
		{"venda_debito", &scenario.Request.DebitVolume},
		{"venda_credito_vista", &scenario.Request.CreditVolume},
		{"venda_credito_parcelado", &scenario.Request.InstallmentVolume},
	}
	for _, v := range volumes {
		amount, err := parseAmount(getValue(v.column))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", v.column, err)
		}
		if strings.HasSuffix(p.originalHeaders[v.column], "_reais") {
			amount = money.ToMinor(amount)
		}
		*v.dst = amount
	}

	installments, err := parseInt(getValue("numero_parcelas"))
	if err != nil {
		return nil, fmt.Errorf("invalid numero_parcelas: %w", err)
	}
	scenario.Request.Installments = installments

	if raw := getValue("segmento"); raw != "" {
		sector, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid segmento: %w", err)
		}
		scenario.Request.Sector = &sector
	}

	var filters models.FilterCriteria
	for column, enable := range filterColumns {
		if parseBool(getValue(column)) {
			enable(&filters)
		}
	}
	if !filters.IsEmpty() {
		scenario.Request.Filters = &filters
	}

	return scenario, nil
}

// parseAmount parses a sales volume, tolerating currency symbols and thousands separators.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}

	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")
	// "1.234,56" is read as Brazilian notation; a lone comma is a decimal separator.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	return decimal.NewFromString(s)
}

// parseInt parses a string to int, handling "6.0" style values.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "sim", "s", "yes", "y", "x":
		return true
	}
	return false
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
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

	return result, nil
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
