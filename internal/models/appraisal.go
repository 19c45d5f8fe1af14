package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Where an appraisal's annual rate came from
const (
	RateSourceApplication = "application"
	RateSourceReference   = "reference"
)

// Applicant identifies the borrower. NationalID and Phone are stored encrypted.
type Applicant struct {
	FullName   string `json:"full_name"`
	NationalID string `json:"national_id"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
}

// LoanFigures are the corrected numeric fields of a loan application
type LoanFigures struct {
	TotalRequirement decimal.Decimal `json:"total_requirement"`
	Equity           decimal.Decimal `json:"equity"`
	LoanAmount       decimal.Decimal `json:"loan_amount"`
	AnnualRate       decimal.Decimal `json:"annual_rate"`
	TermMonths       int             `json:"term_months"`
	Revenue          decimal.Decimal `json:"revenue"`
	Costs            decimal.Decimal `json:"costs"`
	CollateralValue  decimal.Decimal `json:"collateral_value"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	MonthlyExpense   decimal.Decimal `json:"monthly_expense"`
	DaysPerCycle     int             `json:"days_per_cycle"`
	ScheduleStyle    string          `json:"schedule_style"`
}

// Appraisal is a stored loan application under review.
// Schedules and ratios are derived from Figures on every read.
type Appraisal struct {
	ID         int64       `json:"id"`
	Reference  uuid.UUID   `json:"reference"`
	OfficerID  int64       `json:"officer_id"`
	Applicant  Applicant   `json:"applicant"`
	Purpose    string      `json:"purpose"`
	Figures    LoanFigures `json:"figures"`
	RateSource string      `json:"rate_source"`
	HMAC       string      `json:"-"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// AppraisalRequest is the body of POST/PUT /appraisals.
// Nil figures were not found in the application document.
type AppraisalRequest struct {
	FullName         string           `json:"full_name"`
	NationalID       string           `json:"national_id"`
	Address          string           `json:"address"`
	Phone            string           `json:"phone"`
	Purpose          string           `json:"purpose"`
	TotalRequirement *decimal.Decimal `json:"total_requirement"`
	Equity           *decimal.Decimal `json:"equity"`
	LoanAmount       *decimal.Decimal `json:"loan_amount"`
	AnnualRate       *decimal.Decimal `json:"annual_rate"`
	TermMonths       *int             `json:"term_months"`
	Revenue          *decimal.Decimal `json:"revenue"`
	Costs            *decimal.Decimal `json:"costs"`
	CollateralValue  *decimal.Decimal `json:"collateral_value"`
	MonthlyIncome    *decimal.Decimal `json:"monthly_income"`
	MonthlyExpense   *decimal.Decimal `json:"monthly_expense"`
	DaysPerCycle     *int             `json:"days_per_cycle"`
	ScheduleStyle    string           `json:"schedule_style"`
}

// MissingFieldsError lists required fields absent from a request
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Validate reports required fields that were not supplied
func (r *AppraisalRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if r.LoanAmount == nil {
		missing = append(missing, "loan_amount")
	}
	if r.TermMonths == nil {
		missing = append(missing, "term_months")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// ToFigures converts the request, using referenceRate when no annual rate was supplied.
// It returns the figures and the rate source.
func (r *AppraisalRequest) ToFigures(referenceRate decimal.Decimal) (LoanFigures, string) {
	f := LoanFigures{
		TotalRequirement: valueOr(r.TotalRequirement),
		Equity:           valueOr(r.Equity),
		LoanAmount:       valueOr(r.LoanAmount),
		Revenue:          valueOr(r.Revenue),
		Costs:            valueOr(r.Costs),
		CollateralValue:  valueOr(r.CollateralValue),
		MonthlyIncome:    valueOr(r.MonthlyIncome),
		MonthlyExpense:   valueOr(r.MonthlyExpense),
		ScheduleStyle:    r.ScheduleStyle,
	}
	if r.TermMonths != nil {
		f.TermMonths = *r.TermMonths
	}
	if r.DaysPerCycle != nil {
		f.DaysPerCycle = *r.DaysPerCycle
	}

	if r.AnnualRate == nil {
		f.AnnualRate = referenceRate
		return f, RateSourceReference
	}
	f.AnnualRate = *r.AnnualRate
	return f, RateSourceApplication
}

// Applicant returns the borrower fields of the request
func (r *AppraisalRequest) Applicant() Applicant {
	return Applicant{
		FullName:   strings.TrimSpace(r.FullName),
		NationalID: strings.TrimSpace(r.NationalID),
		Address:    strings.TrimSpace(r.Address),
		Phone:      strings.TrimSpace(r.Phone),
	}
}

func valueOr(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
