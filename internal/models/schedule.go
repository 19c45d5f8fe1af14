package models

import (
	"github.com/Dan9191/loan-appraisal/internal/amortization"
	"github.com/Dan9191/loan-appraisal/internal/ratios"
	"github.com/shopspring/decimal"
)

// ScheduleRequest is the body of POST /schedule
type ScheduleRequest struct {
	Principal     decimal.Decimal `json:"principal"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	TermPeriods   int             `json:"term_periods"`
	ScheduleStyle string          `json:"schedule_style"`
	Places        *int32          `json:"places,omitempty"`
}

// ScheduleResponse is a computed repayment schedule
type ScheduleResponse struct {
	Style   amortization.Style   `json:"schedule_style"`
	Rows    []amortization.Row   `json:"rows"`
	Summary amortization.Summary `json:"summary"`
}

// RatiosRequest is the body of POST /ratios.
// FirstPayment may be omitted when AnnualRate and TermMonths are given.
type RatiosRequest struct {
	LoanAmount       decimal.Decimal  `json:"loan_amount"`
	TotalRequirement decimal.Decimal  `json:"total_requirement"`
	Equity           decimal.Decimal  `json:"equity"`
	CollateralValue  decimal.Decimal  `json:"collateral_value"`
	MonthlyIncome    decimal.Decimal  `json:"monthly_income"`
	MonthlyExpense   decimal.Decimal  `json:"monthly_expense"`
	Revenue          decimal.Decimal  `json:"revenue"`
	Costs            decimal.Decimal  `json:"costs"`
	DaysPerCycle     int              `json:"days_per_cycle"`
	FirstPayment     *decimal.Decimal `json:"first_payment,omitempty"`
	AnnualRate       decimal.Decimal  `json:"annual_rate"`
	TermMonths       int              `json:"term_months"`
	ScheduleStyle    string           `json:"schedule_style"`
}

// AppraisalReport bundles an appraisal with its derived figures
type AppraisalReport struct {
	Appraisal *Appraisal        `json:"appraisal"`
	Schedule  *ScheduleResponse `json:"schedule"`
	Ratios    ratios.Ratios     `json:"ratios"`
}
