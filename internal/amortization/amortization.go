package amortization

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Style selects how each installment is split between principal and interest.
type Style string

const (
	// EqualPrincipal repays a constant principal amount every period.
	EqualPrincipal Style = "equal_principal"
	// EqualInstallment keeps the total payment constant (annuity).
	EqualInstallment Style = "equal_installment"
)

// DefaultPlaces is the number of decimal places money is rounded to.
const DefaultPlaces int32 = 2

var (
	ErrInvalidInput = errors.New("invalid loan terms")
	ErrUnknownStyle = errors.New("unknown schedule style")
)

var (
	hundred = decimal.NewFromInt(100)
	months  = decimal.NewFromInt(12)
)

// LoanTerms holds the inputs of a repayment schedule.
type LoanTerms struct {
	Principal   decimal.Decimal
	AnnualRate  decimal.Decimal // percent per year, 8.5 means 8.5%
	TermPeriods int
}

// Options controls schedule style and rounding.
type Options struct {
	Style  Style
	Places int32
}

// DefaultOptions returns equal-principal amortization rounded to cents.
func DefaultOptions() Options {
	return Options{Style: EqualPrincipal, Places: DefaultPlaces}
}

// Row is a single repayment period.
type Row struct {
	PeriodIndex    int             `json:"period_index"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	PrincipalDue   decimal.Decimal `json:"principal_due"`
	InterestDue    decimal.Decimal `json:"interest_due"`
	TotalDue       decimal.Decimal `json:"total_due"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// ParseStyle maps a configuration value to a Style. Empty means EqualPrincipal.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case "", EqualPrincipal:
		return EqualPrincipal, nil
	case EqualInstallment:
		return EqualInstallment, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// Validate reports whether the terms can produce a schedule.
func (t LoanTerms) Validate() error {
	if !t.Principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive", ErrInvalidInput)
	}
	if t.AnnualRate.IsNegative() {
		return fmt.Errorf("%w: annual rate cannot be negative", ErrInvalidInput)
	}
	if t.TermPeriods <= 0 {
		return fmt.Errorf("%w: term must be positive", ErrInvalidInput)
	}
	return nil
}

// ComputeSchedule builds the repayment schedule for the given terms.
// Invalid terms yield a nil schedule and an error wrapping ErrInvalidInput.
// The final row always closes at exactly zero; rounding residue is charged
// to the last period's principal.
func ComputeSchedule(terms LoanTerms, opts Options) ([]Row, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if opts.Places < 0 {
		return nil, fmt.Errorf("%w: negative rounding places", ErrInvalidInput)
	}

	switch opts.Style {
	case "", EqualPrincipal:
		return equalPrincipal(terms, opts.Places), nil
	case EqualInstallment:
		return equalInstallment(terms, opts.Places), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, opts.Style)
}

// periodInterest is balance * annualRate / 1200, rounded once.
func periodInterest(balance, annualRate decimal.Decimal, places int32) decimal.Decimal {
	return balance.Mul(annualRate).Div(hundred.Mul(months)).Round(places)
}

func equalPrincipal(terms LoanTerms, places int32) []Row {
	n := terms.TermPeriods
	// truncated so the balance lasts until period n, which takes the remainder
	installment := terms.Principal.Div(decimal.NewFromInt(int64(n))).RoundDown(places)

	rows := make([]Row, 0, n)
	balance := terms.Principal
	for i := 1; i <= n; i++ {
		principal := installment
		if i == n || principal.GreaterThan(balance) {
			principal = balance
		}
		rows = append(rows, newRow(i, balance, principal, periodInterest(balance, terms.AnnualRate, places)))
		balance = rows[len(rows)-1].ClosingBalance
	}
	return rows
}

func equalInstallment(terms LoanTerms, places int32) []Row {
	n := terms.TermPeriods
	payment := annuityPayment(terms.Principal, terms.AnnualRate, n).Round(places)

	rows := make([]Row, 0, n)
	balance := terms.Principal
	for i := 1; i <= n; i++ {
		interest := periodInterest(balance, terms.AnnualRate, places)
		principal := payment.Sub(interest)
		if principal.IsNegative() {
			principal = decimal.Zero
		}
		if i == n || principal.GreaterThan(balance) {
			principal = balance
		}
		rows = append(rows, newRow(i, balance, principal, interest))
		balance = rows[len(rows)-1].ClosingBalance
	}
	return rows
}

// annuityPayment is P*r*(1+r)^n / ((1+r)^n - 1) with r the monthly rate.
func annuityPayment(principal, annualRate decimal.Decimal, n int) decimal.Decimal {
	if annualRate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(n)))
	}
	r := annualRate.Div(hundred.Mul(months))
	growth := decimal.NewFromInt(1)
	base := growth.Add(r)
	for i := 0; i < n; i++ {
		growth = growth.Mul(base).Round(24)
	}
	return principal.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))
}

func newRow(i int, opening, principal, interest decimal.Decimal) Row {
	closing := opening.Sub(principal)
	if closing.IsNegative() {
		closing = decimal.Zero
	}
	return Row{
		PeriodIndex:    i,
		OpeningBalance: opening,
		PrincipalDue:   principal,
		InterestDue:    interest,
		TotalDue:       principal.Add(interest),
		ClosingBalance: closing,
	}
}
