package ratios

import "github.com/shopspring/decimal"

// Ratio names as exposed by Ratios.Map.
const (
	LoanToRequirement   = "loan_to_requirement"
	EquityRatio         = "equity_ratio"
	LoanToValue         = "loan_to_value"
	NetMonthlyIncome    = "net_monthly_income"
	DebtServiceCoverage = "debt_service_coverage"
	Profit              = "profit"
	CapitalTurnover     = "capital_turnover"
)

const places = 2

var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(360)
)

// Inputs are the already-parsed figures of a loan application.
// FirstPayment is the first period's total due of the repayment schedule.
type Inputs struct {
	LoanAmount       decimal.Decimal
	TotalRequirement decimal.Decimal
	Equity           decimal.Decimal
	CollateralValue  decimal.Decimal
	MonthlyIncome    decimal.Decimal
	MonthlyExpense   decimal.Decimal
	FirstPayment     decimal.Decimal
	Revenue          decimal.Decimal
	Costs            decimal.Decimal
	DaysPerCycle     int
}

// Ratios holds percentages (rounded to two places) and the derived scalars.
type Ratios struct {
	LoanToRequirement   decimal.Decimal `json:"loan_to_requirement"`
	EquityRatio         decimal.Decimal `json:"equity_ratio"`
	LoanToValue         decimal.Decimal `json:"loan_to_value"`
	NetMonthlyIncome    decimal.Decimal `json:"net_monthly_income"`
	DebtServiceCoverage decimal.Decimal `json:"debt_service_coverage"`
	Profit              decimal.Decimal `json:"profit"`
	CapitalTurnover     decimal.Decimal `json:"capital_turnover"`
}

// Compute derives the advisory ratios. A ratio whose denominator is zero or
// negative is 0.
func Compute(in Inputs) Ratios {
	net := in.MonthlyIncome.Sub(in.MonthlyExpense)

	turnover := decimal.Zero
	if in.DaysPerCycle > 0 {
		turnover = daysPerYear.Div(decimal.NewFromInt(int64(in.DaysPerCycle))).Round(places)
	}

	return Ratios{
		LoanToRequirement:   Percent(in.LoanAmount, in.TotalRequirement),
		EquityRatio:         Percent(in.Equity, in.TotalRequirement),
		LoanToValue:         Percent(in.LoanAmount, in.CollateralValue),
		NetMonthlyIncome:    net,
		DebtServiceCoverage: Percent(net, in.FirstPayment),
		Profit:              in.Revenue.Sub(in.Costs),
		CapitalTurnover:     turnover,
	}
}

// Percent returns num/den*100 rounded to two places, or 0 when den <= 0.
func Percent(num, den decimal.Decimal) decimal.Decimal {
	if !den.IsPositive() {
		return decimal.Zero
	}
	return num.Mul(hundred).Div(den).Round(places)
}

// Map returns the ratios keyed by name.
func (r Ratios) Map() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		LoanToRequirement:   r.LoanToRequirement,
		EquityRatio:         r.EquityRatio,
		LoanToValue:         r.LoanToValue,
		NetMonthlyIncome:    r.NetMonthlyIncome,
		DebtServiceCoverage: r.DebtServiceCoverage,
		Profit:              r.Profit,
		CapitalTurnover:     r.CapitalTurnover,
	}
}
