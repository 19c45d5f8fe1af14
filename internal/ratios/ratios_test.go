package ratios

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute_LoanToRequirement(t *testing.T) {
	r := Compute(Inputs{
		LoanAmount:       d("7300000000"),
		TotalRequirement: d("7685931642"),
	})

	if r.LoanToRequirement.LessThan(d("94.97")) || r.LoanToRequirement.GreaterThan(d("94.98")) {
		t.Errorf("expected loan-to-requirement ~94.97%%, got %s", r.LoanToRequirement)
	}
}

func TestCompute_AllRatios(t *testing.T) {
	r := Compute(Inputs{
		LoanAmount:       d("800"),
		TotalRequirement: d("1000"),
		Equity:           d("200"),
		CollateralValue:  d("1600"),
		MonthlyIncome:    d("5000"),
		MonthlyExpense:   d("3000"),
		FirstPayment:     d("1000"),
		Revenue:          d("12000"),
		Costs:            d("9500"),
		DaysPerCycle:     90,
	})

	want := map[string]string{
		LoanToRequirement:   "80",
		EquityRatio:         "20",
		LoanToValue:         "50",
		NetMonthlyIncome:    "2000",
		DebtServiceCoverage: "200",
		Profit:              "2500",
		CapitalTurnover:     "4",
	}
	got := r.Map()
	for name, w := range want {
		if !got[name].Equal(d(w)) {
			t.Errorf("%s: expected %s, got %s", name, w, got[name])
		}
	}
}

func TestCompute_ZeroDenominators(t *testing.T) {
	r := Compute(Inputs{
		LoanAmount:     d("1000000"),
		Equity:         d("50000"),
		MonthlyIncome:  d("100"),
		MonthlyExpense: d("10"),
	})

	for name, v := range map[string]decimal.Decimal{
		LoanToRequirement:   r.LoanToRequirement,
		EquityRatio:         r.EquityRatio,
		LoanToValue:         r.LoanToValue,
		DebtServiceCoverage: r.DebtServiceCoverage,
		CapitalTurnover:     r.CapitalTurnover,
	} {
		if !v.IsZero() {
			t.Errorf("%s: expected 0 for zero denominator, got %s", name, v)
		}
	}
	if !r.NetMonthlyIncome.Equal(d("90")) {
		t.Errorf("expected net monthly income 90, got %s", r.NetMonthlyIncome)
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		num, den, want string
	}{
		{"1", "3", "33.33"},
		{"2", "3", "66.67"},
		{"5", "0", "0"},
		{"5", "-10", "0"},
		{"-50", "100", "-50"},
	}
	for _, tc := range cases {
		got := Percent(d(tc.num), d(tc.den))
		if !got.Equal(d(tc.want)) {
			t.Errorf("Percent(%s, %s): expected %s, got %s", tc.num, tc.den, tc.want, got)
		}
	}
}
