package amortization

import "github.com/shopspring/decimal"

// Summary aggregates a schedule.
type Summary struct {
	Periods        int             `json:"periods"`
	TotalPrincipal decimal.Decimal `json:"total_principal"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	FirstPayment   decimal.Decimal `json:"first_payment"`
	LastPayment    decimal.Decimal `json:"last_payment"`
}

// Summarize totals the rows of a schedule. An empty schedule gives a zero Summary.
func Summarize(rows []Row) Summary {
	s := Summary{
		Periods:        len(rows),
		TotalPrincipal: decimal.Zero,
		TotalInterest:  decimal.Zero,
		TotalPaid:      decimal.Zero,
		FirstPayment:   decimal.Zero,
		LastPayment:    decimal.Zero,
	}
	if len(rows) == 0 {
		return s
	}
	for _, r := range rows {
		s.TotalPrincipal = s.TotalPrincipal.Add(r.PrincipalDue)
		s.TotalInterest = s.TotalInterest.Add(r.InterestDue)
		s.TotalPaid = s.TotalPaid.Add(r.TotalDue)
	}
	s.FirstPayment = rows[0].TotalDue
	s.LastPayment = rows[len(rows)-1].TotalDue
	return s
}
