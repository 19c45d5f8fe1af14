package service

import (
	"github.com/Dan9191/loan-appraisal/internal/amortization"
	"github.com/Dan9191/loan-appraisal/internal/models"
	"github.com/Dan9191/loan-appraisal/internal/ratios"
	"github.com/shopspring/decimal"
)

func (s *Service) options(style string) (amortization.Options, error) {
	if style == "" {
		style = s.config.ScheduleStyle
	}
	st, err := amortization.ParseStyle(style)
	if err != nil {
		return amortization.Options{}, err
	}
	return amortization.Options{Style: st, Places: s.config.MoneyPlaces}, nil
}

func buildSchedule(terms amortization.LoanTerms, opts amortization.Options) (*models.ScheduleResponse, error) {
	rows, err := amortization.ComputeSchedule(terms, opts)
	if err != nil {
		return nil, err
	}
	return &models.ScheduleResponse{
		Style:   opts.Style,
		Rows:    rows,
		Summary: amortization.Summarize(rows),
	}, nil
}

// Schedule computes a repayment schedule for ad-hoc terms
func (s *Service) Schedule(req models.ScheduleRequest) (*models.ScheduleResponse, error) {
	opts, err := s.options(req.ScheduleStyle)
	if err != nil {
		return nil, err
	}
	if req.Places != nil {
		opts.Places = *req.Places
	}

	return buildSchedule(amortization.LoanTerms{
		Principal:   req.Principal,
		AnnualRate:  req.AnnualRate,
		TermPeriods: req.TermPeriods,
	}, opts)
}

// Ratios computes advisory ratios. Without an explicit first payment, the first
// installment of the schedule implied by loan amount, rate and term is used.
func (s *Service) Ratios(req models.RatiosRequest) (ratios.Ratios, error) {
	in := ratios.Inputs{
		LoanAmount:       req.LoanAmount,
		TotalRequirement: req.TotalRequirement,
		Equity:           req.Equity,
		CollateralValue:  req.CollateralValue,
		MonthlyIncome:    req.MonthlyIncome,
		MonthlyExpense:   req.MonthlyExpense,
		Revenue:          req.Revenue,
		Costs:            req.Costs,
		DaysPerCycle:     req.DaysPerCycle,
	}

	switch {
	case req.FirstPayment != nil:
		in.FirstPayment = *req.FirstPayment
	case req.TermMonths > 0 && req.LoanAmount.IsPositive():
		opts, err := s.options(req.ScheduleStyle)
		if err != nil {
			return ratios.Ratios{}, err
		}
		first, err := firstPayment(amortization.LoanTerms{
			Principal:   req.LoanAmount,
			AnnualRate:  req.AnnualRate,
			TermPeriods: req.TermMonths,
		}, opts)
		if err != nil {
			return ratios.Ratios{}, err
		}
		in.FirstPayment = first
	}

	return ratios.Compute(in), nil
}

func firstPayment(terms amortization.LoanTerms, opts amortization.Options) (decimal.Decimal, error) {
	rows, err := amortization.ComputeSchedule(terms, opts)
	if err != nil {
		return decimal.Zero, err
	}
	return rows[0].TotalDue, nil
}
