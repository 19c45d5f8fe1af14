package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/Dan9191/loan-appraisal/internal/amortization"
	"github.com/Dan9191/loan-appraisal/internal/export"
	"github.com/Dan9191/loan-appraisal/internal/models"
	"github.com/Dan9191/loan-appraisal/internal/ratios"
	"github.com/Dan9191/loan-appraisal/internal/utils"
	"github.com/Dan9191/loan-appraisal/internal/utils/email"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	maxListLimit     = 100
	defaultListLimit = 20
)

// CreateAppraisal validates and stores a loan application for the officer
func (s *Service) CreateAppraisal(ctx context.Context, officerID int64, req *models.AppraisalRequest) (*models.AppraisalReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var reference decimal.Decimal
	if req.AnnualRate == nil {
		rate, err := s.KeyRate(ctx)
		if err != nil {
			return nil, err
		}
		reference = rate
	}

	figures, source := req.ToFigures(reference)
	a := &models.Appraisal{
		Reference:  uuid.New(),
		OfficerID:  officerID,
		Applicant:  req.Applicant(),
		Purpose:    req.Purpose,
		Figures:    normalize(figures),
		RateSource: source,
	}

	report, err := s.buildReport(a)
	if err != nil {
		return nil, err
	}

	stored, err := s.sealed(a)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateAppraisal(ctx, stored); err != nil {
		return nil, err
	}
	a.ID, a.HMAC, a.CreatedAt, a.UpdatedAt = stored.ID, stored.HMAC, stored.CreatedAt, stored.UpdatedAt

	s.log.WithFields(logrus.Fields{
		"appraisal_id": a.ID,
		"reference":    a.Reference.String(),
		"officer_id":   officerID,
		"rate_source":  source,
	}).Info("Appraisal created")
	return report, nil
}

// GetAppraisal returns the appraisal with its schedule and ratios recomputed
func (s *Service) GetAppraisal(ctx context.Context, officerID, id int64) (*models.AppraisalReport, error) {
	a, err := s.load(ctx, officerID, id)
	if err != nil {
		return nil, err
	}
	return s.buildReport(a)
}

// ListAppraisals returns the officer's appraisals without derived figures
func (s *Service) ListAppraisals(ctx context.Context, officerID int64, limit, offset int) ([]*models.Appraisal, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.repo.ListAppraisals(ctx, officerID, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, a := range list {
		if err := s.open(a); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// UpdateAppraisal applies a manual correction. A missing annual rate keeps the stored one.
func (s *Service) UpdateAppraisal(ctx context.Context, officerID, id int64, req *models.AppraisalRequest) (*models.AppraisalReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.load(ctx, officerID, id)
	if err != nil {
		return nil, err
	}

	figures, source := req.ToFigures(a.Figures.AnnualRate)
	if req.AnnualRate == nil {
		source = a.RateSource
	}
	a.Applicant = req.Applicant()
	a.Purpose = req.Purpose
	a.Figures = normalize(figures)
	a.RateSource = source

	report, err := s.buildReport(a)
	if err != nil {
		return nil, err
	}

	stored, err := s.sealed(a)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAppraisal(ctx, stored); err != nil {
		return nil, err
	}
	a.HMAC, a.UpdatedAt = stored.HMAC, stored.UpdatedAt

	s.log.Infof("Appraisal %d updated by officer %d", id, officerID)
	return report, nil
}

// DeleteAppraisal removes the officer's appraisal
func (s *Service) DeleteAppraisal(ctx context.Context, officerID, id int64) error {
	if err := s.repo.DeleteAppraisal(ctx, id, officerID); err != nil {
		return err
	}
	s.log.Infof("Appraisal %d deleted by officer %d", id, officerID)
	return nil
}

// ExportSchedule writes the appraisal's repayment schedule as xlsx
func (s *Service) ExportSchedule(ctx context.Context, officerID, id int64, w io.Writer) error {
	report, err := s.GetAppraisal(ctx, officerID, id)
	if err != nil {
		return err
	}
	return export.ScheduleXLSX(w, report.Schedule, s.config.MoneyPlaces)
}

// ExportAppraisal writes the appraisal fields, ratios and schedule as xlsx
func (s *Service) ExportAppraisal(ctx context.Context, officerID, id int64, w io.Writer) error {
	report, err := s.GetAppraisal(ctx, officerID, id)
	if err != nil {
		return err
	}
	return export.AppraisalXLSX(w, report, s.config.MoneyPlaces)
}

// SendReport emails the appraisal summary and workbook to the officer
func (s *Service) SendReport(ctx context.Context, officerID, id int64) error {
	user, err := s.repo.FindUserByID(ctx, officerID)
	if err != nil {
		return err
	}
	report, err := s.GetAppraisal(ctx, officerID, id)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.AppraisalXLSX(&buf, report, s.config.MoneyPlaces); err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}

	return s.mailer.SendAppraisalReport(email.Report{
		To:         user.Email,
		Username:   user.Username,
		Reference:  report.Appraisal.Reference.String(),
		Applicant:  report.Appraisal.Applicant.FullName,
		Body:       export.ReportText(report, s.config.MoneyPlaces),
		Attachment: buf.Bytes(),
	})
}

func (s *Service) buildReport(a *models.Appraisal) (*models.AppraisalReport, error) {
	f := a.Figures
	opts, err := s.options(f.ScheduleStyle)
	if err != nil {
		return nil, err
	}
	a.Figures.ScheduleStyle = string(opts.Style)

	schedule, err := buildSchedule(amortization.LoanTerms{
		Principal:   f.LoanAmount,
		AnnualRate:  f.AnnualRate,
		TermPeriods: f.TermMonths,
	}, opts)
	if err != nil {
		return nil, err
	}

	return &models.AppraisalReport{
		Appraisal: a,
		Schedule:  schedule,
		Ratios: ratios.Compute(ratios.Inputs{
			LoanAmount:       f.LoanAmount,
			TotalRequirement: f.TotalRequirement,
			Equity:           f.Equity,
			CollateralValue:  f.CollateralValue,
			MonthlyIncome:    f.MonthlyIncome,
			MonthlyExpense:   f.MonthlyExpense,
			FirstPayment:     schedule.Rows[0].TotalDue,
			Revenue:          f.Revenue,
			Costs:            f.Costs,
			DaysPerCycle:     f.DaysPerCycle,
		}),
	}, nil
}

func (s *Service) load(ctx context.Context, officerID, id int64) (*models.Appraisal, error) {
	a, err := s.repo.GetAppraisal(ctx, id, officerID)
	if err != nil {
		return nil, err
	}
	if err := s.open(a); err != nil {
		return nil, err
	}
	return a, nil
}

// sealed returns a copy of a with PII encrypted and the integrity tag set
func (s *Service) sealed(a *models.Appraisal) (*models.Appraisal, error) {
	a.HMAC = s.mac(a)

	out := *a
	var err error
	if out.Applicant.NationalID, err = utils.Encrypt(a.Applicant.NationalID, s.config.EncryptionKey); err != nil {
		return nil, fmt.Errorf("failed to encrypt national id: %w", err)
	}
	if out.Applicant.Phone, err = utils.Encrypt(a.Applicant.Phone, s.config.EncryptionKey); err != nil {
		return nil, fmt.Errorf("failed to encrypt phone: %w", err)
	}
	return &out, nil
}

// open decrypts PII in place and verifies the integrity tag
func (s *Service) open(a *models.Appraisal) error {
	var err error
	if a.Applicant.NationalID, err = utils.Decrypt(a.Applicant.NationalID, s.config.EncryptionKey); err != nil {
		return fmt.Errorf("%w: national id: %v", ErrIntegrity, err)
	}
	if a.Applicant.Phone, err = utils.Decrypt(a.Applicant.Phone, s.config.EncryptionKey); err != nil {
		return fmt.Errorf("%w: phone: %v", ErrIntegrity, err)
	}
	if !utils.VerifyHMAC(a.HMAC, s.config.HMACSecret, s.macFields(a)...) {
		s.log.Errorf("HMAC mismatch for appraisal %d", a.ID)
		return fmt.Errorf("%w: appraisal %d", ErrIntegrity, a.ID)
	}
	return nil
}

func (s *Service) mac(a *models.Appraisal) string {
	return utils.GenerateHMAC(s.config.HMACSecret, s.macFields(a)...)
}

func (s *Service) macFields(a *models.Appraisal) []string {
	f := a.Figures
	return []string{
		a.Reference.String(),
		strconv.FormatInt(a.OfficerID, 10),
		a.Applicant.FullName,
		a.Applicant.NationalID,
		a.Applicant.Phone,
		f.TotalRequirement.StringFixed(2),
		f.Equity.StringFixed(2),
		f.LoanAmount.StringFixed(2),
		f.AnnualRate.StringFixed(4),
		strconv.Itoa(f.TermMonths),
		f.Revenue.StringFixed(2),
		f.Costs.StringFixed(2),
		f.CollateralValue.StringFixed(2),
		f.MonthlyIncome.StringFixed(2),
		f.MonthlyExpense.StringFixed(2),
		strconv.Itoa(f.DaysPerCycle),
		f.ScheduleStyle,
		a.RateSource,
	}
}

// normalize rounds figures to the scale they are stored with
func normalize(f models.LoanFigures) models.LoanFigures {
	for _, d := range []*decimal.Decimal{
		&f.TotalRequirement, &f.Equity, &f.LoanAmount, &f.Revenue, &f.Costs,
		&f.CollateralValue, &f.MonthlyIncome, &f.MonthlyExpense,
	} {
		*d = d.Round(2)
	}
	f.AnnualRate = f.AnnualRate.Round(4)
	return f
}
