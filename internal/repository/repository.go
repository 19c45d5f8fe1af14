package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/loan-appraisal/internal/models"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible to the caller
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique constraint
	ErrDuplicate = errors.New("already exists")
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO appraisal.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM appraisal.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM appraisal.users
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

const appraisalColumns = `id, reference, officer_id, full_name, national_id, address, phone, purpose,
		total_requirement, equity, loan_amount, annual_rate, term_months, revenue, costs,
		collateral_value, monthly_income, monthly_expense, days_per_cycle, schedule_style,
		rate_source, hmac, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppraisal(row rowScanner) (*models.Appraisal, error) {
	a := &models.Appraisal{}
	f := &a.Figures
	err := row.Scan(&a.ID, &a.Reference, &a.OfficerID,
		&a.Applicant.FullName, &a.Applicant.NationalID, &a.Applicant.Address, &a.Applicant.Phone, &a.Purpose,
		&f.TotalRequirement, &f.Equity, &f.LoanAmount, &f.AnnualRate, &f.TermMonths, &f.Revenue, &f.Costs,
		&f.CollateralValue, &f.MonthlyIncome, &f.MonthlyExpense, &f.DaysPerCycle, &f.ScheduleStyle,
		&a.RateSource, &a.HMAC, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAppraisal stores a new appraisal. Applicant PII must already be encrypted.
func (r *Repository) CreateAppraisal(ctx context.Context, a *models.Appraisal) error {
	f := a.Figures
	query := `
		INSERT INTO appraisal.appraisals (reference, officer_id, full_name, national_id, address, phone, purpose,
			total_requirement, equity, loan_amount, annual_rate, term_months, revenue, costs,
			collateral_value, monthly_income, monthly_expense, days_per_cycle, schedule_style,
			rate_source, hmac, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21,
			CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, a.Reference, a.OfficerID,
		a.Applicant.FullName, a.Applicant.NationalID, a.Applicant.Address, a.Applicant.Phone, a.Purpose,
		f.TotalRequirement, f.Equity, f.LoanAmount, f.AnnualRate, f.TermMonths, f.Revenue, f.Costs,
		f.CollateralValue, f.MonthlyIncome, f.MonthlyExpense, f.DaysPerCycle, f.ScheduleStyle,
		a.RateSource, a.HMAC).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create appraisal: %w", err)
	}
	return nil
}

// GetAppraisal retrieves an appraisal owned by officerID
func (r *Repository) GetAppraisal(ctx context.Context, id, officerID int64) (*models.Appraisal, error) {
	query := `SELECT ` + appraisalColumns + `
		FROM appraisal.appraisals
		WHERE id = $1 AND officer_id = $2`
	a, err := scanAppraisal(r.db.QueryRowContext(ctx, query, id, officerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("appraisal %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appraisal: %w", err)
	}
	return a, nil
}

// ListAppraisals returns the officer's appraisals, newest first
func (r *Repository) ListAppraisals(ctx context.Context, officerID int64, limit, offset int) ([]*models.Appraisal, error) {
	query := `SELECT ` + appraisalColumns + `
		FROM appraisal.appraisals
		WHERE officer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, officerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list appraisals: %w", err)
	}
	defer rows.Close()

	var out []*models.Appraisal
	for rows.Next() {
		a, err := scanAppraisal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appraisal: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list appraisals: %w", err)
	}
	return out, nil
}

// UpdateAppraisal overwrites the applicant and figures of an existing appraisal
func (r *Repository) UpdateAppraisal(ctx context.Context, a *models.Appraisal) error {
	f := a.Figures
	query := `
		UPDATE appraisal.appraisals
		SET full_name = $3, national_id = $4, address = $5, phone = $6, purpose = $7,
			total_requirement = $8, equity = $9, loan_amount = $10, annual_rate = $11, term_months = $12,
			revenue = $13, costs = $14, collateral_value = $15, monthly_income = $16, monthly_expense = $17,
			days_per_cycle = $18, schedule_style = $19, rate_source = $20, hmac = $21,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND officer_id = $2
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, a.ID, a.OfficerID,
		a.Applicant.FullName, a.Applicant.NationalID, a.Applicant.Address, a.Applicant.Phone, a.Purpose,
		f.TotalRequirement, f.Equity, f.LoanAmount, f.AnnualRate, f.TermMonths,
		f.Revenue, f.Costs, f.CollateralValue, f.MonthlyIncome, f.MonthlyExpense,
		f.DaysPerCycle, f.ScheduleStyle, a.RateSource, a.HMAC).
		Scan(&a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("appraisal %d: %w", a.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update appraisal: %w", err)
	}
	return nil
}

// DeleteAppraisal removes an appraisal owned by officerID
func (r *Repository) DeleteAppraisal(ctx context.Context, id, officerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appraisal.appraisals WHERE id = $1 AND officer_id = $2`, id, officerID)
	if err != nil {
		return fmt.Errorf("failed to delete appraisal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete appraisal: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("appraisal %d: %w", id, ErrNotFound)
	}
	return nil
}
