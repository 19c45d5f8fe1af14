package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/loan-appraisal/internal/config"
	"github.com/Dan9191/loan-appraisal/internal/models"
	"github.com/Dan9191/loan-appraisal/internal/repository"
	"github.com/Dan9191/loan-appraisal/internal/utils/email"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrInvalidRegistration      = errors.New("username, email and password are required")
	ErrIntegrity                = errors.New("appraisal integrity check failed")
	ErrReferenceRateUnavailable = errors.New("reference rate unavailable")
)

const tokenTTL = 24 * time.Hour

// Store is the persistence the service depends on
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateAppraisal(ctx context.Context, a *models.Appraisal) error
	GetAppraisal(ctx context.Context, id, officerID int64) (*models.Appraisal, error)
	ListAppraisals(ctx context.Context, officerID int64, limit, offset int) ([]*models.Appraisal, error)
	UpdateAppraisal(ctx context.Context, a *models.Appraisal) error
	DeleteAppraisal(ctx context.Context, id, officerID int64) error
}

// RateProvider supplies the reference annual rate, in percent
type RateProvider interface {
	GetKeyRate(ctx context.Context) (float64, error)
}

// ReportSender delivers appraisal reports
type ReportSender interface {
	SendAppraisalReport(r email.Report) error
}

// Service handles business logic
type Service struct {
	repo   Store
	cache  repository.CacheRepository
	rates  RateProvider
	mailer ReportSender
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service
func NewService(repo Store, cache repository.CacheRepository, rates RateProvider, mailer ReportSender,
	log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		rates:  rates,
		mailer: mailer,
		log:    log,
		config: cfg,
	}
}

// Register creates a new loan officer with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username, email = strings.TrimSpace(username), strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidRegistration
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Errorf("Login lookup failed: %v", err)
		}
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}
