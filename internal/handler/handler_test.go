package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/loan-appraisal/internal/config"
	"github.com/Dan9191/loan-appraisal/internal/models"
	"github.com/Dan9191/loan-appraisal/internal/ratios"
	"github.com/Dan9191/loan-appraisal/internal/repository"
	"github.com/Dan9191/loan-appraisal/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type stubRates struct{ rate float64 }

func (s stubRates) GetKeyRate(context.Context) (float64, error) { return s.rate, nil }

func newTestRouter() http.Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{
		JWTSecret:     "secret",
		ScheduleStyle: "equal_principal",
		MoneyPlaces:   2,
		KeyRateTTL:    time.Hour,
	}
	svc := service.NewService(nil, repository.NewMemoryCache(), stubRates{rate: 26}, nil, log, cfg)
	return NewHandler(svc, log).Router(cfg)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSchedule_OK(t *testing.T) {
	w := do(newTestRouter(), http.MethodPost, "/schedule",
		`{"principal": 80000000, "annual_rate": 8.5, "term_periods": 5}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.ScheduleResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(resp.Rows))
	}
	if !resp.Rows[0].InterestDue.Equal(decimal.RequireFromString("566666.67")) {
		t.Errorf("expected interest 566666.67, got %s", resp.Rows[0].InterestDue)
	}
	if !resp.Rows[4].ClosingBalance.IsZero() {
		t.Errorf("expected final balance 0, got %s", resp.Rows[4].ClosingBalance)
	}
}

func TestSchedule_BadRequest(t *testing.T) {
	h := newTestRouter()
	cases := map[string]string{
		"invalid json":   `{invalid-json}`,
		"zero principal": `{"principal": 0, "annual_rate": 8.5, "term_periods": 5}`,
		"zero term":      `{"principal": 1000, "annual_rate": 8.5, "term_periods": 0}`,
		"unknown style":  `{"principal": 1000, "annual_rate": 8.5, "term_periods": 5, "schedule_style": "bullet"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/schedule", body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSchedule_MethodNotAllowed(t *testing.T) {
	w := do(newTestRouter(), http.MethodGet, "/schedule", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestRatios_OK(t *testing.T) {
	w := do(newTestRouter(), http.MethodPost, "/ratios",
		`{"loan_amount": 7300000000, "total_requirement": 7685931642, "collateral_value": 0}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp ratios.Ratios
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.LoanToRequirement.Equal(decimal.RequireFromString("94.98")) {
		t.Errorf("expected 94.98, got %s", resp.LoanToRequirement)
	}
	if !resp.LoanToValue.IsZero() {
		t.Errorf("expected LTV 0 without collateral, got %s", resp.LoanToValue)
	}
}

func TestKeyRate(t *testing.T) {
	w := do(newTestRouter(), http.MethodGet, "/key-rate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		KeyRate decimal.Decimal `json:"key_rate"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.KeyRate.Equal(decimal.NewFromInt(26)) {
		t.Errorf("expected 26, got %s", resp.KeyRate)
	}
}

func TestAppraisals_RequireAuth(t *testing.T) {
	h := newTestRouter()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/appraisals"},
		{http.MethodPost, "/appraisals"},
		{http.MethodGet, "/appraisals/1"},
		{http.MethodGet, "/appraisals/1/schedule.xlsx"},
	} {
		w := do(h, tc.method, tc.path, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestWriteError_StatusCodes(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewHandler(nil, log)

	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("user a@b.vn: %w", repository.ErrDuplicate), http.StatusConflict},
		{fmt.Errorf("appraisal 3: %w", repository.ErrNotFound), http.StatusNotFound},
		{&models.MissingFieldsError{Fields: []string{"loan_amount"}}, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: timeout", service.ErrReferenceRateUnavailable), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		h.writeError(w, tc.err)
		if w.Code != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, w.Code)
		}
	}
}
