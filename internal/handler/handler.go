package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dan9191/loan-appraisal/internal/amortization"
	"github.com/Dan9191/loan-appraisal/internal/middleware"
	"github.com/Dan9191/loan-appraisal/internal/models"
	"github.com/Dan9191/loan-appraisal/internal/repository"
	"github.com/Dan9191/loan-appraisal/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register handles loan officer registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Schedule computes a repayment schedule from the request body
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Schedule(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Ratios computes financial ratios from the request body
func (h *Handler) Ratios(w http.ResponseWriter, r *http.Request) {
	var req models.RatiosRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Ratios(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// KeyRate returns the reference annual rate
func (h *Handler) KeyRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.KeyRate(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"key_rate": rate})
}

// CreateAppraisal stores a new loan application
func (h *Handler) CreateAppraisal(w http.ResponseWriter, r *http.Request) {
	officerID, ok := h.officer(w, r)
	if !ok {
		return
	}
	var req models.AppraisalRequest
	if !h.decode(w, r, &req) {
		return
	}
	report, err := h.svc.CreateAppraisal(r.Context(), officerID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, report)
}

// ListAppraisals lists the officer's appraisals; supports limit and offset query parameters
func (h *Handler) ListAppraisals(w http.ResponseWriter, r *http.Request) {
	officerID, ok := h.officer(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.svc.ListAppraisals(r.Context(), officerID, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Appraisal{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

// GetAppraisal returns an appraisal with its schedule and ratios
func (h *Handler) GetAppraisal(w http.ResponseWriter, r *http.Request) {
	officerID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	report, err := h.svc.GetAppraisal(r.Context(), officerID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// UpdateAppraisal applies manual corrections
func (h *Handler) UpdateAppraisal(w http.ResponseWriter, r *http.Request) {
	officerID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req models.AppraisalRequest
	if !h.decode(w, r, &req) {
		return
	}
	report, err := h.svc.UpdateAppraisal(r.Context(), officerID, id, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// DeleteAppraisal removes an appraisal
func (h *Handler) DeleteAppraisal(w http.ResponseWriter, r *http.Request) {
	officerID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteAppraisal(r.Context(), officerID, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AppraisalSchedule returns only the repayment schedule of an appraisal
func (h *Handler) AppraisalSchedule(w http.ResponseWriter, r *http.Request) {
	officerID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	report, err := h.svc.GetAppraisal(r.Context(), officerID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report.Schedule)
}

// AppraisalRatios returns only the ratios of an appraisal
func (h *Handler) AppraisalRatios(w http.ResponseWriter, r *http.Request) {
	officerID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	report, err := h.svc.GetAppraisal(r.Context(), officerID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report.Ratios)
}

// ExportSchedule downloads the repayment schedule workbook
func (h *Handler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	officerID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportSchedule(r.Context(), officerID, id, &buf); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeFile(w, fmt.Sprintf("schedule_%d.xlsx", id), &buf)
}

// ExportAppraisal downloads the appraisal workbook
func (h *Handler) ExportAppraisal(w http.ResponseWriter, r *http.Request) {
	officerID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportAppraisal(r.Context(), officerID, id, &buf); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeFile(w, fmt.Sprintf("appraisal_%d.xlsx", id), &buf)
}

// SendReport emails the appraisal report to the officer
func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	officerID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.svc.SendReport(r.Context(), officerID, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) officer(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	officerID, ok := h.officer(w, r)
	if !ok {
		return 0, 0, false
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid appraisal id"})
		return 0, 0, false
	}
	return officerID, id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Debugf("Error decoding request body: %v", err)
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}

type errorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var missing *models.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Fields: missing.Fields})
	case errors.Is(err, amortization.ErrInvalidInput),
		errors.Is(err, amortization.ErrUnknownStyle),
		errors.Is(err, service.ErrInvalidRegistration):
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		h.writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, repository.ErrDuplicate):
		h.writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, service.ErrReferenceRateUnavailable):
		h.log.Warnf("Reference rate unavailable: %v", err)
		h.writeJSON(w, http.StatusBadGateway, errorBody{Error: service.ErrReferenceRateUnavailable.Error()})
	default:
		h.log.Errorf("Request failed: %v", err)
		h.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

// writeJSON encodes v before any header is written
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.log.Errorf("Error encoding response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Warnf("Error writing response: %v", err)
	}
}

func (h *Handler) writeFile(w http.ResponseWriter, name string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Warnf("Error writing file: %v", err)
	}
}
