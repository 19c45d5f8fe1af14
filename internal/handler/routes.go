package handler

import (
	"net/http"

	"github.com/Dan9191/loan-appraisal/internal/config"
	"github.com/Dan9191/loan-appraisal/internal/middleware"
	"github.com/gorilla/mux"
)

// Router builds the HTTP routes
func (h *Handler) Router(cfg *config.Config) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/schedule", h.Schedule).Methods(http.MethodPost)
	r.HandleFunc("/ratios", h.Ratios).Methods(http.MethodPost)
	r.HandleFunc("/key-rate", h.KeyRate).Methods(http.MethodGet)

	// Protected routes
	auth := r.PathPrefix("/appraisals").Subrouter()
	auth.Use(middleware.AuthMiddleware(cfg))
	auth.HandleFunc("", h.CreateAppraisal).Methods(http.MethodPost)
	auth.HandleFunc("", h.ListAppraisals).Methods(http.MethodGet)
	auth.HandleFunc("/{id:[0-9]+}", h.GetAppraisal).Methods(http.MethodGet)
	auth.HandleFunc("/{id:[0-9]+}", h.UpdateAppraisal).Methods(http.MethodPut)
	auth.HandleFunc("/{id:[0-9]+}", h.DeleteAppraisal).Methods(http.MethodDelete)
	auth.HandleFunc("/{id:[0-9]+}/schedule", h.AppraisalSchedule).Methods(http.MethodGet)
	auth.HandleFunc("/{id:[0-9]+}/ratios", h.AppraisalRatios).Methods(http.MethodGet)
	auth.HandleFunc("/{id:[0-9]+}/schedule.xlsx", h.ExportSchedule).Methods(http.MethodGet)
	auth.HandleFunc("/{id:[0-9]+}/info.xlsx", h.ExportAppraisal).Methods(http.MethodGet)
	auth.HandleFunc("/{id:[0-9]+}/report", h.SendReport).Methods(http.MethodPost)

	return r
}
