package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dealflow-studio/engine/internal/api/middleware"
	"github.com/dealflow-studio/engine/internal/api/types"
	"github.com/dealflow-studio/engine/internal/services"
)

type AnalysisHandler struct {
	svc      services.AnalysisService
	validate Validator
}

func NewAnalysisHandler(svc services.AnalysisService, v Validator) *AnalysisHandler {
	return &AnalysisHandler{svc: svc, validate: v}
}

// Run returns the stored analysis (200) or synthesizes a new one (201).
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req types.RunAnalysisRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		fail(w, r, err, "Failed to run analysis")
		return
	}
	a, created, err := h.svc.RunAnalysis(r.Context(), middleware.GetUserID(r), req.Input())
	if err != nil {
		fail(w, r, err, "Failed to run analysis")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, a)
}

// Latest returns the newest analysis of company {id}.
func (h *AnalysisHandler) Latest(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.LatestAnalysis(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r))
	if err != nil {
		fail(w, r, err, "Failed to fetch analysis")
		return
	}
	writeJSON(w, http.StatusOK, a)
}
