package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dealflow-studio/engine/internal/api/middleware"
	"github.com/dealflow-studio/engine/internal/api/types"
	"github.com/dealflow-studio/engine/internal/services"
)

type CompaniesHandler struct {
	svc      services.CompanyService
	validate Validator
}

func NewCompaniesHandler(svc services.CompanyService, v Validator) *CompaniesHandler {
	return &CompaniesHandler{svc: svc, validate: v}
}

// List returns the companies of pipeline {id}.
func (h *CompaniesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListCompanies(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r))
	if err != nil {
		fail(w, r, err, "Failed to fetch companies")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create adds a company to pipeline {id}.
func (h *CompaniesHandler) Create(w http.ResponseWriter, r *http.Request) {
	pipelineID, userID := chi.URLParam(r, "id"), middleware.GetUserID(r)
	if err := h.svc.CheckPipeline(r.Context(), pipelineID, userID); err != nil {
		fail(w, r, err, "Failed to create company")
		return
	}

	var req types.CompanyCreateRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		fail(w, r, err, "Failed to create company")
		return
	}
	in, err := req.Input()
	if err != nil {
		fail(w, r, err, "Failed to create company")
		return
	}
	c, err := h.svc.CreateCompany(r.Context(), pipelineID, userID, in)
	if err != nil {
		fail(w, r, err, "Failed to create company")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CompaniesHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCompany(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r))
	if err != nil {
		fail(w, r, err, "Failed to fetch company")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CompaniesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, userID := chi.URLParam(r, "id"), middleware.GetUserID(r)
	if _, err := h.svc.GetCompany(r.Context(), id, userID); err != nil {
		fail(w, r, err, "Failed to update company")
		return
	}

	var req types.CompanyUpdateRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		fail(w, r, err, "Failed to update company")
		return
	}
	patch, err := req.Patch()
	if err != nil {
		fail(w, r, err, "Failed to update company")
		return
	}
	c, err := h.svc.UpdateCompany(r.Context(), id, userID, patch)
	if err != nil {
		fail(w, r, err, "Failed to update company")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CompaniesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCompany(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r)); err != nil {
		fail(w, r, err, "Failed to delete company")
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Company deleted successfully"})
}
