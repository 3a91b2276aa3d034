package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dealflow-studio/engine/internal/api/middleware"
	"github.com/dealflow-studio/engine/internal/api/types"
	"github.com/dealflow-studio/engine/internal/services"
)

type PipelinesHandler struct {
	svc      services.PipelineService
	validate Validator
}

func NewPipelinesHandler(svc services.PipelineService, v Validator) *PipelinesHandler {
	return &PipelinesHandler{svc: svc, validate: v}
}

// List returns the caller's pipelines, newest first.
func (h *PipelinesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListPipelines(r.Context(), middleware.GetUserID(r))
	if err != nil {
		fail(w, r, err, "Failed to fetch pipelines")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *PipelinesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.PipelineRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		fail(w, r, err, "Failed to create pipeline")
		return
	}
	in, err := req.Input()
	if err != nil {
		fail(w, r, err, "Failed to create pipeline")
		return
	}
	p, err := h.svc.CreatePipeline(r.Context(), middleware.GetUserID(r), in)
	if err != nil {
		fail(w, r, err, "Failed to create pipeline")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PipelinesHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPipeline(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r))
	if err != nil {
		fail(w, r, err, "Failed to fetch pipeline")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update replaces the pipeline's criteria. Fields missing from the body are cleared.
// Ownership is resolved before the body is read, so a foreign pipeline is a
// 404 whatever the payload.
func (h *PipelinesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, userID := chi.URLParam(r, "id"), middleware.GetUserID(r)
	if _, err := h.svc.GetPipeline(r.Context(), id, userID); err != nil {
		fail(w, r, err, "Failed to update pipeline")
		return
	}

	var req types.PipelineRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		fail(w, r, err, "Failed to update pipeline")
		return
	}
	in, err := req.Input()
	if err != nil {
		fail(w, r, err, "Failed to update pipeline")
		return
	}
	p, err := h.svc.UpdatePipeline(r.Context(), id, userID, in)
	if err != nil {
		fail(w, r, err, "Failed to update pipeline")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PipelinesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePipeline(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r)); err != nil {
		fail(w, r, err, "Failed to delete pipeline")
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Pipeline deleted successfully"})
}
