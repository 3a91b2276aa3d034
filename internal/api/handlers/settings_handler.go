package handlers

import (
	"net/http"

	"github.com/dealflow-studio/engine/internal/api/middleware"
	"github.com/dealflow-studio/engine/internal/api/types"
	"github.com/dealflow-studio/engine/internal/services"
)

type SettingsHandler struct {
	svc      services.SettingsService
	validate Validator
}

func NewSettingsHandler(svc services.SettingsService, v Validator) *SettingsHandler {
	return &SettingsHandler{svc: svc, validate: v}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetSettings(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		fail(w, r, err, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *SettingsHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req types.ProfileRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		fail(w, r, err, "Failed to save profile")
		return
	}
	p, err := h.svc.SaveProfile(r.Context(), middleware.GetPrincipal(r), req.Input())
	if err != nil {
		fail(w, r, err, "Failed to save profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *SettingsHandler) SaveNotifications(w http.ResponseWriter, r *http.Request) {
	var req types.NotificationsRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		fail(w, r, err, "Failed to save notification preferences")
		return
	}
	p, err := h.svc.SaveNotifications(r.Context(), middleware.GetPrincipal(r), req.Input())
	if err != nil {
		fail(w, r, err, "Failed to save notification preferences")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
