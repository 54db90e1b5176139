package profile_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-scheduler/internal/apperrors"
	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/models"
	"ms-scheduler/internal/timezone"
	"ms-scheduler/internal/utils"
)

type ProfileService interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProfile(ctx context.Context, req models.CreateProfileRequest) (*models.Profile, error)
	UpdateTimezone(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error)
}

type Handler struct {
	ProfileService ProfileService
	Logger         *logger.Logger
}

func NewHandler(profileService ProfileService, log *logger.Logger) *Handler {
	return &Handler{ProfileService: profileService, Logger: log}
}

// Routes mounts the profile endpoints and the timezone list.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/timezones", h.ListTimezones)
	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", h.ListProfiles)
		r.Post("/", h.CreateProfile)
		r.Put("/{id}", h.UpdateProfile)
	})
}

func (h *Handler) ListTimezones(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, timezone.Known())
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.ProfileService.ListProfiles(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListProfiles: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, profiles)
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperrors.Wrap(apperrors.BadRequest, "Invalid request body", err))
		return
	}

	profile, err := h.ProfileService.CreateProfile(r.Context(), req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CreateProfile: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperrors.Wrap(apperrors.BadRequest, "Invalid request body", err))
		return
	}

	profile, err := h.ProfileService.UpdateTimezone(r.Context(), id, req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("UpdateProfile %s: %v", id, err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, profile)
}
