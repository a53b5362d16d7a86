package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/devlink/internal/service"
)

// ProfileHandler serves /api/profile. List, by-user and GitHub lookups are
// public; everything else acts on the caller's own profile.
type ProfileHandler struct {
	service *service.ProfileService
	logger  *slog.Logger
}

func NewProfileHandler(svc *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{service: svc, logger: logger}
}

// HandleGetMine → GET /api/profile/me
func (h *ProfileHandler) HandleGetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetOwn(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleUpsert → POST /api/profile
func (h *ProfileHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in service.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.service.Upsert(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleList → GET /api/profile
func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// HandleGetByUser → GET /api/profile/user/{user_id}
func (h *ProfileHandler) HandleGetByUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetByUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleDelete → DELETE /api/profile
func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Msg: "User deleted"})
}

// HandleAddExperience → PUT /api/profile/experience
func (h *ProfileHandler) HandleAddExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in service.ExperienceInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.service.AddExperience(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleRemoveExperience → DELETE /api/profile/experience/{exp_id}
func (h *ProfileHandler) HandleRemoveExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.RemoveExperience(r.Context(), userID, chi.URLParam(r, "exp_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleAddEducation → PUT /api/profile/education
func (h *ProfileHandler) HandleAddEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in service.EducationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.service.AddEducation(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleRemoveEducation → DELETE /api/profile/education/{edu_id}
func (h *ProfileHandler) HandleRemoveEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.RemoveEducation(r.Context(), userID, chi.URLParam(r, "edu_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleGitHubRepos → GET /api/profile/github/{username}
func (h *ProfileHandler) HandleGitHubRepos(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	repos, err := h.service.GitHubRepos(r.Context(), username)
	if err != nil {
		h.logger.Debug("github lookup failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}
