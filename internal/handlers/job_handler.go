package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/guildhq/backend/internal/middleware"
	"github.com/guildhq/backend/internal/services"
)

type JobHandler struct {
	Jobs   *services.JobService
	Logger *slog.Logger
}

// List handles GET /v1/jobs.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Jobs.Jobs(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Daily handles GET /v1/jobs/daily.
func (h *JobHandler) Daily(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Jobs.DailyJobs(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Get handles GET /v1/jobs/{id}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid job id"})
		return
	}
	job, err := h.Jobs.Job(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Mine handles GET /v1/jobs/mine.
func (h *JobHandler) Mine(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	assignment, job, err := h.Jobs.UserJob(r.Context(), member)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignment": assignment, "job": job})
}

// Assign handles POST /v1/jobs/{id}/assign.
func (h *JobHandler) Assign(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid job id"})
		return
	}
	assignment, err := h.Jobs.AssignJob(r.Context(), member, id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

// AssignRandom handles POST /v1/jobs/assign-random.
func (h *JobHandler) AssignRandom(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	job, err := h.Jobs.AssignRandomJob(r.Context(), member)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// Quit handles POST /v1/jobs/quit.
func (h *JobHandler) Quit(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	if err := h.Jobs.QuitJob(r.Context(), member); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"quit": true})
}

type completeJobRequest struct {
	UserID string `json:"user_id"`
	Reward int64  `json:"reward"`
}

// Complete handles POST /v1/jobs/complete. Administrative: the target
// member and reward come from the body, not the caller's identity.
func (h *JobHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := h.Jobs.CompleteJob(r.Context(), req.UserID, req.Reward); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": true})
}
