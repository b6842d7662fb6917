package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/guildhq/backend/internal/middleware"
	"github.com/guildhq/backend/internal/models"
	"github.com/guildhq/backend/internal/services"
)

type BountyHandler struct {
	Bounties *services.BountyService
	Logger   *slog.Logger
}

type createBountyRequest struct {
	Description string  `json:"description"`
	Reward      int64   `json:"reward"`
	Link        *string `json:"link,omitempty"`
}

// Create handles POST /v1/bounties.
func (h *BountyHandler) Create(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	var req createBountyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	b, err := h.Bounties.Create(r.Context(), member, req.Description, req.Reward, req.Link)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// List handles GET /v1/bounties?filter=open|mine|claimed|all.
func (h *BountyHandler) List(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	var (
		list any
		err  error
	)
	switch r.URL.Query().Get("filter") {
	case "mine":
		list, err = h.Bounties.ListByCreator(r.Context(), member)
	case "claimed":
		list, err = h.Bounties.ListClaimedBy(r.Context(), member)
	case "all":
		list, err = h.Bounties.ListAll(r.Context())
	default:
		list, err = h.Bounties.ListOpen(r.Context())
	}
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /v1/bounties/{id}.
func (h *BountyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := bountyID(w, r)
	if !ok {
		return
	}
	b, err := h.Bounties.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Claim handles POST /v1/bounties/{id}/claim.
func (h *BountyHandler) Claim(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Bounties.Claim)
}

// GiveUp handles POST /v1/bounties/{id}/give-up.
func (h *BountyHandler) GiveUp(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Bounties.GiveUp)
}

// Complete handles POST /v1/bounties/{id}/complete.
func (h *BountyHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Bounties.Complete)
}

// Cancel handles POST /v1/bounties/{id}/cancel.
func (h *BountyHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Bounties.Cancel)
}

func (h *BountyHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID string, bountyID uuid.UUID) (*models.Bounty, error)) {
	member := middleware.MemberFromCtx(r.Context())
	id, ok := bountyID(w, r)
	if !ok {
		return
	}
	b, err := op(r.Context(), member, id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func bountyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bounty id"})
		return uuid.Nil, false
	}
	return id, true
}
