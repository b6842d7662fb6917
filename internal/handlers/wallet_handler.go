package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/guildhq/backend/internal/middleware"
	"github.com/guildhq/backend/internal/services"
)

type WalletHandler struct {
	Wallet *services.WalletService
	Logger *slog.Logger
}

// GetBalance handles GET /v1/wallet.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	balance, err := h.Wallet.GetBalance(r.Context(), member)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": member, "balance": balance})
}

// GetHistory handles GET /v1/wallet/history?limit=&offset=.
func (h *WalletHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	transactions, total, err := h.Wallet.History(r.Context(), member, limit, offset)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions, "total": total})
}

type transferRequest struct {
	ToUserID string `json:"to_user_id"`
	Amount   int64  `json:"amount"`
}

// Transfer handles POST /v1/transfers.
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	result, err := h.Wallet.Transfer(r.Context(), member, req.ToUserID, req.Amount)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
