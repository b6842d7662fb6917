package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/guildhq/backend/internal/middleware"
	"github.com/guildhq/backend/internal/services"
)

type ShopHandler struct {
	Shop   *services.ShopService
	Logger *slog.Logger
}

// Items handles GET /v1/shop/items.
func (h *ShopHandler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := h.Shop.Items(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Item handles GET /v1/shop/items/{id}.
func (h *ShopHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}
	item, err := h.Shop.Item(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type buyItemRequest struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int64     `json:"quantity"`
}

// Buy handles POST /v1/shop/purchases. Quantity defaults to 1.
func (h *ShopHandler) Buy(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	var req buyItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	result, err := h.Shop.BuyItem(r.Context(), member, req.ItemID, req.Quantity)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Inventory handles GET /v1/inventory.
func (h *ShopHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	entries, err := h.Shop.Inventory(r.Context(), member)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type removeInventoryRequest struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int64     `json:"quantity"`
}

// Remove handles POST /v1/inventory/remove.
func (h *ShopHandler) Remove(w http.ResponseWriter, r *http.Request) {
	member := middleware.MemberFromCtx(r.Context())
	var req removeInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := h.Shop.RemoveFromInventory(r.Context(), member, req.ItemID, req.Quantity); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}
