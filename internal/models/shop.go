package models

import (
	"time"

	"github.com/google/uuid"
)

// UnlimitedStock marks an item that is never stock-tracked.
const UnlimitedStock = -1

type ShopItem struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int64     `json:"stock"` // -1 = unlimited
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

// InventoryEntry is one (member, item) holding. Quantity is always
// positive; the row is deleted rather than zeroed when fully consumed.
type InventoryEntry struct {
	UserID   string    `json:"user_id"`
	ItemID   uuid.UUID `json:"item_id"`
	ItemName string    `json:"item_name"`
	Quantity int64     `json:"quantity"`
}
