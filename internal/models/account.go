package models

import "time"

// Account is a member's currency wallet. Member IDs are opaque strings
// issued by the identity layer; rows are created lazily on first access.
type Account struct {
	ID        string    `json:"id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
