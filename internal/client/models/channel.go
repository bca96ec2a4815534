package models

import (
	"slices"
	"time"
)

// Channel is a group conversation.
type Channel struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserIDs   []int64   `json:"user_ids"`
	OwnerID   int64     `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// HasMember reports whether userID is listed in the channel.
func (c Channel) HasMember(userID int64) bool {
	return slices.Contains(c.UserIDs, userID)
}
