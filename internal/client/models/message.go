package models

import "time"

// Message is a single chat message. ID and CreatedAt are assigned by the
// server; the client never fabricates them.
type Message struct {
	ID        int64     `json:"id"`
	ChannelID int64     `json:"channel_id"`
	UserID    int64     `json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Author returns the display name of the sender, if the server embedded
// the user.
func (m Message) Author() string {
	if m.User == nil {
		return ""
	}
	return m.User.DisplayName()
}
