package models

import "strings"

// User is a chat user profile as returned by the API.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	UID   string `json:"uid,omitempty"`
	Name  string `json:"name,omitempty"`
}

// DisplayName is the name shown in the UI: the profile name when set,
// otherwise the part of the email before "@".
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	prefix, _, _ := strings.Cut(u.Email, "@")
	return prefix
}
