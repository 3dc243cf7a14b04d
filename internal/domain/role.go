package domain

import "strings"

// Role is the title and responsibilities a participant holds
type Role struct {
	UserID           string `json:"user_id"`
	RoleTitle        string `json:"role_title"`
	Responsibilities string `json:"responsibilities"`
}

// RoleInput is the PUT payload for a role
type RoleInput struct {
	RoleTitle        string `json:"role_title"`
	Responsibilities string `json:"responsibilities"`
}

// Validate checks the payload before it is sent
func (r RoleInput) Validate() error {
	if strings.TrimSpace(r.RoleTitle) == "" {
		return ErrTitleRequired
	}
	return nil
}

// HasTitle reports whether the role has a non-blank title
func (r Role) HasTitle() bool {
	return strings.TrimSpace(r.RoleTitle) != ""
}
