package domain

import (
	"strings"
	"time"
)

// Stage is the venture stage of a workspace
type Stage string

const (
	StageIdea    Stage = "idea"
	StageMVP     Stage = "mvp"
	StageRevenue Stage = "revenue"
	StageOther   Stage = "other"
)

// Valid reports whether s is a known stage
func (s Stage) Valid() bool {
	switch s {
	case StageIdea, StageMVP, StageRevenue, StageOther:
		return true
	}
	return false
}

// Workspace is a founder partnership container
type Workspace struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Stage     Stage     `json:"stage"`
	MatchID   string    `json:"match_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkspaceUpdate holds the PATCH fields for a workspace
type WorkspaceUpdate struct {
	Title *string `json:"title,omitempty"`
	Stage *Stage  `json:"stage,omitempty"`
}

// Validate checks the update before it is sent
func (u WorkspaceUpdate) Validate() error {
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		if t == "" {
			return ErrTitleRequired
		}
		if len(t) > MaxTitleLength {
			return ErrInvalidInput
		}
	}
	if u.Stage != nil && !u.Stage.Valid() {
		return ErrInvalidStage
	}
	return nil
}
