package domain

import (
	"strings"
	"time"
)

// CheckinStatus is the self-reported weekly status
type CheckinStatus string

const (
	CheckinOnTrack        CheckinStatus = "on_track"
	CheckinSlightlyBehind CheckinStatus = "slightly_behind"
	CheckinOffTrack       CheckinStatus = "off_track"
)

// Valid reports whether s is a known check-in status
func (s CheckinStatus) Valid() bool {
	switch s {
	case CheckinOnTrack, CheckinSlightlyBehind, CheckinOffTrack:
		return true
	}
	return false
}

// Checkin is a weekly self-reported status entry
type Checkin struct {
	ID              string        `json:"id"`
	WeekStart       string        `json:"week_start"`
	Summary         string        `json:"summary"`
	Status          CheckinStatus `json:"status"`
	ProgressPercent *int          `json:"progress_percent"`
	Creator         *UserRef      `json:"creator,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// NewCheckin is the create payload for a check-in
type NewCheckin struct {
	WeekStart       string        `json:"week_start,omitempty"`
	Summary         string        `json:"summary"`
	Status          CheckinStatus `json:"status"`
	ProgressPercent *int          `json:"progress_percent"`
}

// Validate checks the payload before it is sent
func (c NewCheckin) Validate() error {
	if strings.TrimSpace(c.Summary) == "" {
		return ErrSummaryRequired
	}
	if !c.Status.Valid() {
		return ErrInvalidStatus
	}
	if c.ProgressPercent != nil && (*c.ProgressPercent < 0 || *c.ProgressPercent > 100) {
		return ErrInvalidProgress
	}
	if c.WeekStart != "" {
		if _, err := time.Parse(time.DateOnly, c.WeekStart); err != nil {
			return ErrInvalidInput
		}
	}
	return nil
}
