package domain

import (
	"strings"
	"time"
)

// KPIStatus is the progress state of a KPI
type KPIStatus string

const (
	KPINotStarted KPIStatus = "not_started"
	KPIInProgress KPIStatus = "in_progress"
	KPIDone       KPIStatus = "done"
)

// Valid reports whether s is a known KPI status
func (s KPIStatus) Valid() bool {
	switch s {
	case KPINotStarted, KPIInProgress, KPIDone:
		return true
	}
	return false
}

// KPI is a tracked metric or goal
type KPI struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	TargetValue string    `json:"target_value,omitempty"`
	TargetDate  string    `json:"target_date,omitempty"`
	OwnerUserID string    `json:"owner_user_id,omitempty"`
	Status      KPIStatus `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewKPI is the create payload for a KPI
type NewKPI struct {
	Label       string `json:"label"`
	TargetValue string `json:"target_value,omitempty"`
	TargetDate  string `json:"target_date,omitempty"`
	OwnerUserID string `json:"owner_user_id,omitempty"`
}

// Validate checks the payload before it is sent
func (k NewKPI) Validate() error {
	if strings.TrimSpace(k.Label) == "" {
		return ErrLabelRequired
	}
	if k.TargetDate != "" {
		if _, err := time.Parse(time.DateOnly, k.TargetDate); err != nil {
			return ErrInvalidInput
		}
	}
	return nil
}
