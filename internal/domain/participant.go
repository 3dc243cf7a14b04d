package domain

// ParticipantRole is the role a user holds inside a workspace
type ParticipantRole string

const (
	ParticipantFounder ParticipantRole = "FOUNDER"
	ParticipantAdvisor ParticipantRole = "ADVISOR"
)

// ParticipantUser is the denormalized user record attached to a participant
type ParticipantUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Participant is a member of a workspace, keyed by UserID
type Participant struct {
	UserID                string           `json:"user_id"`
	Role                  ParticipantRole  `json:"role"`
	WeeklyCommitmentHours *float64         `json:"weekly_commitment_hours"`
	Timezone              string           `json:"timezone,omitempty"`
	User                  *ParticipantUser `json:"user,omitempty"`
}

// ParticipantUpdate holds the PATCH fields for a participant
type ParticipantUpdate struct {
	WeeklyCommitmentHours *float64 `json:"weekly_commitment_hours,omitempty"`
	Timezone              *string  `json:"timezone,omitempty"`
}

// Validate checks the update before it is sent
func (u ParticipantUpdate) Validate() error {
	if u.WeeklyCommitmentHours != nil {
		h := *u.WeeklyCommitmentHours
		if h < 0 || h > MaxWeeklyHours {
			return ErrInvalidHours
		}
	}
	return nil
}

// Merge overlays an update response onto p, keeping fields the response omits
func (p Participant) Merge(update Participant) Participant {
	merged := p
	if update.Role != "" {
		merged.Role = update.Role
	}
	if update.WeeklyCommitmentHours != nil {
		merged.WeeklyCommitmentHours = update.WeeklyCommitmentHours
	}
	if update.Timezone != "" {
		merged.Timezone = update.Timezone
	}
	if update.User != nil && (update.User.Name != "" || update.User.Email != "") {
		merged.User = update.User
	}
	return merged
}
