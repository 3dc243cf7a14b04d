package service

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/store"
)

// CommitmentSummary totals weekly hours across participants
type CommitmentSummary struct {
	Participants []domain.Participant `json:"participants"`
	TotalHours   float64              `json:"total_hours"`
	FounderHours float64              `json:"founder_hours"`
	AdvisorHours float64              `json:"advisor_hours"`
	Founders     int                  `json:"founders"`
	Advisors     int                  `json:"advisors"`
	Unreported   []string             `json:"unreported"`
}

// CommitmentService handles the commitments tab
type CommitmentService struct {
	registry *store.Registry
}

// NewCommitmentService creates a new CommitmentService
func NewCommitmentService(registry *store.Registry) *CommitmentService {
	return &CommitmentService{registry: registry}
}

// GetCommitments loads participants and totals their hours
func (s *CommitmentService) GetCommitments(ctx context.Context, identity, workspaceID string) (*CommitmentSummary, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := sess.Participants.Load(ctx); err != nil {
		return nil, err
	}
	return SummarizeCommitments(sess.Participants.Participants()), nil
}

// SummarizeCommitments totals hours by role. Participants who have not set
// their hours are listed in Unreported.
func SummarizeCommitments(participants []domain.Participant) *CommitmentSummary {
	sum := &CommitmentSummary{Participants: nonNil(participants), Unreported: []string{}}
	for _, p := range participants {
		if p.Role == domain.ParticipantAdvisor {
			sum.Advisors++
		} else {
			sum.Founders++
		}
		if p.WeeklyCommitmentHours == nil {
			sum.Unreported = append(sum.Unreported, p.UserID)
			continue
		}
		h := *p.WeeklyCommitmentHours
		sum.TotalHours += h
		if p.Role == domain.ParticipantAdvisor {
			sum.AdvisorHours += h
		} else {
			sum.FounderHours += h
		}
	}
	return sum
}

// UpdateCommitment changes a participant's weekly hours or timezone
func (s *CommitmentService) UpdateCommitment(ctx context.Context, identity, workspaceID, userID string, update domain.ParticipantUpdate) (*domain.Participant, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	return sess.Participants.Update(ctx, userID, update)
}

// RemoveAdvisor removes an advisor from the workspace. Founders cannot be
// removed this way.
func (s *CommitmentService) RemoveAdvisor(ctx context.Context, identity, workspaceID, userID string) error {
	if userID == "" {
		return domain.ErrInvalidInput
	}
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return err
	}
	for _, p := range sess.Participants.Participants() {
		if p.UserID == userID && p.Role != domain.ParticipantAdvisor {
			return domain.ErrForbidden
		}
	}
	return sess.Participants.RemoveAdvisor(ctx, userID)
}
