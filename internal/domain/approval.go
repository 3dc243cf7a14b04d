package domain

import "encoding/json"

// ApprovalStatus is the state of a counter-party sign-off
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Approval governs changes that need counter-party sign-off
type Approval struct {
	ID           string          `json:"id"`
	EntityType   string          `json:"entity_type"`
	EntityID     string          `json:"entity_id"`
	Proposer     *UserRef        `json:"proposer,omitempty"`
	ProposedData json.RawMessage `json:"proposed_data,omitempty"`
	Status       ApprovalStatus  `json:"status"`
}
