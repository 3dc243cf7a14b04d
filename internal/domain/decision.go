package domain

import (
	"strings"
	"time"
)

// DecisionTag classifies a decision
type DecisionTag string

const (
	TagEquity   DecisionTag = "equity"
	TagRoles    DecisionTag = "roles"
	TagScope    DecisionTag = "scope"
	TagTimeline DecisionTag = "timeline"
	TagMoney    DecisionTag = "money"
	TagOther    DecisionTag = "other"
)

// Valid reports whether t is a known tag
func (t DecisionTag) Valid() bool {
	switch t {
	case TagEquity, TagRoles, TagScope, TagTimeline, TagMoney, TagOther:
		return true
	}
	return false
}

// Decision is an append-only record of something the founders agreed on.
// IsActive is false once a later decision supersedes it.
type Decision struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Tag       DecisionTag `json:"tag"`
	IsActive  bool        `json:"is_active"`
	Creator   *UserRef    `json:"creator,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// UserRef is a lightweight reference to the user who created an entity
type UserRef struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// NewDecision is the create payload for a decision
type NewDecision struct {
	Content string      `json:"content"`
	Tag     DecisionTag `json:"tag"`
}

// Validate checks the payload before it is sent
func (d NewDecision) Validate() error {
	if strings.TrimSpace(d.Content) == "" {
		return ErrContentRequired
	}
	if !d.Tag.Valid() {
		return ErrInvalidTag
	}
	return nil
}

// DecisionQuery filters a decision listing
type DecisionQuery struct {
	Page  int
	Limit int
	Tag   DecisionTag
}

// Normalize applies defaults to unset paging fields
func (q DecisionQuery) Normalize() DecisionQuery {
	if q.Page < 1 {
		q.Page = DefaultDecisionPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultDecisionSize
	}
	return q
}
