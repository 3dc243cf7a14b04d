package domain

import "errors"

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrWorkspaceRequired = errors.New("workspace id is required")
	ErrIdentityRequired  = errors.New("identity is required")
	ErrEquityTotal       = errors.New("equity percentages must total 100%")
	ErrNoShareholders    = errors.New("at least one participant share is required")
	ErrLabelRequired     = errors.New("label is required")
	ErrContentRequired   = errors.New("content is required")
	ErrTitleRequired     = errors.New("title is required")
	ErrSummaryRequired   = errors.New("summary is required")
	ErrInvalidTag        = errors.New("invalid decision tag")
	ErrInvalidStage      = errors.New("invalid workspace stage")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidCategory   = errors.New("invalid document category")
	ErrInvalidProgress   = errors.New("progress must be between 0 and 100")
	ErrInvalidHours      = errors.New("weekly commitment hours must be between 0 and 168")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")
	ErrScenarioLocked    = errors.New("scenario is not editable")
)

// Validation constants
const (
	MaxTitleLength      = 255
	MaxWeeklyHours      = 168
	DefaultCheckinLimit = 12
	DefaultDecisionPage = 1
	DefaultDecisionSize = 20

	// ActivityDecisionLimit bounds the unfiltered decisions the overview reads
	ActivityDecisionLimit = 100
)
