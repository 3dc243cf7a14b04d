package domain

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ScenarioStatus marks whether a scenario is still in play
type ScenarioStatus string

const (
	ScenarioActive   ScenarioStatus = "active"
	ScenarioCanceled ScenarioStatus = "canceled"
)

// EquityTolerance is the allowed deviation from a 100% total
var EquityTolerance = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// EquityShare is one participant's percentage of a scenario
type EquityShare struct {
	UserID  string          `json:"userId"`
	Percent decimal.Decimal `json:"percent"`
}

type equityShareJSON struct {
	UserID  string      `json:"userId"`
	Percent json.Number `json:"percent"`
}

// MarshalJSON encodes the percent as a JSON number
func (s EquityShare) MarshalJSON() ([]byte, error) {
	return json.Marshal(equityShareJSON{UserID: s.UserID, Percent: json.Number(s.Percent.String())})
}

// Vesting is the vesting schedule attached to a scenario
type Vesting struct {
	Years       int `json:"years"`
	CliffMonths int `json:"cliffMonths"`
}

// ScenarioData is the split and vesting payload of a scenario
type ScenarioData struct {
	Users   []EquityShare `json:"users"`
	Vesting Vesting       `json:"vesting"`
}

// EquityScenario is a proposed or active equity split
type EquityScenario struct {
	ID             string         `json:"id"`
	Label          string         `json:"label"`
	Data           ScenarioData   `json:"data"`
	IsCurrent      bool           `json:"is_current"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	Status         ScenarioStatus `json:"status"`
	Note           string         `json:"note,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	Approval       *Approval      `json:"approval,omitempty"`
}

// Equity is the current scenario plus the history the backend returns
type Equity struct {
	Current   *EquityScenario  `json:"current"`
	Scenarios []EquityScenario `json:"scenarios"`
}

// NewScenario is the create payload for an equity scenario
type NewScenario struct {
	Label string       `json:"label"`
	Data  ScenarioData `json:"data"`
	Note  string       `json:"note,omitempty"`
}

// TotalPercent sums every share in the split
func (d ScenarioData) TotalPercent() decimal.Decimal {
	total := decimal.Zero
	for _, u := range d.Users {
		total = total.Add(u.Percent)
	}
	return total
}

// ValidateSplit enforces that shares total 100 within EquityTolerance
func ValidateSplit(users []EquityShare) error {
	if len(users) == 0 {
		return ErrNoShareholders
	}
	total := decimal.Zero
	for _, u := range users {
		if strings.TrimSpace(u.UserID) == "" || u.Percent.IsNegative() {
			return ErrInvalidInput
		}
		total = total.Add(u.Percent)
	}
	if total.Sub(hundred).Abs().GreaterThanOrEqual(EquityTolerance) {
		return ErrEquityTotal
	}
	return nil
}

// Validate checks the scenario before it is sent
func (s NewScenario) Validate() error {
	if strings.TrimSpace(s.Label) == "" {
		return ErrLabelRequired
	}
	if s.Data.Vesting.Years < 0 || s.Data.Vesting.CliffMonths < 0 {
		return ErrInvalidInput
	}
	return ValidateSplit(s.Data.Users)
}

// SortScenariosNewestFirst orders scenarios by creation time, newest first
func SortScenariosNewestFirst(scenarios []EquityScenario) {
	sort.SliceStable(scenarios, func(i, j int) bool {
		return scenarios[i].CreatedAt.After(scenarios[j].CreatedAt)
	})
}

// ScenarioEditable reports whether the scenario at index i of a newest-first
// list may have its note edited. Only the newest non-current, non-canceled one can.
func ScenarioEditable(scenarios []EquityScenario, i int) bool {
	if i != 0 || len(scenarios) == 0 {
		return false
	}
	s := scenarios[0]
	return !s.IsCurrent && s.Status != ScenarioCanceled
}

// CanSetCurrent reports whether the promote action is offered for s
func (s EquityScenario) CanSetCurrent() bool {
	return s.ApprovalStatus == ApprovalApproved && !s.IsCurrent && s.Status != ScenarioCanceled
}
