package resolver

import "fmt"

// Role is the resolved relationship of an identity to the product
type Role int

const (
	RoleUnknown Role = iota
	RoleAdvisorWithProfile
	RoleAdvisorNeedsOnboarding
	RoleFounderWithProfile
	RoleFounderNeedsOnboarding
	RoleNeither
)

var roleNames = map[Role]string{
	RoleUnknown:                "unknown",
	RoleAdvisorWithProfile:     "advisor_with_profile",
	RoleAdvisorNeedsOnboarding: "advisor_needs_onboarding",
	RoleFounderWithProfile:     "founder_with_profile",
	RoleFounderNeedsOnboarding: "founder_needs_onboarding",
	RoleNeither:                "neither",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// MarshalText encodes the role by name
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name written by MarshalText
func (r *Role) UnmarshalText(text []byte) error {
	for role, name := range roleNames {
		if name == string(text) {
			*r = role
			return nil
		}
	}
	return fmt.Errorf("unknown role %q", text)
}

// IsAdvisor reports whether r is one of the advisor roles
func (r Role) IsAdvisor() bool {
	return r == RoleAdvisorWithProfile || r == RoleAdvisorNeedsOnboarding
}

// View is what the app shell renders for a resolution
type View string

const (
	ViewFlowSelector      View = "flow_selector"
	ViewAdvisorDashboard  View = "advisor_dashboard"
	ViewAdvisorOnboarding View = "advisor_onboarding"
	ViewApp               View = "app"
)
