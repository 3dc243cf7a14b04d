package resolver

import "github.com/cofoundry/gateway/internal/routing"

// Decision is the render contract for one resolution
type Decision struct {
	Role                 Role   `json:"role"`
	View                 View   `json:"view"`
	ShowOnboardingDialog bool   `json:"show_onboarding_dialog"`
	Redirect             string `json:"redirect,omitempty"`
}

// Render derives the view for role at path. Anything not positively
// resolved renders the app behind the onboarding dialog, except on advisor
// paths where the dialog never shows.
func Render(role Role, path string) Decision {
	if routing.IsHome(path) {
		return Decision{Role: role, View: ViewFlowSelector}
	}

	d := Decision{Role: role}
	switch role {
	case RoleAdvisorWithProfile:
		d.View = ViewAdvisorDashboard
		if routing.IsAdvisorOnboarding(path) {
			d.Redirect = routing.AdvisorDashboardPath
		}
	case RoleAdvisorNeedsOnboarding:
		d.View = ViewAdvisorOnboarding
		if !routing.IsAdvisorOnboarding(path) {
			d.Redirect = routing.AdvisorOnboardingPath
		}
	case RoleFounderWithProfile:
		d.View = ViewApp
	case RoleNeither:
		d.View = ViewFlowSelector
		d.Redirect = routing.HomePath
	default:
		// RoleFounderNeedsOnboarding and RoleUnknown
		d.View = ViewApp
		d.ShowOnboardingDialog = !routing.IsAdvisor(path)
	}
	return d
}
