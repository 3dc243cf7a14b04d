package domain

// OnboardingStatus is the founder onboarding state reported by the backend
type OnboardingStatus struct {
	Exists              bool `json:"exists"`
	OnboardingCompleted bool `json:"onboarding_completed"`
	HasPurpose          bool `json:"has_purpose"`
	HasSkills           bool `json:"has_skills"`
}

// Complete reports whether every onboarding flag is set
func (s OnboardingStatus) Complete() bool {
	return s.Exists && s.OnboardingCompleted && s.HasPurpose && s.HasSkills
}

// AdvisorProfile is the free-form advisor profile object
type AdvisorProfile map[string]any

// Empty reports whether the profile carries no fields
func (p AdvisorProfile) Empty() bool {
	return len(p) == 0
}

// Plan is the billing plan of the signed-in identity
type Plan struct {
	Plan    string `json:"plan"`
	Status  string `json:"status,omitempty"`
	Credits int    `json:"credits"`
}
