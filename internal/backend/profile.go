package backend

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
)

// GetOnboardingStatus handles GET /founders/onboarding-status
func (c *Client) GetOnboardingStatus(ctx context.Context, identity string) (*domain.OnboardingStatus, error) {
	var status domain.OnboardingStatus
	if err := c.getJSON(ctx, identity, "/founders/onboarding-status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetAdvisorProfile handles GET /advisors/profile. A missing profile is
// reported as an APIError with status 404.
func (c *Client) GetAdvisorProfile(ctx context.Context, identity string) (domain.AdvisorProfile, error) {
	profile := domain.AdvisorProfile{}
	if err := c.getJSON(ctx, identity, "/advisors/profile", nil, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetMyPlan handles GET /billing/my-plan
func (c *Client) GetMyPlan(ctx context.Context, identity string) (*domain.Plan, error) {
	var plan domain.Plan
	if err := c.getJSON(ctx, identity, "/billing/my-plan", nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
