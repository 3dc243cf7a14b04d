// Package routing classifies browser paths. It decides which area of the app
// a path belongs to and maps workspace paths to tab indexes and back.
package routing

import (
	"path"
	"strings"
)

// App paths the shell treats specially
const (
	HomePath              = "/home"
	AdvisorPrefix         = "/advisor"
	AdvisorOnboardingPath = "/advisor/onboarding"
	AdvisorDashboardPath  = "/advisor/dashboard"
	WorkspacePrefix       = "/workspace"
)

// Area is the top-level section of the app a path belongs to
type Area string

const (
	AreaHome    Area = "home"
	AreaAdvisor Area = "advisor"
	AreaApp     Area = "app"
)

// Clean normalizes a browser path, dropping query, fragment and trailing slash
func Clean(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Classify returns the area of p
func Classify(p string) Area {
	switch {
	case IsHome(p):
		return AreaHome
	case IsAdvisor(p):
		return AreaAdvisor
	default:
		return AreaApp
	}
}

// IsHome reports whether p is the flow selector page
func IsHome(p string) bool {
	return Clean(p) == HomePath
}

// IsAdvisor reports whether p is the advisor section or below it
func IsAdvisor(p string) bool {
	return hasSegmentPrefix(Clean(p), AdvisorPrefix)
}

// IsAdvisorOnboarding reports whether p is the advisor onboarding page
func IsAdvisorOnboarding(p string) bool {
	return Clean(p) == AdvisorOnboardingPath
}

func hasSegmentPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
