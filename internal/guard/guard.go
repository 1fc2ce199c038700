// Package guard decides whether a protected view may render for the current
// user, and where to send them when it may not.
package guard

// Decision is the terminal outcome of a guard check.
type Decision int

const (
	// Allow renders the requested view.
	Allow Decision = iota
	// RedirectLogin is returned whenever no user is present; no onboarding
	// check is performed in that case.
	RedirectLogin
	// RedirectOnboarding sends an un-onboarded user back to the wizard.
	RedirectOnboarding
	// RedirectDashboard keeps an onboarded user off the onboarding page.
	RedirectDashboard
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "login"
	case RedirectOnboarding:
		return "onboarding"
	case RedirectDashboard:
		return "dashboard"
	}
	return "unknown"
}

// Target is the route a redirect decision points at, empty for Allow.
func (d Decision) Target() string {
	switch d {
	case RedirectLogin:
		return "/login"
	case RedirectOnboarding:
		return "/onboarding"
	case RedirectDashboard:
		return "/dashboard"
	}
	return ""
}

// Decide is the guard truth table. requireOnboarding is true for views that
// need a completed profile (dashboard, diagnostics) and false for the
// onboarding page itself.
func Decide(hasUser, requireOnboarding, onboardingCompleted bool) Decision {
	if !hasUser {
		return RedirectLogin
	}
	if requireOnboarding {
		if !onboardingCompleted {
			return RedirectOnboarding
		}
		return Allow
	}
	if onboardingCompleted {
		return RedirectDashboard
	}
	return Allow
}
