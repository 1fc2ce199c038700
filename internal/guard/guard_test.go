package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name                string
		hasUser             bool
		requireOnboarding   bool
		onboardingCompleted bool
		want                Decision
	}{
		{"no user, guarded view", false, true, false, RedirectLogin},
		{"no user, wizard view", false, false, false, RedirectLogin},
		{"no user ignores completed flag", false, true, true, RedirectLogin},
		{"guarded view before onboarding", true, true, false, RedirectOnboarding},
		{"guarded view after onboarding", true, true, true, Allow},
		{"wizard after onboarding", true, false, true, RedirectDashboard},
		{"wizard before onboarding", true, false, false, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.hasUser, tt.requireOnboarding, tt.onboardingCompleted)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecisionTarget(t *testing.T) {
	assert.Equal(t, "", Allow.Target())
	assert.Equal(t, "/login", RedirectLogin.Target())
	assert.Equal(t, "/onboarding", RedirectOnboarding.Target())
	assert.Equal(t, "/dashboard", RedirectDashboard.Target())
}
