package profiles

import "time"

// Plan is a subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// ProCredits is the credit balance shown for pro profiles after an upgrade.
const ProCredits = 999

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPro
}

// Profile is a user's entitlement state.
type Profile struct {
	UserID           string    `json:"user_id"`
	CreditsRemaining int       `json:"credits_remaining"`
	PlanType         Plan      `json:"plan_type"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CanGenerate reports whether the profile may start a paid generation.
func (p Profile) CanGenerate() bool {
	return p.PlanType == PlanPro || p.CreditsRemaining > 0
}

// Change is an administrative override. Nil fields keep their current value,
// except that a plan change without explicit credits resets credits to the plan default.
type Change struct {
	PlanType         *Plan `json:"plan_type,omitempty" validate:"omitempty,oneof=free pro"`
	CreditsRemaining *int  `json:"credits_remaining,omitempty" validate:"omitempty,gte=0"`
}

// creditsForPlan is the balance a profile gets when switched to plan.
func creditsForPlan(plan Plan) int {
	if plan == PlanPro {
		return ProCredits
	}
	return 0
}
