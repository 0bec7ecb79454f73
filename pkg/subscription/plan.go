package subscription

import "strings"

// Plan is a subscription tier. The zero value is PlanNone.
type Plan string

const (
	PlanNone    Plan = ""
	PlanVantage Plan = "vantage"
	PlanPremium Plan = "premium"
	PlanPro     Plan = "pro"
)

// PaidPlans lists the paid tiers from cheapest to most expensive.
func PaidPlans() []Plan {
	return []Plan{PlanVantage, PlanPremium, PlanPro}
}

// ParsePlan maps a persisted or user-supplied value to a Plan.
// Surrounding whitespace and letter case are ignored; the empty string is PlanNone.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(strings.ToLower(strings.TrimSpace(s))); p {
	case PlanNone, PlanVantage, PlanPremium, PlanPro:
		return p, nil
	default:
		return PlanNone, ErrUnknownPlan
	}
}

// IsPaid reports whether p is one of the paid tiers.
func (p Plan) IsPaid() bool {
	switch p {
	case PlanVantage, PlanPremium, PlanPro:
		return true
	default:
		return false
	}
}

func (p Plan) String() string {
	if p == PlanNone {
		return "none"
	}
	return string(p)
}
