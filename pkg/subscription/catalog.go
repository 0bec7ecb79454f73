package subscription

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// Money is an amount in the currency's minor unit.
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

// String formats m as "9.99 USD".
func (m Money) String() string {
	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign, amount = "-", -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, m.Currency)
}

// PlanInfo is what the pricing page shows for a tier.
type PlanInfo struct {
	Plan     Plan     `yaml:"-"`
	Name     string   `yaml:"name"`
	Monthly  Money    `yaml:"monthly"`
	Yearly   Money    `yaml:"yearly"`
	Features []string `yaml:"features"`
}

// Catalog describes the paid tiers.
type Catalog map[Plan]PlanInfo

// DefaultCatalog returns the built-in monthly pricing.
func DefaultCatalog() Catalog {
	return Catalog{
		PlanVantage: {
			Plan:     PlanVantage,
			Name:     "Vantage",
			Monthly:  Money{Amount: 999, Currency: "USD"},
			Yearly:   Money{Amount: 9999, Currency: "USD"},
			Features: []string{"basic_search", "100_searches", "standard_display", "email_support"},
		},
		PlanPremium: {
			Plan:     PlanPremium,
			Name:     "Premium",
			Monthly:  Money{Amount: 1999, Currency: "USD"},
			Yearly:   Money{Amount: 19999, Currency: "USD"},
			Features: []string{"advanced_search", "unlimited_searches", "enhanced_analysis", "priority_support", "advanced_analytics", "export_results"},
		},
		PlanPro: {
			Plan:     PlanPro,
			Name:     "Pro",
			Monthly:  Money{Amount: 3999, Currency: "USD"},
			Yearly:   Money{Amount: 39999, Currency: "USD"},
			Features: []string{"enterprise_search", "unlimited_searches", "custom_config", "dedicated_support", "enterprise_dashboard", "full_api_access"},
		},
	}
}

// Get returns the entry for p or ErrPlanNotFound.
func (c Catalog) Get(p Plan) (PlanInfo, error) {
	info, ok := c[p]
	if !ok {
		return PlanInfo{}, ErrPlanNotFound
	}
	return info, nil
}

// Plans returns the catalog entries ordered from cheapest tier to most expensive.
func (c Catalog) Plans() []PlanInfo {
	out := make([]PlanInfo, 0, len(c))
	for _, p := range PaidPlans() {
		if info, ok := c[p]; ok {
			out = append(out, info)
		}
	}
	return out
}

// Has reports whether feature is included in plan p.
func (c Catalog) Has(p Plan, feature string) bool {
	info, ok := c[p]
	return ok && slices.Contains(info.Features, feature)
}

// LoadCatalog reads a YAML document keyed by plan:
//
//	vantage:
//	  name: Vantage
//	  monthly: {amount: 999, currency: USD}
//	  yearly: {amount: 9999, currency: USD}
//	  features: [basic_search]
func LoadCatalog(r io.Reader) (Catalog, error) {
	var raw map[string]PlanInfo
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Join(ErrInvalidCatalog, errors.New("empty document"))
		}
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	c := make(Catalog, len(raw))
	for key, info := range raw {
		p, err := ParsePlan(key)
		if err != nil || !p.IsPaid() {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("unknown plan %q", key))
		}
		if info.Name == "" {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("plan %q has no name", key))
		}
		if info.Monthly.Amount < 0 || info.Yearly.Amount < 0 {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("plan %q has a negative price", key))
		}
		info.Monthly.Currency = cmp.Or(info.Monthly.Currency, "USD")
		info.Yearly.Currency = cmp.Or(info.Yearly.Currency, info.Monthly.Currency)
		info.Plan = p
		c[p] = info
	}
	if len(c) == 0 {
		return nil, errors.Join(ErrInvalidCatalog, errors.New("no plans defined"))
	}
	return c, nil
}
