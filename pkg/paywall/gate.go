package paywall

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/paywall/pkg/logger"
	"github.com/dmitrymomot/paywall/pkg/subscription"
)

// Decision is the outcome of an access check.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionRequireSubscription
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionRequireSubscription:
		return "require_subscription"
	default:
		return "unknown"
	}
}

// Subscriptions is the part of *subscription.Store the gate needs.
type Subscriptions interface {
	IsSubscribed() bool
	CurrentPlan() subscription.Plan
	Subscribe(ctx context.Context, plan subscription.Plan) error
	Cancel(ctx context.Context) error
}

type Gate struct {
	auth Authenticator
	subs Subscriptions
	log  *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the gate logger. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.log = l
		}
	}
}

// NewGate panics if auth or subs is nil.
func NewGate(auth Authenticator, subs Subscriptions, opts ...GateOption) *Gate {
	if auth == nil {
		panic("paywall: authenticator is required")
	}
	if subs == nil {
		panic("paywall: subscriptions are required")
	}
	g := &Gate{auth: auth, subs: subs, log: logger.Discard()}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logger.Component("paywall"))
	return g
}

// Access lets subscribers through and sends everyone else to the pricing page.
func (g *Gate) Access(ctx context.Context) Decision {
	if g.subs.IsSubscribed() {
		return DecisionAllow
	}
	g.log.DebugContext(ctx, "access denied", slog.String("decision", DecisionRequireSubscription.String()))
	return DecisionRequireSubscription
}

// Checkout subscribes the signed-in user to the plan named by planParam.
// An empty or unrecognised parameter selects the vantage plan.
func (g *Gate) Checkout(ctx context.Context, planParam string) (subscription.Plan, error) {
	userID, ok := g.auth.CurrentUserID(ctx)
	if !ok || !g.auth.IsAuthenticated(ctx) {
		return subscription.PlanNone, ErrLoginRequired
	}

	plan := SelectPlan(planParam)
	if err := g.subs.Subscribe(ctx, plan); err != nil {
		g.log.ErrorContext(ctx, "checkout failed", logger.UserID(userID), logger.Plan(plan), logger.Error(err))
		return subscription.PlanNone, err
	}
	g.log.InfoContext(ctx, "checkout completed", logger.UserID(userID), logger.Plan(plan))
	return plan, nil
}

// Cancel ends the current subscription.
func (g *Gate) Cancel(ctx context.Context) error {
	return g.subs.Cancel(ctx)
}

// SelectPlan maps a requested plan name to a paid plan, defaulting to vantage.
func SelectPlan(param string) subscription.Plan {
	p, err := subscription.ParsePlan(param)
	if err != nil || !p.IsPaid() {
		return subscription.PlanVantage
	}
	return p
}

// Namespace returns the key prefix under which userID's subscription is stored.
func Namespace(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrEmptyUserID
	}
	return "paywall:" + userID + ":", nil
}
