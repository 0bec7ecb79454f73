// Package paywall decides what a visitor may see based on who they are and
// what they pay for.
//
// A Gate combines an Authenticator with a subscription store. Access gates
// premium pages, Checkout turns a requested plan into a subscription for a
// signed-in user, and Cancel ends it.
//
//	gate := paywall.NewGate(auth, store)
//	if gate.Access(ctx) == paywall.DecisionRequireSubscription {
//		// send the visitor to the pricing page
//	}
//
// Namespace builds a per-user key prefix so several users can share one
// kv.Storage through kv.WithPrefix.
package paywall
