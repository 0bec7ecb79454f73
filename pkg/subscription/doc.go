// Package subscription keeps the current paid plan of a single profile and
// expires it automatically after a fixed window.
//
// The Store is the only writer of the persisted subscription record: a plan
// key and a start-time key in a kv.Storage. Both are written and removed
// together. An active subscription reverts to PlanNone once Duration has
// passed since it started, whether the process kept running or was restarted
// in between:
//
//	store, err := subscription.NewStore(ctx, storage,
//		subscription.WithLogger(log),
//		subscription.WithObserver(collector.Observe),
//	)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	if err := store.Subscribe(ctx, subscription.PlanPremium); err != nil {
//		return err
//	}
//	store.IsSubscribed() // true for the next ten minutes
//
// # Reconciliation
//
// NewStore reads the persisted record once before returning:
//
//   - no plan: nothing to do (a leftover start time is removed)
//   - plan without a valid start time, or an unknown plan: the record is
//     cleared and EventRepaired is emitted
//   - window already over: the record is cleared and EventExpired is emitted
//   - otherwise the expiry timer is armed for the rest of the window and
//     EventRestored is emitted
//
// # Expiry
//
// At most one expiry callback is pending. Subscribe re-arms it for the full
// window and Cancel disarms it, so a callback scheduled for an earlier
// subscription never clears a newer one.
//
// # Errors
//
// Storage failures are returned wrapped in ErrPersistence and leave the
// in-memory state unchanged. The adapter's own error, such as
// kv.ErrQuotaExceeded, stays reachable through errors.Is.
package subscription
