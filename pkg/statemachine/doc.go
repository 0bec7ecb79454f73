// Package statemachine implements a small finite state machine with guarded
// transitions and transition actions.
//
// Transitions are declared up front with options:
//
//	const (
//		Disarmed = statemachine.StringState("disarmed")
//		Armed    = statemachine.StringState("armed")
//		Arm      = statemachine.StringEvent("arm")
//		Disarm   = statemachine.StringEvent("disarm")
//	)
//
//	sm := statemachine.MustNew(Disarmed,
//		statemachine.WithTransition(Disarmed, Armed, Arm, statemachine.WithAction(startTimer)),
//		statemachine.WithTransition(Armed, Armed, Arm, statemachine.WithAction(startTimer)),
//		statemachine.WithTransition(Armed, Disarmed, Disarm, statemachine.WithAction(stopTimer)),
//	)
//	err := sm.Fire(ctx, Arm, 10*time.Minute)
//
// For a given state and event the first transition whose guards all pass is
// taken. Its actions run in order before the state changes; an action error
// aborts the transition and leaves the machine in its previous state.
//
// Machine is safe for concurrent use. Actions and guards run while the
// machine is locked and must not call back into the same machine.
package statemachine
