// Package clock abstracts wall-clock reads and deferred callbacks so that
// time-driven components can be exercised with a virtual clock.
//
// Production code uses New, which delegates to the time package. Tests use
// NewMock and move time forward explicitly:
//
//	clk := clock.NewMock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
//	fired := false
//	clk.AfterFunc(time.Minute, func() { fired = true })
//	clk.Add(time.Minute) // fired == true
//
// Mock callbacks run synchronously on the goroutine that calls Add or Set,
// in deadline order, which keeps timer-driven tests deterministic.
package clock
