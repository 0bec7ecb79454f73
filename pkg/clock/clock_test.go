package clock_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paywall/pkg/clock"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestMock_AfterFunc(t *testing.T) {
	t.Parallel()

	t.Run("fires when deadline is reached", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		fired := false
		clk.AfterFunc(time.Minute, func() { fired = true })

		clk.Add(59 * time.Second)
		assert.False(t, fired)
		assert.Equal(t, 1, clk.Pending())

		clk.Add(time.Second)
		assert.True(t, fired)
		assert.Equal(t, 0, clk.Pending())
	})

	t.Run("callback observes its own deadline", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		var seen time.Time
		clk.AfterFunc(time.Minute, func() { seen = clk.Now() })

		clk.Add(time.Hour)
		assert.Equal(t, epoch.Add(time.Minute), seen)
		assert.Equal(t, epoch.Add(time.Hour), clk.Now())
	})

	t.Run("fires in deadline order", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		var order []int
		clk.AfterFunc(3*time.Second, func() { order = append(order, 3) })
		clk.AfterFunc(time.Second, func() { order = append(order, 1) })
		clk.AfterFunc(2*time.Second, func() { order = append(order, 2) })

		clk.Add(5 * time.Second)
		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("runs callbacks scheduled by callbacks", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		var count int
		clk.AfterFunc(time.Second, func() {
			count++
			clk.AfterFunc(time.Second, func() { count++ })
		})

		clk.Add(2 * time.Second)
		assert.Equal(t, 2, count)
	})

	t.Run("zero duration fires on next advance", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		fired := false
		clk.AfterFunc(0, func() { fired = true })
		assert.False(t, fired)

		clk.Add(0)
		assert.True(t, fired)
	})
}

func TestMock_Stop(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock(epoch)
	fired := false
	timer := clk.AfterFunc(time.Minute, func() { fired = true })

	require.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports nothing was pending")

	clk.Add(time.Hour)
	assert.False(t, fired)
}

func TestMock_StopAfterFire(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock(epoch)
	timer := clk.AfterFunc(time.Second, func() {})
	clk.Add(time.Second)

	assert.False(t, timer.Stop())
}

func TestMock_Set(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock(epoch)
	target := epoch.Add(10 * time.Minute)
	clk.Set(target)
	assert.Equal(t, target, clk.Now())

	clk.Set(epoch)
	assert.Equal(t, epoch, clk.Now(), "rewinding only moves Now")
}

func TestRealClock(t *testing.T) {
	t.Parallel()

	clk := clock.New()
	before := time.Now()
	assert.False(t, clk.Now().Before(before))

	var fired atomic.Bool
	done := make(chan struct{})
	clk.AfterFunc(time.Millisecond, func() {
		fired.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	assert.True(t, fired.Load())

	timer := clk.AfterFunc(time.Hour, func() {})
	assert.True(t, timer.Stop())
}
