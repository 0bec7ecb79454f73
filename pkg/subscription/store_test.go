package subscription_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paywall/pkg/clock"
	"github.com/dmitrymomot/paywall/pkg/kv"
	"github.com/dmitrymomot/paywall/pkg/subscription"
)

var epoch = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []subscription.Event
}

func (r *recorder) observe(_ context.Context, ev subscription.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []subscription.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]subscription.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// failingDeletes lets writes through but fails every delete once armed.
type failingDeletes struct {
	*kv.Memory
	mu   sync.Mutex
	fail bool
}

var errBackendDown = errors.New("backend down")

func (f *failingDeletes) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *failingDeletes) failing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *failingDeletes) Delete(ctx context.Context, key string) error {
	if f.failing() {
		return errBackendDown
	}
	return f.Memory.Delete(ctx, key)
}

func (f *failingDeletes) DeleteMany(ctx context.Context, keys ...string) error {
	if f.failing() {
		return errBackendDown
	}
	return f.Memory.DeleteMany(ctx, keys...)
}

// sequentialStorage hides kv.Batch and fails writes to one key once armed.
type sequentialStorage struct {
	mem     *kv.Memory
	mu      sync.Mutex
	failKey string
}

func (s *sequentialStorage) failWritesTo(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failKey = key
}

func (s *sequentialStorage) Get(ctx context.Context, key string) (string, error) {
	return s.mem.Get(ctx, key)
}

func (s *sequentialStorage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	fail := s.failKey == key
	s.mu.Unlock()
	if fail {
		return errBackendDown
	}
	return s.mem.Set(ctx, key, value)
}

func (s *sequentialStorage) Delete(ctx context.Context, key string) error {
	return s.mem.Delete(ctx, key)
}

func newStore(t *testing.T, storage kv.Storage, clk *clock.Mock, opts ...subscription.Option) *subscription.Store {
	t.Helper()
	opts = append([]subscription.Option{subscription.WithClock(clk)}, opts...)
	store, err := subscription.NewStore(context.Background(), storage, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func persist(t *testing.T, storage kv.Storage, plan string, startedAt *time.Time) {
	t.Helper()
	ctx := context.Background()
	if plan != "" {
		require.NoError(t, storage.Set(ctx, subscription.DefaultPlanKey, plan))
	}
	if startedAt != nil {
		require.NoError(t, storage.Set(ctx, subscription.DefaultStartKey, strconv.FormatInt(startedAt.UnixMilli(), 10)))
	}
}

func assertCleared(t *testing.T, storage kv.Storage) {
	t.Helper()
	ctx := context.Background()
	_, err := storage.Get(ctx, subscription.DefaultPlanKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = storage.Get(ctx, subscription.DefaultStartKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func assertConsistent(t *testing.T, store *subscription.Store) {
	t.Helper()
	st := store.State()
	assert.Equal(t, st.Plan == subscription.PlanNone, st.StartedAt.IsZero(), "plan %q with started_at %v", st.Plan, st.StartedAt)
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	t.Run("panics without storage", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			_, _ = subscription.NewStore(context.Background(), nil)
		})
	})

	t.Run("rejects clashing keys", func(t *testing.T) {
		t.Parallel()
		_, err := subscription.NewStore(context.Background(), kv.NewMemory(), subscription.WithKeys("k", "k"))
		assert.ErrorIs(t, err, subscription.ErrInvalidKeys)

		_, err = subscription.NewStore(context.Background(), kv.NewMemory(), subscription.WithKeys("", "start"))
		assert.ErrorIs(t, err, subscription.ErrInvalidKeys)
	})

	t.Run("starts unsubscribed on empty storage", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		store := newStore(t, kv.NewMemory(), clk)

		assert.False(t, store.IsSubscribed())
		assert.Equal(t, subscription.PlanNone, store.CurrentPlan())
		assert.Equal(t, subscription.DefaultDuration, store.Duration())
		assert.Zero(t, store.Remaining())
		assert.Equal(t, 0, clk.Pending())
		assertConsistent(t, store)
	})

	t.Run("propagates read failures", func(t *testing.T) {
		t.Parallel()
		backend := &mockStorage{}
		backend.On("Get", subscription.DefaultPlanKey).Return("", errBackendDown)

		_, err := subscription.NewStore(context.Background(), backend, subscription.WithClock(clock.NewMock(epoch)))
		assert.ErrorIs(t, err, subscription.ErrPersistence)
		assert.ErrorIs(t, err, errBackendDown)
	})
}

func TestStore_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("persists plan and start time", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch.Add(123 * time.Millisecond))
		storage := kv.NewMemory()
		store := newStore(t, storage, clk)

		require.NoError(t, store.Subscribe(ctx, subscription.PlanPremium))

		assert.True(t, store.IsSubscribed())
		assert.Equal(t, subscription.PlanPremium, store.CurrentPlan())
		assert.Equal(t, subscription.DefaultDuration, store.Remaining())
		assertConsistent(t, store)

		plan, err := storage.Get(ctx, subscription.DefaultPlanKey)
		require.NoError(t, err)
		assert.Equal(t, "premium", plan)

		start, err := storage.Get(ctx, subscription.DefaultStartKey)
		require.NoError(t, err)
		assert.Equal(t, strconv.FormatInt(epoch.Add(123*time.Millisecond).UnixMilli(), 10), start)

		expiresAt, ok := store.ExpiresAt()
		require.True(t, ok)
		assert.True(t, expiresAt.Equal(epoch.Add(123*time.Millisecond+subscription.DefaultDuration)))
	})

	t.Run("rejects non paid plans", func(t *testing.T) {
		t.Parallel()
		storage := kv.NewMemory()
		store := newStore(t, storage, clock.NewMock(epoch))

		for _, p := range []subscription.Plan{subscription.PlanNone, "enterprise"} {
			err := store.Subscribe(context.Background(), p)
			assert.ErrorIs(t, err, subscription.ErrInvalidPlan)
		}
		assert.False(t, store.IsSubscribed())
		assert.Equal(t, 0, storage.Len())
	})

	t.Run("persistence failure leaves state untouched", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory(kv.WithQuota(40))
		store := newStore(t, storage, clk)

		err := store.Subscribe(ctx, subscription.PlanPro)
		assert.ErrorIs(t, err, subscription.ErrPersistence)
		assert.ErrorIs(t, err, kv.ErrQuotaExceeded)

		assert.False(t, store.IsSubscribed())
		assert.Equal(t, 0, clk.Pending())
		assertCleared(t, storage)
		assertConsistent(t, store)
	})

	t.Run("failed resubscribe keeps the previous record", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch)
		storage := &sequentialStorage{mem: kv.NewMemory()}
		store := newStore(t, storage, clk)

		require.NoError(t, store.Subscribe(ctx, subscription.PlanPro))
		clk.Add(time.Minute)

		storage.failWritesTo(subscription.DefaultPlanKey)
		err := store.Subscribe(ctx, subscription.PlanPremium)
		assert.ErrorIs(t, err, subscription.ErrPersistence)
		assert.ErrorIs(t, err, errBackendDown)
		assert.Equal(t, subscription.PlanPro, store.CurrentPlan())
		assert.Equal(t, 9*time.Minute, store.Remaining())

		plan, err := storage.Get(ctx, subscription.DefaultPlanKey)
		require.NoError(t, err)
		assert.Equal(t, "pro", plan)
		start, err := storage.Get(ctx, subscription.DefaultStartKey)
		require.NoError(t, err)
		assert.Equal(t, strconv.FormatInt(epoch.UnixMilli(), 10), start)

		storage.failWritesTo("")
		require.NoError(t, store.Close())
		reloaded := newStore(t, storage, clk)
		assert.True(t, reloaded.IsSubscribed())
		assert.Equal(t, subscription.PlanPro, reloaded.CurrentPlan())
		assert.Equal(t, 9*time.Minute, reloaded.Remaining())
	})

	t.Run("fails after close", func(t *testing.T) {
		t.Parallel()
		store := newStore(t, kv.NewMemory(), clock.NewMock(epoch))
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		err := store.Subscribe(context.Background(), subscription.PlanVantage)
		assert.ErrorIs(t, err, subscription.ErrStoreClosed)
	})

	t.Run("round trip through a fresh store", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory()
		first := newStore(t, storage, clk)

		for _, p := range subscription.PaidPlans() {
			require.NoError(t, first.Subscribe(ctx, p))
			now := clk.Now()

			second := newStore(t, storage, clk)
			assert.Equal(t, p, second.CurrentPlan())
			assert.WithinDuration(t, now, second.State().StartedAt, time.Millisecond)
			require.NoError(t, second.Close())

			clk.Add(time.Second)
		}
	})
}

func TestStore_Expiry(t *testing.T) {
	t.Parallel()

	t.Run("expires after the window", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory()
		rec := &recorder{}
		store := newStore(t, storage, clk, subscription.WithObserver(rec.observe))

		require.NoError(t, store.Subscribe(ctx, subscription.PlanVantage))

		clk.Add(subscription.DefaultDuration - time.Millisecond)
		assert.True(t, store.IsSubscribed())
		assert.Equal(t, time.Millisecond, store.Remaining())

		clk.Add(time.Millisecond)
		assert.False(t, store.IsSubscribed())
		assert.Zero(t, store.Remaining())
		assert.Equal(t, 0, clk.Pending())
		assertCleared(t, storage)
		assertConsistent(t, store)
		assert.Equal(t, []subscription.EventType{subscription.EventSubscribed, subscription.EventExpired}, rec.types())
	})

	t.Run("custom duration", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		store := newStore(t, kv.NewMemory(), clk, subscription.WithDuration(time.Minute))

		require.NoError(t, store.Subscribe(context.Background(), subscription.PlanPro))
		clk.Add(time.Minute)
		assert.False(t, store.IsSubscribed())
	})

	t.Run("resubscribe replaces the pending timer", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory()
		store := newStore(t, storage, clk)

		require.NoError(t, store.Subscribe(ctx, subscription.PlanVantage))
		clk.Add(time.Minute)
		require.NoError(t, store.Subscribe(ctx, subscription.PlanPremium))
		assert.Equal(t, 1, clk.Pending())

		clk.Set(epoch.Add(10*time.Minute + time.Second))
		assert.True(t, store.IsSubscribed())
		assert.Equal(t, subscription.PlanPremium, store.CurrentPlan())

		plan, err := storage.Get(ctx, subscription.DefaultPlanKey)
		require.NoError(t, err)
		assert.Equal(t, "premium", plan)

		clk.Set(epoch.Add(11*time.Minute + time.Second))
		assert.False(t, store.IsSubscribed())
		assertCleared(t, storage)
	})

	t.Run("cancel disarms the timer", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch)
		rec := &recorder{}
		store := newStore(t, kv.NewMemory(), clk, subscription.WithObserver(rec.observe))

		require.NoError(t, store.Subscribe(ctx, subscription.PlanPro))
		require.NoError(t, store.Cancel(ctx))
		assert.Equal(t, 0, clk.Pending())

		require.NoError(t, store.Subscribe(ctx, subscription.PlanVantage))
		clk.Add(subscription.DefaultDuration - time.Second)
		assert.True(t, store.IsSubscribed())

		assert.Equal(t, []subscription.EventType{
			subscription.EventSubscribed,
			subscription.EventCancelled,
			subscription.EventSubscribed,
		}, rec.types())
	})

	t.Run("storage failure still revokes access", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch)
		storage := &failingDeletes{Memory: kv.NewMemory()}
		store := newStore(t, storage, clk)

		require.NoError(t, store.Subscribe(ctx, subscription.PlanPremium))
		storage.setFail(true)
		clk.Add(subscription.DefaultDuration)

		assert.False(t, store.IsSubscribed())
		assertConsistent(t, store)

		// the leftover record is past its window and gets cleared on the next start
		storage.setFail(false)
		next := newStore(t, storage, clk)
		assert.False(t, next.IsSubscribed())
		assertCleared(t, storage)
	})

	t.Run("close drops the pending timer", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory()
		store := newStore(t, storage, clk)

		require.NoError(t, store.Subscribe(ctx, subscription.PlanPremium))
		require.NoError(t, store.Close())
		assert.Equal(t, 0, clk.Pending())

		plan, err := storage.Get(ctx, subscription.DefaultPlanKey)
		require.NoError(t, err)
		assert.Equal(t, "premium", plan)
	})
}

func TestStore_Cancel(t *testing.T) {
	t.Parallel()

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory()
		rec := &recorder{}
		store := newStore(t, storage, clk, subscription.WithObserver(rec.observe))

		require.NoError(t, store.Subscribe(ctx, subscription.PlanPremium))
		require.NoError(t, store.Cancel(ctx))
		once := store.State()

		require.NoError(t, store.Cancel(ctx))
		assert.Equal(t, once, store.State())
		assert.False(t, store.IsSubscribed())
		assertCleared(t, storage)
		assertConsistent(t, store)
		assert.Equal(t, []subscription.EventType{subscription.EventSubscribed, subscription.EventCancelled}, rec.types())
	})

	t.Run("without a subscription", func(t *testing.T) {
		t.Parallel()
		store := newStore(t, kv.NewMemory(), clock.NewMock(epoch))
		require.NoError(t, store.Cancel(context.Background()))
		assert.False(t, store.IsSubscribed())
	})

	t.Run("persistence failure keeps the subscription", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch)
		storage := &failingDeletes{Memory: kv.NewMemory()}
		store := newStore(t, storage, clk)

		require.NoError(t, store.Subscribe(ctx, subscription.PlanPro))
		storage.setFail(true)

		err := store.Cancel(ctx)
		assert.ErrorIs(t, err, subscription.ErrPersistence)
		assert.ErrorIs(t, err, errBackendDown)
		assert.True(t, store.IsSubscribed())
		assert.Equal(t, 1, clk.Pending())
	})

	t.Run("allowed after close", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		storage := kv.NewMemory()
		store := newStore(t, storage, clock.NewMock(epoch))

		require.NoError(t, store.Subscribe(ctx, subscription.PlanVantage))
		require.NoError(t, store.Close())
		require.NoError(t, store.Cancel(ctx))
		assertCleared(t, storage)
	})
}

func TestStore_Reconcile(t *testing.T) {
	t.Parallel()

	t.Run("restores a running subscription", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory()
		started := epoch.Add(-3 * time.Minute)
		persist(t, storage, "premium", &started)
		rec := &recorder{}

		store := newStore(t, storage, clk, subscription.WithObserver(rec.observe))
		assert.Equal(t, []subscription.EventType{subscription.EventRestored}, rec.types())
		assert.True(t, store.IsSubscribed())
		assert.Equal(t, subscription.PlanPremium, store.CurrentPlan())
		assert.Equal(t, 7*time.Minute, store.Remaining())
		assert.Equal(t, 1, clk.Pending())

		clk.Add(7*time.Minute - time.Millisecond)
		assert.True(t, store.IsSubscribed())

		clk.Add(time.Millisecond)
		assert.False(t, store.IsSubscribed())
		assert.Equal(t, subscription.PlanNone, store.CurrentPlan())
		assertCleared(t, storage)
	})

	t.Run("expires a stale subscription immediately", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory()
		started := epoch.Add(-11 * time.Minute)
		persist(t, storage, "pro", &started)
		rec := &recorder{}

		store := newStore(t, storage, clk, subscription.WithObserver(rec.observe))
		assert.False(t, store.IsSubscribed())
		assert.Equal(t, 0, clk.Pending())
		assertCleared(t, storage)
		assert.Equal(t, []subscription.EventType{subscription.EventExpired}, rec.types())
	})

	t.Run("window ending exactly now counts as expired", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory()
		started := epoch.Add(-subscription.DefaultDuration)
		persist(t, storage, "vantage", &started)

		store := newStore(t, storage, clk)
		assert.False(t, store.IsSubscribed())
		assert.Equal(t, 0, clk.Pending())
	})

	t.Run("repairs a plan without start time", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory()
		persist(t, storage, "pro", nil)
		rec := &recorder{}

		store := newStore(t, storage, clk, subscription.WithObserver(rec.observe))
		assert.False(t, store.IsSubscribed())
		assert.Equal(t, 0, clk.Pending())
		assertCleared(t, storage)
		assertConsistent(t, store)
		assert.Equal(t, []subscription.EventType{subscription.EventRepaired}, rec.types())
	})

	t.Run("repairs garbage values", func(t *testing.T) {
		t.Parallel()
		started := epoch.Add(-time.Minute)
		cases := map[string]func(*testing.T, kv.Storage){
			"unknown plan": func(t *testing.T, s kv.Storage) { persist(t, s, "platinum", &started) },
			"bad start time": func(t *testing.T, s kv.Storage) {
				persist(t, s, "premium", nil)
				require.NoError(t, s.Set(context.Background(), subscription.DefaultStartKey, "yesterday"))
			},
		}
		for name, seed := range cases {
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				storage := kv.NewMemory()
				seed(t, storage)

				store := newStore(t, storage, clock.NewMock(epoch))
				assert.False(t, store.IsSubscribed())
				assertCleared(t, storage)
			})
		}
	})

	t.Run("removes an orphaned start time", func(t *testing.T) {
		t.Parallel()
		storage := kv.NewMemory()
		started := epoch.Add(-time.Minute)
		persist(t, storage, "", &started)

		store := newStore(t, storage, clock.NewMock(epoch))
		assert.False(t, store.IsSubscribed())
		assertCleared(t, storage)
	})

	t.Run("clamps a start time in the future", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory()
		started := epoch.Add(time.Hour)
		persist(t, storage, "premium", &started)

		store := newStore(t, storage, clk)
		assert.True(t, store.IsSubscribed())
		assert.Equal(t, subscription.DefaultDuration, store.Remaining())

		clk.Add(subscription.DefaultDuration)
		assert.False(t, store.IsSubscribed())
	})

	t.Run("honours custom keys", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := clock.NewMock(epoch)
		storage := kv.NewMemory()
		require.NoError(t, storage.Set(ctx, "plan", "vantage"))
		require.NoError(t, storage.Set(ctx, "since", strconv.FormatInt(epoch.Add(-time.Minute).UnixMilli(), 10)))

		store := newStore(t, storage, clk, subscription.WithKeys("plan", "since"))
		assert.Equal(t, subscription.PlanVantage, store.CurrentPlan())
		assert.Equal(t, 9*time.Minute, store.Remaining())
	})
}

func TestStore_ObserverMayCallBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewMock(epoch)

	var store *subscription.Store
	var seen []bool
	store = newStore(t, kv.NewMemory(), clk, subscription.WithObserver(func(context.Context, subscription.Event) {
		seen = append(seen, store.IsSubscribed())
	}))

	require.NoError(t, store.Subscribe(ctx, subscription.PlanPro))
	clk.Add(subscription.DefaultDuration)
	assert.Equal(t, []bool{true, false}, seen)
}

func TestStore_InvariantUnderRandomOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewMock(epoch)
	storage := kv.NewMemory()
	store := newStore(t, storage, clk)

	steps := []func(){
		func() { require.NoError(t, store.Subscribe(ctx, subscription.PlanVantage)) },
		func() { clk.Add(4 * time.Minute) },
		func() { require.NoError(t, store.Subscribe(ctx, subscription.PlanPro)) },
		func() { clk.Add(9 * time.Minute) },
		func() { require.NoError(t, store.Cancel(ctx)) },
		func() { clk.Add(30 * time.Minute) },
		func() { require.NoError(t, store.Subscribe(ctx, subscription.PlanPremium)) },
		func() { clk.Add(11 * time.Minute) },
		func() { require.NoError(t, store.Cancel(ctx)) },
	}
	for _, step := range steps {
		step()
		assertConsistent(t, store)
		assert.LessOrEqual(t, clk.Pending(), 1)

		_, err := storage.Get(ctx, subscription.DefaultPlanKey)
		assert.Equal(t, store.IsSubscribed(), err == nil)
	}
}
