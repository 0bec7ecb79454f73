package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/paywall/pkg/config"
	"github.com/dmitrymomot/paywall/pkg/kv"
	"github.com/dmitrymomot/paywall/pkg/logger"
	"github.com/dmitrymomot/paywall/pkg/metrics"
	"github.com/dmitrymomot/paywall/pkg/paywall"
	"github.com/dmitrymomot/paywall/pkg/subscription"
)

// Execute runs the paywall command with configuration from the environment.
func Execute() error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd(cfg).ExecuteContext(ctx)
}

// app carries what the subcommands share.
// userIDKey carries the signed-in user on the command context so every log
// record written with that context names it.
type userIDKey struct{}

type app struct {
	cfg    Config
	output string
	log    *slog.Logger

	backend  *backend
	cached   *kv.Cached
	store    *subscription.Store
	gate     *paywall.Gate
	registry *prometheus.Registry
	events   chan subscription.Event
}

// NewRootCmd builds the command tree around cfg.
func NewRootCmd(cfg Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:   "paywall",
		Short: "Manage the time-limited subscription of a news verification profile",
		Long: `paywall keeps the current subscription plan of a profile in a key/value
store and expires it automatically once its window is over.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.log = logger.New(
				logger.WithEnvironment(a.cfg.AppEnv, a.cfg.AppName),
				logger.WithLevelName(a.cfg.LogLevel),
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithContextValue("user_id", userIDKey{}),
			)
			if a.cfg.User != "" {
				cmd.SetContext(context.WithValue(cmd.Context(), userIDKey{}, a.cfg.User))
			}
			switch a.output {
			case outputTable, outputJSON, outputYAML:
				return nil
			}
			return errors.Join(errInvalidOutput, errors.New(a.output))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Storage, "storage", a.cfg.Storage, "storage backend: memory, sqlite, redis, postgres, mongo")
	flags.StringVar(&a.cfg.User, "user", a.cfg.User, "signed-in user; scopes the stored subscription")
	flags.StringVar(&a.cfg.Catalog, "catalog", a.cfg.Catalog, "YAML plan catalog (default built-in prices)")
	flags.StringVarP(&a.output, "output", "o", outputTable, "output format: table, json, yaml")

	root.AddCommand(
		newPlansCmd(a),
		newStatusCmd(a),
		newSubscribeCmd(a),
		newCancelCmd(a),
		newWatchCmd(a),
	)
	return root
}

// open connects the storage backend and restores the subscription.
func (a *app) open(ctx context.Context) error {
	b, err := openBackend(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}
	a.backend = b

	var storage kv.Storage = b
	if a.cfg.User != "" {
		prefix, err := paywall.Namespace(a.cfg.User)
		if err != nil {
			_ = b.close()
			return err
		}
		storage = kv.WithPrefix(storage, prefix)
	}
	if a.cfg.CacheSize > 0 {
		a.cached = kv.NewCached(storage, a.cfg.CacheSize)
		storage = a.cached
	}

	a.registry = prometheus.NewRegistry()
	collector := metrics.NewCollector(a.registry)
	a.events = make(chan subscription.Event, 16)

	a.store, err = subscription.NewStore(ctx, storage,
		subscription.WithDuration(a.cfg.Duration),
		subscription.WithKeys(a.cfg.PlanKey, a.cfg.StartKey),
		subscription.WithLogger(a.log),
		subscription.WithObserver(collector.Observe),
		subscription.WithObserver(a.forward),
	)
	if err != nil {
		_ = b.close()
		return err
	}

	a.gate = paywall.NewGate(paywall.StaticIdentity{UserID: a.cfg.User}, a.store, paywall.WithLogger(a.log))
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.cached != nil {
		st := a.cached.Stats()
		a.log.Debug("storage cache", "hits", st.Hits, "misses", st.Misses)
	}
	if a.backend != nil {
		errs = append(errs, a.backend.close())
	}
	return errors.Join(errs...)
}

// forward hands events to the watch command without ever blocking the store.
func (a *app) forward(_ context.Context, ev subscription.Event) {
	select {
	case a.events <- ev:
	default:
	}
}

func (a *app) catalog() (subscription.Catalog, error) {
	if a.cfg.Catalog == "" {
		return subscription.DefaultCatalog(), nil
	}
	f, err := os.Open(a.cfg.Catalog)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return subscription.LoadCatalog(f)
}
