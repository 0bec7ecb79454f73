package cli

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/paywall/pkg/httpserver"
	"github.com/dmitrymomot/paywall/pkg/metrics"
	"github.com/dmitrymomot/paywall/pkg/subscription"
)

type planView struct {
	Plan     string   `json:"plan" yaml:"plan"`
	Name     string   `json:"name" yaml:"name"`
	Monthly  string   `json:"monthly" yaml:"monthly"`
	Yearly   string   `json:"yearly" yaml:"yearly"`
	Features []string `json:"features" yaml:"features"`
}

type statusView struct {
	User       string     `json:"user,omitempty" yaml:"user,omitempty"`
	Plan       string     `json:"plan" yaml:"plan"`
	Subscribed bool       `json:"subscribed" yaml:"subscribed"`
	StartedAt  *time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Remaining  string     `json:"remaining,omitempty" yaml:"remaining,omitempty"`
}

func newPlansCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List the paid plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}

			views := make([]planView, 0, len(c))
			for _, info := range c.Plans() {
				views = append(views, planView{
					Plan:     info.Plan.String(),
					Name:     info.Name,
					Monthly:  info.Monthly.String(),
					Yearly:   info.Yearly.String(),
					Features: info.Features,
				})
			}
			if a.output != outputTable {
				return encode(cmd.OutOrStdout(), a.output, views)
			}

			t := newTable("PLAN", "NAME", "MONTHLY", "YEARLY", "FEATURES")
			for _, v := range views {
				t.addRow(v.Plan, v.Name, v.Monthly, v.Yearly, strings.Join(v.Features, ", "))
			}
			return t.render(cmd.OutOrStdout())
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			defer a.close()
			return a.printStatus(cmd)
		},
	}
}

func newSubscribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe [plan]",
		Short: "Subscribe the signed-in user to a plan",
		Long:  "Subscribe the signed-in user (--user) to vantage, premium or pro. Unknown plans fall back to vantage.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			defer a.close()

			var param string
			if len(args) > 0 {
				param = args[0]
			}
			if _, err := a.gate.Checkout(cmd.Context(), param); err != nil {
				return err
			}
			return a.printStatus(cmd)
		},
	}
}

func newCancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the current subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			defer a.close()

			if err := a.gate.Cancel(cmd.Context()); err != nil {
				return err
			}
			return a.printStatus(cmd)
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Wait until the current subscription ends",
		Long: `Keep the process running until the current subscription expires or is
cancelled, printing lifecycle events. With --ops-addr, Prometheus metrics are
served on /metrics and a storage probe on /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.open(ctx); err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			if !a.store.IsSubscribed() {
				fmt.Fprintln(out, "no active subscription")
				return nil
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			errCh := make(chan error, 1)
			if a.cfg.Ops.Addr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler(a.registry))
				mux.Handle("/healthz", httpserver.HealthCheckHandler(a.log, a.backend.probe))
				srv := httpserver.New(a.cfg.Ops, a.log)
				stopped := make(chan struct{})
				go func() {
					defer close(stopped)
					errCh <- srv.Run(ctx, mux)
				}()
				defer func() {
					cancel()
					<-stopped
				}()
			}

			fmt.Fprintf(out, "%s active, %s remaining\n", a.store.CurrentPlan(), a.store.Remaining().Round(time.Second))
			for {
				select {
				case <-ctx.Done():
					return nil
				case err := <-errCh:
					return err
				case ev := <-a.events:
					fmt.Fprintf(out, "%s %s %s\n", ev.At.Format(time.RFC3339), ev.Type, ev.Plan)
					switch ev.Type {
					case subscription.EventExpired, subscription.EventCancelled:
						return nil
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&a.cfg.Ops.Addr, "ops-addr", a.cfg.Ops.Addr, "serve /metrics and /healthz on this address")
	return cmd
}

func (a *app) printStatus(cmd *cobra.Command) error {
	st := a.store.State()
	v := statusView{
		User:       a.cfg.User,
		Plan:       st.Plan.String(),
		Subscribed: st.IsActive(),
	}
	if st.IsActive() {
		started := st.StartedAt
		expires, _ := a.store.ExpiresAt()
		v.StartedAt, v.ExpiresAt = &started, &expires
		v.Remaining = a.store.Remaining().Round(time.Second).String()
	}
	if a.output != outputTable {
		return encode(cmd.OutOrStdout(), a.output, v)
	}

	t := newTable("PLAN", "SUBSCRIBED", "STARTED", "EXPIRES", "REMAINING")
	started, expires := "-", "-"
	if v.StartedAt != nil {
		started = v.StartedAt.Format(time.RFC3339)
		expires = v.ExpiresAt.Format(time.RFC3339)
	}
	t.addRow(v.Plan, fmt.Sprint(v.Subscribed), started, expires, cmp.Or(v.Remaining, "-"))
	return t.render(cmd.OutOrStdout())
}
