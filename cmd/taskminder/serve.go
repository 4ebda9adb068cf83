package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/taskminder/internal/notify"
	"github.com/dukerupert/taskminder/internal/scheduler"
	"github.com/dukerupert/taskminder/internal/server"
	"github.com/dukerupert/taskminder/internal/websocket"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the notification and generation jobs on an internal schedule",
		Long: `Run as a daemon: reminder and overdue emails, routine generation and
reminder cleanup run from an internal cron. Events stream to websocket
clients on /ws and, when VAPID keys are configured, to browser push
subscriptions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.cfg
			logger := a.logger

			hub := websocket.NewHub(logger.With("component", "hub"))
			publishers := notify.Fanout{hub, a.publisher}

			var vapidKey string
			if a.pushService != nil {
				vapidKey = a.pushService.VAPIDPublicKey()
			} else {
				logger.Info("web push disabled, VAPID keys not configured")
			}

			dispatcher := a.dispatcher(publishers)
			notifier := a.notifier(publishers, false)
			generator := a.generator(publishers)

			sched := scheduler.New(a.clock, cfg.Location, logger)
			jobs := []struct {
				name string
				spec string
				fn   scheduler.JobFunc
			}{
				{"send-reminder-emails", cfg.Serve.NotifySpec, func(ctx context.Context, now time.Time) error {
					_, rerr := dispatcher.ProcessDueReminders(ctx, now)
					_, oerr := notifier.ProcessOverdueTasks(ctx, now)
					return errors.Join(rerr, oerr)
				}},
				{"generate-routine-tasks", cfg.Serve.GenerateSpec, func(ctx context.Context, now time.Time) error {
					_, err := generator.GenerateForDate(ctx, now)
					return err
				}},
				{"clean-expired-reminders", cfg.Serve.CleanupSpec, func(ctx context.Context, now time.Time) error {
					_, err := dispatcher.CleanExpired(ctx, now)
					return err
				}},
			}
			for _, j := range jobs {
				if _, err := sched.Add(j.name, j.spec, j.fn); err != nil {
					return err
				}
			}

			sched.Start()
			defer sched.Stop()

			srv := server.New(a.db, hub, vapidKey, logger)
			return srv.Run(cmd.Context(), cfg.Serve.Addr)
		},
	}
}
