package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/taskminder/internal/report"
)

func newSendRemindersCmd(opts *rootOptions) *cobra.Command {
	var catchUp bool

	cmd := &cobra.Command{
		Use:   "send-reminder-emails",
		Short: "Send due reminder emails, then overdue task alerts",
		Long: `Run one notification tick: reminders scheduled in the last window are
emailed, then tasks that just crossed the overdue threshold are alerted.
Schedule it every minute from cron. --catch-up also alerts tasks that became
overdue while no tick ran.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			now := a.clock.Now()
			out := report.New(cmd.OutOrStdout())

			var errs []error
			reminderStats, err := a.dispatcher(a.publisher).ProcessDueReminders(ctx, now)
			if err != nil {
				errs = append(errs, fmt.Errorf("reminder emails: %w", err))
			} else {
				out.Reminders(reminderStats)
			}

			notifier := a.notifier(a.publisher, catchUp)
			overdueStats, err := notifier.ProcessOverdueTasks(ctx, now)
			if err != nil {
				errs = append(errs, fmt.Errorf("overdue notifications: %w", err))
			} else {
				out.Overdue(overdueStats, notifier.Policy())
			}

			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVar(&catchUp, "catch-up", false, "Alert every unnotified overdue task, not just the current window")

	return cmd
}
