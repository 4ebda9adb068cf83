package main

import (
	"github.com/spf13/cobra"

	"github.com/dukerupert/taskminder/internal/report"
)

func newCleanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean-expired-reminders",
		Short: "Expire unsent reminders whose send window has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.dispatcher(a.publisher).CleanExpired(cmd.Context(), a.clock.Now())
			if err != nil {
				return err
			}
			report.New(cmd.OutOrStdout()).Cleanup(n)
			return nil
		},
	}
}
