package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "taskminder",
		Short:         "Overdue alerts, reminder emails and routine task generation",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: taskminder.yaml in ., ./config or /etc/taskminder)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newSendRemindersCmd(opts))
	cmd.AddCommand(newCleanCmd(opts))
	cmd.AddCommand(newResetOverdueCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newVAPIDKeysCmd())

	return cmd
}
