package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/taskminder/internal/push"
)

func newVAPIDKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vapid-keys",
		Short: "Generate a VAPID key pair for web push",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, priv, err := push.GenerateVAPIDKeys()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "push:")
			fmt.Fprintf(out, "  vapid_public_key: %s\n", pub)
			fmt.Fprintf(out, "  vapid_private_key: %s\n", priv)
			return nil
		},
	}
}
