package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/taskminder/internal/store"
)

func newResetOverdueCmd(opts *rootOptions) *cobra.Command {
	var taskID int64

	cmd := &cobra.Command{
		Use:   "reset-overdue-flag",
		Short: "Clear a task's overdue notification flag so it can alert again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if taskID <= 0 {
				return errors.New("--task must be a positive task id")
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.tasks.ResetOverdueNotification(cmd.Context(), taskID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("task %d not found", taskID)
				}
				return err
			}
			a.logger.Info("overdue flag reset", "task_id", taskID)
			fmt.Fprintf(cmd.OutOrStdout(), "Overdue flag cleared for task %d\n", taskID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&taskID, "task", 0, "Task id")
	cmd.MarkFlagRequired("task")

	return cmd
}
