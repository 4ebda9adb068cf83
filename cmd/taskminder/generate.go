package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/taskminder/internal/clock"
	"github.com/dukerupert/taskminder/internal/report"
)

const defaultPreviewDays = 7

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		date      string
		daysAhead int
		preview   bool
	)

	cmd := &cobra.Command{
		Use:   "generate-routine-tasks",
		Short: "Create today's tasks from active routines",
		Long: `Create the tasks active routines owe for a date, or for --days-ahead
consecutive days starting at that date. Already generated days are skipped.
With --preview nothing is written; the command lists the occurrences that
generation would create (7 days unless --days-ahead is given).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if daysAhead < 1 {
				return errors.New("--days-ahead must be at least 1")
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			start := clock.StartOfDay(a.clock.Now())
			if date != "" {
				start, err = clock.ParseDate(date, a.cfg.Location)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
			}

			ctx := cmd.Context()
			out := report.New(cmd.OutOrStdout())
			gen := a.generator(a.publisher)

			if preview {
				if !cmd.Flags().Changed("days-ahead") {
					daysAhead = defaultPreviewDays
				}
				routines, err := a.routines.ListActive(ctx)
				if err != nil {
					return err
				}
				out.Preview(routines, gen.Preview(routines, start, daysAhead))
				return nil
			}

			if daysAhead == 1 {
				res, err := gen.GenerateForDate(ctx, start)
				if err != nil {
					return err
				}
				out.Generation(res)
				return nil
			}

			res, err := gen.GenerateForRange(ctx, start, start.AddDate(0, 0, daysAhead-1))
			if err != nil {
				return err
			}
			out.GenerationRange(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to generate for, YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&daysAhead, "days-ahead", 1, "Number of consecutive days to cover")
	cmd.Flags().BoolVar(&preview, "preview", false, "List what would be generated without writing")

	return cmd
}
