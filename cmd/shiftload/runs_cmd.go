package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"shiftinsight.com/shiftinsight/loader"
	"shiftinsight.com/shiftinsight/model"
)

type runsOptions struct {
	limit  int
	offset int
	loadID string
}

func newRunsCmd(root *rootOptions) *cobra.Command {
	var opts runsOptions

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent loads, newest first",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.limit <= 0 {
				return fmt.Errorf("invalid --limit: must be positive")
			}
			if opts.offset < 0 {
				return fmt.Errorf("invalid --offset: must not be negative")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, _, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			if opts.loadID != "" {
				run, err := svc.GetLoadRun(ctx, opts.loadID)
				if err != nil {
					return fmt.Errorf("load %s: %w", opts.loadID, err)
				}
				renderRuns(cmd.OutOrStdout(), []model.LoadRun{*run}, 1)
				var skips []loader.SkipRecord
				if len(run.SkippedDetails) > 0 {
					if err := json.Unmarshal(run.SkippedDetails, &skips); err != nil {
						return fmt.Errorf("failed to decode skipped rows: %w", err)
					}
				}
				renderSkips(cmd.OutOrStdout(), skips)
				return nil
			}

			runs, total, err := svc.ListLoadRuns(ctx, opts.limit, opts.offset)
			if err != nil {
				return err
			}
			renderRuns(cmd.OutOrStdout(), runs, total)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", 20, "Number of runs to show")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Number of runs to skip")
	cmd.Flags().StringVar(&opts.loadID, "id", "", "Show one run with its skipped rows")
	return cmd
}
