package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"shiftinsight.com/shiftinsight/config"
	"shiftinsight.com/shiftinsight/ingest"
)

type rootOptions struct {
	envFiles []string
	noColor  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "shiftload",
		Short:         "Load shift spreadsheets into the reporting warehouse",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env", ".env.local"}, "Env files loaded before reading the environment")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newLoadCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newRunsCmd(opts))
	cmd.AddCommand(newTokenCmd(opts))
	return cmd
}

func (o *rootOptions) configuration() (*config.Configuration, error) {
	return config.Load(o.envFiles...)
}

// open loads configuration and connects to the warehouse. Logs go to stderr so stdout stays
// readable.
func (o *rootOptions) open(ctx context.Context, adjust ...func(*config.Configuration)) (*ingest.Service, *logrus.Logger, error) {
	cfg, err := o.configuration()
	if err != nil {
		return nil, nil, err
	}
	for _, fn := range adjust {
		fn(cfg)
	}
	logger := config.NewLogger(cfg.LogrusLogLevel())
	logger.SetOutput(os.Stderr)

	svc, err := ingest.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, logger, nil
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err.Error())
		os.Exit(1)
	}
}
