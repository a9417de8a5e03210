package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"shiftinsight.com/shiftinsight/security"
)

type tokenOptions struct {
	user  string
	email string
	role  string
	ttl   time.Duration
}

func newTokenCmd(root *rootOptions) *cobra.Command {
	var opts tokenOptions

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an operator token signed with SIGNING_SECRET",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.role != security.RoleAdmin && opts.role != security.RoleViewer {
				return fmt.Errorf("invalid --role %q: must be %s or %s", opts.role, security.RoleAdmin, security.RoleViewer)
			}
			if opts.ttl <= 0 {
				return fmt.Errorf("invalid --ttl: must be positive")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.configuration()
			if err != nil {
				return err
			}
			token, err := security.CreateIdentityToken(&security.Operator{
				UserName: opts.user,
				Email:    opts.email,
				Role:     opts.role,
			}, cfg.SigningSecret, opts.ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.user, "user", "", "Operator user name (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "Operator e-mail")
	cmd.Flags().StringVar(&opts.role, "role", security.RoleAdmin, "Role: admin or viewer")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 8*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
