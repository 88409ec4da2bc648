package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rentaltoll-backend/internal/security"
)

func tokenCommand(load configLoader) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:     "token",
		Short:   "mint an operator bearer token",
		Example: `rentalctl token --subject fleet-admin --ttl 720h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Auth.TokenSecret == "" {
				return errors.New("auth.token_secret is not configured")
			}
			if ttl == 0 {
				ttl = cfg.TokenTTL()
			}

			token, err := security.NewTokenManager(cfg.Auth.TokenSecret).GenerateToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "operator", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.token_ttl_hours)")
	return cmd
}
