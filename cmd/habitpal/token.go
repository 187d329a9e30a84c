package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"habitpal/internal/config"
	"habitpal/internal/httpserver"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Server.TokenSecret == "" {
			return errors.New("server.token_secret is not set, the API is open")
		}

		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := httpserver.GenerateToken(subject, cfg.Server.TokenSecret, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("subject", "local", "token subject")
	tokenCmd.Flags().Duration("ttl", 30*24*time.Hour, "token lifetime")

	rootCmd.AddCommand(tokenCmd)
}
