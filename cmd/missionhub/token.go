package main

import (
	"fmt"
	"time"

	"civic-engagement/missionhub/internal/auth"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage operator API tokens",
	}

	var (
		subject string
		role    string
		ttl     time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			token, err := auth.NewTokenService([]byte(cfg.JWTSecret)).Issue(subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	issue.Flags().StringVar(&subject, "subject", "", "operator identity recorded on triggered imports")
	issue.Flags().StringVar(&role, "role", auth.RoleAdmin, "token role")
	issue.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")

	cmd.AddCommand(issue)
	return cmd
}
