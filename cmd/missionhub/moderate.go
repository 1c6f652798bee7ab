package main

import (
	"github.com/spf13/cobra"
)

func moderateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moderate",
		Short: "Run the automatic moderation pass for every moderator",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			return a.deps.Jobs.Moderation.Run(ctx)
		},
	}
}
