package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func registryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the national association registry",
	}

	var source string
	ingest := &cobra.Command{
		Use:   "ingest",
		Short: "Load a registry dump (zip of CSV files) into organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			written, err := a.deps.Jobs.Registry.Run(ctx, source)
			if err != nil {
				return err
			}
			fmt.Printf("%d organizations created or updated\n", written)
			return nil
		},
	}
	ingest.Flags().StringVar(&source, "source", "", "local path or URL of the registry zip (defaults to registry.url)")

	cmd.AddCommand(ingest)
	return cmd
}
