package main

import (
	"fmt"
	"os"

	"civic-engagement/missionhub/internal/config"
	"civic-engagement/missionhub/internal/logging"

	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "missionhub",
	Short: "Mission import and enrichment pipeline",
	Long: `missionhub imports partner volunteering mission feeds, enriches them with
geolocation and organization data, moderates them and mirrors them to analytics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if err := logging.Init(cfg.AppEnv); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Close()
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (env MISSIONHUB_* always applies)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(moderateCmd())
	rootCmd.AddCommand(registryCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
