package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civic-engagement/missionhub/internal/jobs"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/routes"
	"civic-engagement/missionhub/internal/workers"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var noJobs bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the operator API, the scheduled jobs and the import worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logging.Info("missionhub starting up",
				"environment", cfg.AppEnv,
				"timestamp", time.Now().Format(time.RFC3339),
			)

			a, err := bootstrap(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			upSince := time.Now()

			if !noJobs {
				jobs.InitializeJobs(ctx, a.deps.Jobs.Import, a.deps.Jobs.Moderation, cfg)
			}
			workers.InitWorkers(ctx, a.deps.Queue, a.deps.Jobs.Import, a.deps.Metrics)

			server := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           routes.RegisterRoutes(a.deps, a.registry, upSince),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logging.Info("Server starting", "addr", cfg.HTTPAddr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logging.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&noJobs, "no-jobs", false, "do not schedule the import and moderation jobs")
	return cmd
}
