package main

import (
	"fmt"
	"os"
	"time"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/models/gorm"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run imports and inspect the run ledger",
	}
	cmd.AddCommand(importRunCmd())
	cmd.AddCommand(importListCmd())
	return cmd
}

func importRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [publisherId]",
		Short: "Import every active publisher, or only the given one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if len(args) == 1 {
				imp, err := a.deps.Jobs.Import.ImportPublisher(ctx, args[0])
				if err != nil {
					return err
				}
				printImports([]*gorm.Import{imp})
				if imp.Status == constants.ImportFailed {
					return fmt.Errorf("import failed: %s", imp.Error)
				}
				return nil
			}

			started := time.Now().UTC()
			if err := a.deps.Jobs.Import.Run(ctx); err != nil {
				return err
			}

			imports, err := a.deps.Repo.Imports.List(ctx, "", 500)
			if err != nil {
				return err
			}
			var thisRun []*gorm.Import
			for _, imp := range imports {
				if !imp.StartedAt.Before(started.Truncate(time.Microsecond)) {
					thisRun = append(thisRun, imp)
				}
			}
			printImports(thisRun)
			return nil
		},
	}
}

func importListCmd() *cobra.Command {
	var (
		publisherID string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent import runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if limit <= 0 {
				limit = 20
			}
			imports, err := a.deps.Repo.Imports.List(ctx, publisherID, limit)
			if err != nil {
				return fmt.Errorf("failed to list imports: %w", err)
			}
			printImports(imports)
			return nil
		},
	}

	cmd.Flags().StringVar(&publisherID, "publisher", "", "only runs of this publisher")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to show")
	return cmd
}

func printImports(imports []*gorm.Import) {
	if len(imports) == 0 {
		fmt.Println("No import runs")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Started", "Publisher", "Status", "Total", "Created", "Updated", "Deleted", "Refused", "Duration", "Error"})
	for _, imp := range imports {
		tw.AppendRow(table.Row{
			imp.StartedAt.Format("2006-01-02 15:04:05"),
			imp.PublisherName,
			colorStatus(imp.Status),
			imp.TotalCount,
			imp.CreatedCount,
			imp.UpdatedCount,
			imp.DeletedCount,
			imp.RefusedCount,
			imp.Duration().Truncate(time.Millisecond).String(),
			imp.Error,
		})
	}
	tw.Render()
}

func colorStatus(status constants.ImportStatus) string {
	switch status {
	case constants.ImportSuccess:
		return color.New(color.FgGreen).Sprint(status)
	case constants.ImportFailed:
		return color.New(color.FgRed).Sprint(status)
	default:
		return color.New(color.FgYellow).Sprint(status)
	}
}
