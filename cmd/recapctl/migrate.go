package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sirdesai22/recap-service/internal/migration"
)

func newMigrateCmd() *cobra.Command {
	var dryRun bool
	var eventID string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create recaps from legacy event records",
		Long: `Convert legacy events (description, recap file) into structured recaps.

Events that already have a recap are skipped, so the command can be re-run
safely. Results are printed as JSON, one entry per event.`,
		Example: `  # Preview what would be created
  recapctl migrate --dry-run

  # Migrate one event
  recapctl migrate --event 5a05617f-377e-4d42-832c-ce51fc0c58d8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, dryRun, eventID)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Convert without writing recaps")
	cmd.Flags().StringVar(&eventID, "event", "", "Migrate only this event id")
	return cmd
}

func runMigrate(cmd *cobra.Command, dryRun bool, eventID string) error {
	ctx := cmd.Context()
	e, err := setup()
	if err != nil {
		return err
	}
	fetcher, err := e.fetcher(ctx)
	if err != nil {
		return err
	}
	m := migration.NewMigrator(e.svc, migration.NewConverter(fetcher, nil)).WithDryRun(dryRun)

	var results []migration.Result
	if eventID != "" {
		id, err := uuid.Parse(eventID)
		if err != nil {
			return fmt.Errorf("invalid --event: %w", err)
		}
		res, err := m.MigrateEvent(ctx, id)
		if err != nil {
			return err
		}
		results = []migration.Result{res}
	} else if results, err = m.Run(ctx); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}
	if n := countFailed(results); n > 0 {
		return fmt.Errorf("%d of %d events failed", n, len(results))
	}
	return nil
}

func countFailed(results []migration.Result) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}
