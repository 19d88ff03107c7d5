package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sirdesai22/recap-service/internal/config"
	"github.com/sirdesai22/recap-service/internal/db"
	"github.com/sirdesai22/recap-service/internal/logging"
	"github.com/sirdesai22/recap-service/internal/migration"
	"github.com/sirdesai22/recap-service/internal/services"
	"github.com/sirdesai22/recap-service/internal/storage"
)

var envFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd returns the root command for recapctl
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recapctl",
		Short:         "Operator tool for event recaps",
		Long:          "recapctl runs one-shot jobs against the recap database: legacy migration, page rendering and search reindexing.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newReindexCmd())
	return rootCmd
}

type env struct {
	cfg *config.Config
	svc *services.RecapService
}

// setup loads config, logs to stderr so stdout stays clean for output, and
// opens the database.
func setup() (*env, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	logging.SetupTo(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(pg); err != nil {
		return nil, err
	}
	// no render cache here; the TTL bounds how long the server serves a stale page
	return &env{cfg: cfg, svc: services.NewRecapService(db.NewStore(pg), nil)}, nil
}

func (e *env) fetcher(ctx context.Context) (migration.Fetcher, error) {
	f := &migration.ObjectFetcher{
		Next: migration.NewHTTPFetcher(nil, e.cfg.FetchMaxRetries, e.cfg.FetchMaxBytes),
	}
	if e.cfg.S3.Bucket == "" {
		log.Debug("S3_BUCKET not set; legacy files are fetched over HTTP only")
		return f, nil
	}
	objects, err := storage.NewS3Store(ctx, e.cfg.S3, e.cfg.FetchMaxBytes)
	if err != nil {
		return nil, err
	}
	f.Objects = objects
	return f, nil
}
