package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sirdesai22/recap-service/internal/api"
	"github.com/sirdesai22/recap-service/internal/cache"
	"github.com/sirdesai22/recap-service/internal/config"
	"github.com/sirdesai22/recap-service/internal/db"
	"github.com/sirdesai22/recap-service/internal/elastic"
	"github.com/sirdesai22/recap-service/internal/logging"
	"github.com/sirdesai22/recap-service/internal/metrics"
	"github.com/sirdesai22/recap-service/internal/migration"
	"github.com/sirdesai22/recap-service/internal/render"
	"github.com/sirdesai22/recap-service/internal/services"
	"github.com/sirdesai22/recap-service/internal/storage"
	"github.com/sirdesai22/recap-service/internal/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ config: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := db.Migrate(pg); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if cfg.Seed {
		if err := db.Seed(pg); err != nil {
			log.Fatalf("❌ seed: %v", err)
		}
	}

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := api.Deps{
		JWTSecret: []byte(cfg.JWTSecret),
		Origins:   cfg.AllowedOrigins,
	}

	var pages *cache.RenderCache
	if cfg.RedisAddr != "" {
		if pages, err = cache.Connect(ctx, cfg.RedisAddr, cfg.RenderCacheTTL); err != nil {
			log.Warnf("⚠️ render cache disabled: %v", err)
		} else {
			deps.Cache = pages
			defer pages.Close()
		}
	}

	fetcher := &migration.ObjectFetcher{
		Next: migration.NewHTTPFetcher(nil, cfg.FetchMaxRetries, cfg.FetchMaxBytes),
	}
	if cfg.S3.Bucket != "" {
		objects, err := storage.NewS3Store(ctx, cfg.S3, cfg.FetchMaxBytes)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		fetcher.Objects = objects
		deps.Uploads = objects
	} else {
		log.Warn("⚠️ S3_BUCKET not set; uploads disabled")
	}

	svc := services.NewRecapService(db.NewStore(pg), pages)
	deps.Recaps = svc
	deps.Migrator = migration.NewMigrator(svc, migration.NewConverter(fetcher, nil))
	if deps.Renderer, err = render.New(); err != nil {
		log.Fatalf("❌ templates: %v", err)
	}

	var worker *workers.SyncWorker
	if cfg.ElasticURL != "" {
		esClient, err := elastic.Connect(cfg.ElasticURL)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		worker = &workers.SyncWorker{
			DB:            pg,
			ES:            esClient,
			Interval:      cfg.SyncInterval,
			RetryInterval: cfg.DLQRetryInterval,
		}
		deps.Search = elastic.Searcher{Client: esClient}
		deps.Sync = worker
	} else {
		log.Warn("⚠️ ELASTIC_URL not set; search sync disabled")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(deps).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("🧭 Recap API running on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if worker != nil {
		g.Go(func() error { return worker.Run(gctx) })
		g.Go(func() error { return worker.RetryDLQ(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Println("👋 Recap service stopped")
}
