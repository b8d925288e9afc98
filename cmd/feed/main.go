package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"je-feed-v2/internal/cache"
	"je-feed-v2/internal/config"
	"je-feed-v2/internal/handler"
	"je-feed-v2/internal/logger"
	"je-feed-v2/internal/publish"
	"je-feed-v2/internal/reconcile"
	"je-feed-v2/internal/router"
	"je-feed-v2/internal/scraper"
	"je-feed-v2/internal/service"
	"je-feed-v2/internal/store"
)

func main() {
	serve := flag.Bool("serve", false, "keep an HTTP server up after the first run")
	every := flag.Duration("every", 6*time.Hour, "re-run interval in serve mode")
	flag.Parse()

	cfg := config.MustLoad()

	log, err := logger.New(cfg.App.Environment)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting je-feed", "environment", cfg.App.Environment)

	// Hard precondition: a feed without a dealer identity is not a feed.
	if err := cfg.Dealer.Validate(); err != nil {
		log.Fatal("configuration error", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Inventory store backend
	var invStore store.Store
	switch cfg.Store.Type {
	case "sqlite":
		invStore, err = store.NewSQLiteStore(cfg.Store.SQLitePath, log)
		if err != nil {
			log.Fatal("failed to initialize sqlite store", "err", err)
		}
	case "postgres", "postgresql":
		invStore, err = store.NewPostgresStore(ctx, cfg.Store.PostgresDSN(), log)
		if err != nil {
			log.Fatal("failed to initialize postgres store", "err", err)
		}
	case "mysql":
		invStore, err = store.NewMySQLStore(cfg.Store.MySQLDSN(), log)
		if err != nil {
			log.Fatal("failed to initialize mysql store", "err", err)
		}
	default: // file
		invStore = store.NewFileStore(cfg.Store.Path, log)
	}
	defer invStore.Close()
	log.Info("inventory store initialized", "type", cfg.Store.Type)

	// Page cache; Redis degrades to memory when unreachable.
	var pageCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Warn("redis unavailable, using memory page cache", "err", err)
			pageCache = cache.NewMemoryCache()
		} else {
			pageCache = redisCache
			log.Info("redis page cache initialized")
		}
	default:
		pageCache = cache.NewMemoryCache()
	}
	defer pageCache.Close()

	// Optional S3/R2 upload
	var uploader service.Uploader
	if cfg.S3.Enabled() {
		s3Up, err := publish.NewS3Uploader(ctx, cfg.S3, log)
		if err != nil {
			log.Warn("s3 upload disabled", "err", err)
		} else {
			uploader = s3Up
			log.Info("s3 uploader initialized", "bucket", cfg.S3.Bucket)
		}
	}

	source := scraper.New(cfg.Scraper, pageCache, cfg.Cache.TTL, log)
	engine := reconcile.New(invStore, log)
	svc, err := service.NewSyncService(source, engine, uploader, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize sync service", "err", err)
	}

	report, err := svc.Run(ctx)
	if err != nil {
		log.Fatal("sync run failed", "err", err)
	}
	log.Info("run complete",
		"scraped", report.Scraped,
		"inventory", report.Inventory,
		"exported", report.Exported,
		"feed", report.FeedPath,
	)

	if !*serve {
		return
	}

	runner := service.NewRunner(svc, *every, log)
	runner.Start()
	defer runner.Stop()

	mux := router.New(router.Config{
		FeedHandler: handler.NewFeedHandler(svc, invStore),
		Logger:      log,
	})
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
	}
}
