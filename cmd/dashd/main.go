package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockdash/internal/cache"
	"stockdash/internal/config"
	"stockdash/internal/dashboard"
	"stockdash/internal/market"
	"stockdash/internal/model"
	"stockdash/internal/recorder"
	"stockdash/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] stockdash starting...")

	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init provider
	var provider market.Provider
	if cfg.DataSource.UseMock {
		provider = market.NewSeededMockProvider(cfg.Dashboard.Catalog)
	} else {
		provider = market.NewYahooProvider(cfg.DataSource.Proxy, time.Duration(cfg.DataSource.TimeoutSec)*time.Second)
	}
	log.Printf("[INFO] data source: %s", provider.Name())

	// Init result cache
	resultCache := cache.New(time.Duration(cfg.Cache.TTLSec) * time.Second)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	fetcher := market.NewFetcher(provider, resultCache, rec)

	// Init scheduler for cache housekeeping
	sched := scheduler.New(resultCache)
	if err := sched.RegisterSweep(cfg.Cache.SweepCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Init dashboard server
	defaultPeriod, _ := model.ParsePeriod(cfg.Dashboard.DefaultPeriod)
	srvHandler, err := dashboard.NewServer(fetcher, dashboard.Options{
		Title:          cfg.Dashboard.Title,
		CurrencySymbol: cfg.Dashboard.CurrencySymbol,
		Catalog:        cfg.Dashboard.Catalog,
		DefaultSymbols: cfg.Dashboard.DefaultSymbols,
		DefaultPeriod:  defaultPeriod,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
	})
	if err != nil {
		log.Fatalf("[FATAL] init dashboard: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srvHandler.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.RequestTimeoutSec+5) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("[INFO] server listening on %s", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[FATAL] server: %v", err)
		}
	}()

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Println("[INFO] stockdash stopped")
}
