package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"BRVMSentinel/internal/api"
	"BRVMSentinel/internal/cache"
	"BRVMSentinel/internal/collector"
	"BRVMSentinel/internal/config"
	"BRVMSentinel/internal/logger"
	"BRVMSentinel/internal/notifier"
	"BRVMSentinel/internal/recorder"
	"BRVMSentinel/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Pretty); err != nil {
		log.Fatal().Err(err).Msg("setup logger")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Msg("BRVM Sentinel starting")

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.Supabase.URL != "" {
		fetcher = collector.NewSupabaseFetcher(collector.SupabaseConfig{
			URL:               cfg.Supabase.URL,
			APIKey:            cfg.Supabase.APIKey,
			PricesTable:       cfg.Supabase.PricesTable,
			FundamentalsTable: cfg.Supabase.FundamentalsTable,
			SymbolColumn:      cfg.Supabase.SymbolColumn,
			DateColumn:        cfg.Supabase.DateColumn,
			ReportDateColumn:  cfg.Supabase.ReportDateColumn,
			Proxy:             cfg.Proxy,
		})
	} else {
		fetcher = collector.NewRemoteAPIFetcher(cfg.RemoteAPI.BaseURL, cfg.RemoteAPI.APIKey, cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")

	col := collector.NewCollector(fetcher, cfg.HistoryDays,
		cache.New[collector.Dataset](cfg.Cache.MaxEntries, cfg.Cache.TTL))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, col, sender, rec, cfg.Watchlist)
	scanCron := cfg.Schedule.ScanCron
	if len(cfg.Watchlist) == 0 {
		log.Warn().Msg("empty watchlist, scheduled scans disabled")
		scanCron = ""
	}
	if err := sched.RegisterAll(scanCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	srv, err := api.NewServer(api.Config{Addr: cfg.Server.Addr, Collector: col, Recorder: rec})
	if err != nil {
		log.Fatal().Err(err).Msg("init http api")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(gctx, sched.HandleCommand)
			return nil
		})
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" && len(cfg.Watchlist) > 0 {
		log.Info().Msg("RUN_ON_START enabled, scanning watchlist now")
		go func() {
			if _, err := sched.RunScanNow(gctx); err != nil {
				log.Warn().Err(err).Msg("startup scan skipped")
			}
		}()
	}

	log.Info().Strs("watchlist", cfg.Watchlist).Msg("BRVM Sentinel is running. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("service stopped with error")
	}
	log.Info().Msg("BRVM Sentinel stopped")
}
