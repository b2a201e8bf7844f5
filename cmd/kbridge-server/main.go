package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kbridge/internal/bridge"
	"kbridge/internal/broker"
	"kbridge/internal/config"
	"kbridge/internal/httpapi"
	"kbridge/internal/store"
	"kbridge/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/kbridge.yaml"
	if p := os.Getenv("KBRIDGE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logFileName := fmt.Sprintf("/tmp/kbridge-server-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()

	w := io.MultiWriter(os.Stdout, logFile)
	logger := util.NewLogger(w, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	// Select broker backend.
	var brk broker.Broker
	switch cfg.Broker.Name {
	case "alpaca":
		if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
			log.Fatal("alpaca broker selected but credentials are missing")
		}
		brk = broker.NewAlpacaBroker(
			cfg.Alpaca.APIKey, cfg.Alpaca.APISecret,
			cfg.Alpaca.BaseURL, cfg.Alpaca.DataURL,
			cfg.Broker.CashComponents,
		)
	case "simulator":
		brk = broker.NewSimulatorBroker(100 * time.Millisecond)
	default:
		log.Fatalf("unknown broker %q", cfg.Broker.Name)
	}
	logger.Info("broker selected", "name", brk.Name())

	// Optional order journal.
	var journal store.OrderJournal
	if cfg.Storage.JournalPath != "" {
		j, err := store.NewSQLiteJournal(cfg.Storage.JournalPath)
		if err != nil {
			log.Fatalf("opening order journal: %v", err)
		}
		defer j.Close()
		journal = j
		logger.Info("order journal enabled", "path", cfg.Storage.JournalPath)
	}

	// Optional quote archive.
	var archive store.QuoteArchive
	if cfg.Storage.ArchiveDir != "" {
		archive = store.NewParquetArchive(cfg.Storage.ArchiveDir)
		logger.Info("quote archive enabled", "dir", cfg.Storage.ArchiveDir)
	}

	quoteTimeout, err := cfg.Broker.QuoteTimeoutDuration()
	if err != nil {
		log.Fatalf("invalid quote timeout: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b := bridge.New(brk, journal, archive, quoteTimeout, logger)
	b.Start(ctx)

	// Start HTTP server.
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: httpapi.NewServer(b, logger).Handler(),
	}

	go func() {
		logger.Info("bridge server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down bridge server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
