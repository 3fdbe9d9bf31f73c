package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apihttp "pairbook/api/http"
	"pairbook/config"
	"pairbook/custody"
	"pairbook/domain/book"
	"pairbook/domain/registry"
	"pairbook/infra/outbox"
	"pairbook/infra/sequence"
	"pairbook/infra/wal"
	"pairbook/jobs/broadcaster"
	"pairbook/metrics"
	"pairbook/service"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	// ---------------- Journal ----------------

	journal, err := wal.Open(wal.Config{
		Dir:         cfg.Journal.Dir,
		SegmentSize: cfg.Journal.SegmentSize,
	})
	if err != nil {
		logger.Fatal("journal init failed", zap.Error(err))
	}
	defer func() { _ = journal.Close() }()

	// ---------------- Outbox ----------------

	ob, err := outbox.Open(cfg.Outbox.Dir)
	if err != nil {
		logger.Fatal("outbox init failed", zap.Error(err))
	}
	defer func() { _ = ob.Close() }()

	// ---------------- Domain ----------------

	seq := sequence.New(0)
	reg := registry.New(seq.Next)

	if err := service.Replay(cfg.Journal.Dir, reg, seq, logger); err != nil {
		logger.Fatal("journal replay failed", zap.Error(err))
	}

	// ---------------- Custody ----------------

	ledger := custody.NewLedger()
	for _, s := range cfg.Custody.Seed {
		ledger.Mint(custody.AssetID(s.Asset), book.ParticipantID(s.Participant), s.Balance)
		ledger.Approve(custody.AssetID(s.Asset), book.ParticipantID(s.Participant), s.Allowance)
	}

	// ---------------- Service ----------------

	engine := service.NewEngine(reg, ledger, seq, journal, ob, logger)

	// ---------------- Background jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.Kafka.Brokers) > 0 {
		interval := time.Duration(cfg.Kafka.IntervalMS) * time.Millisecond
		bc, err := broadcaster.New(ob, cfg.Kafka.Brokers, cfg.Kafka.Topic, interval, logger)
		if err != nil {
			logger.Fatal("broadcaster init failed", zap.Error(err))
		}
		defer func() { _ = bc.Close() }()
		go bc.Run(ctx)
	} else {
		logger.Warn("no kafka brokers configured, notifications stay queued in the outbox")
	}

	// ---------------- HTTP ----------------

	handler := apihttp.NewHandler(engine, logger)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: apihttp.NewRouter(handler),
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server exited", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
