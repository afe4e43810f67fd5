package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"contactsync/internal/legacy"
	"contactsync/internal/platform/config"
	"contactsync/internal/platform/httpserver"
	"contactsync/internal/platform/kafka"
	"contactsync/internal/platform/kafka/consumer"
	"contactsync/internal/platform/logger"
	"contactsync/internal/platform/metrics"
	"contactsync/internal/platform/servicetoken"
	syncconsumer "contactsync/internal/sync/consumer"
	"contactsync/internal/sync/origin"
	"contactsync/internal/sync/reconcile"
	"contactsync/internal/sync/resync"
	"contactsync/internal/sync/telemetry"
	"contactsync/internal/sync/translate"
	"contactsync/internal/target"
	httptransport "contactsync/internal/transport/http"
)

const shutdownTimeout = 15 * time.Second

// main wires dependencies and runs the HTTP server and the event consumer
// until a signal arrives. Business logic lives in the internal/sync packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("contactsync stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("contactsync stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	m := metrics.New()
	tokens := servicetoken.New(cfg.Auth.ClientSecret, cfg.Auth.TokenIssuer, cfg.Auth.TokenAudience, cfg.Auth.ClientID, cfg.Auth.TokenTTL)

	legacyClient, err := legacy.NewHTTPClient(cfg.Legacy.BaseURL, cfg.Legacy.Timeout, tokens)
	if err != nil {
		return fmt.Errorf("legacy client: %w", err)
	}
	targetClient, err := target.NewHTTPClient(cfg.Target.BaseURL, cfg.Target.Timeout, tokens)
	if err != nil {
		return fmt.Errorf("target client: %w", err)
	}

	translator := translate.New()
	classifier := origin.NewClassifier(cfg.Origin.TargetTags)

	reconciler, err := reconcile.New(infra.Mappings, targetClient, translator,
		reconcile.WithLegacyClient(legacyClient),
		reconcile.WithClassifier(classifier),
		reconcile.WithSink(telemetry.NewSink(log, m)),
	)
	if err != nil {
		return fmt.Errorf("reconciler: %w", err)
	}
	resyncer, err := resync.New(legacyClient, targetClient, infra.Mappings, translator,
		resync.WithLogger(log),
		resync.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("resynchroniser: %w", err)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Handler:    httptransport.NewHandler(resyncer, reconciler, infra.Mappings, log),
		Validator:  tokens,
		AdminToken: cfg.Auth.AdminToken,
		Logger:     log,
		Checks:     infra.HealthChecks(),
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	consume := len(cfg.Kafka.Brokers) > 0
	if !consume {
		log.WarnContext(ctx, "no kafka brokers configured, change events will not be consumed")
	}
	if consume && cfg.Kafka.CreateTopic {
		if err := kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.InfoContext(gctx, "starting contactsync", "addr", cfg.Server.Addr)
		return httpserver.Serve(gctx, srv, shutdownTimeout)
	})

	if !consume {
		return g.Wait()
	}

	handlerOpts := []syncconsumer.Option{syncconsumer.WithMetrics(m)}
	if infra.Ledger != nil {
		handlerOpts = append(handlerOpts, syncconsumer.WithLedger(infra.Ledger))
	}
	events, err := consumer.New(consumer.Config{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		GroupID:      cfg.Kafka.GroupID,
		PollMaxBatch: cfg.Kafka.PollMaxBatch,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	}, syncconsumer.NewHandler(reconciler, classifier, log, handlerOpts...), log)
	if err != nil {
		return err
	}
	g.Go(func() error {
		defer events.Close()
		log.InfoContext(gctx, "consuming change events", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)
		return events.Run(gctx)
	})

	return g.Wait()
}
