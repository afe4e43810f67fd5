package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"contactsync/internal/mapping/store"
	"contactsync/internal/platform/config"
	"contactsync/internal/platform/postgres"
	"contactsync/internal/platform/redis"
	syncconsumer "contactsync/internal/sync/consumer"
	"contactsync/internal/sync/dedupe"
	"contactsync/internal/sync/ports"
	httptransport "contactsync/internal/transport/http"
)

// infra holds the stateful dependencies. Each backing service is optional;
// without Postgres mappings live in memory, without Redis dedupe is local.
type infra struct {
	db       *sql.DB
	redis    *redis.Client
	Mappings ports.MappingStore
	Ledger   syncconsumer.Ledger
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := store.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		in.db = db
		in.Mappings = store.NewPostgresStore(db)
		log.InfoContext(ctx, "using postgres mapping store")
	} else {
		in.Mappings = store.NewInMemoryStore()
		log.WarnContext(ctx, "DATABASE_URL not set, mappings are kept in memory and lost on restart")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, err
	}
	if rc != nil {
		in.redis = rc
		in.Ledger, err = dedupe.NewRedisLedger(rc.Client, cfg.Redis.DedupeTTL)
	} else {
		in.Ledger, err = dedupe.NewInMemoryLedger(cfg.Redis.DedupeTTL)
	}
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("dedupe ledger: %w", err)
	}
	return in, nil
}

func (in *infra) HealthChecks() map[string]httptransport.HealthCheck {
	checks := map[string]httptransport.HealthCheck{}
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	return checks
}

func (in *infra) Close() {
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}
