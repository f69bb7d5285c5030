package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPPLANNER_BACK-END/internal/config"
)

// Connect opens a pool and pings it. The simple protocol is required when
// connecting through PgBouncer.
func Connect(ctx context.Context, cfg *config.Config, appName string) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pcfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pcfg.ConnConfig.RuntimeParams["application_name"] = appName
	pcfg.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.Database.QueryTimeout.Milliseconds())
	pcfg.ConnConfig.RuntimeParams["timezone"] = "UTC"
	pcfg.MaxConns = cfg.Database.MaxConns
	pcfg.MinConns = cfg.Database.MinConns
	pcfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}
