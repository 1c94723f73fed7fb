package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tablemate-app/tablemate/internal/config"
)

var DB *pgxpool.Pool

// ConnectDB establishes the shared pgx pool. The engine composes many small
// read/write operations on this pool rather than one long transaction, so
// nothing here holds schema-level locks for a run's duration.
func ConnectDB(cfg *config.Config) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PGHost,
		cfg.PGPort,
		cfg.PGDatabase,
	)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatalf("unable to parse pgx config: %v", err)
	}

	DB, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("unable to create pgx pool: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := DB.Ping(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	log.Printf("Connected to database %s at %s", cfg.PGDatabase, cfg.PGHost)
}
