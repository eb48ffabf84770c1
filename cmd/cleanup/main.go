// Removes revocation-list entries whose tokens have expired on their own.
// Intended to run from cron; the server also purges hourly.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/upsight-edu/upsight/internal/config"
	"github.com/upsight-edu/upsight/internal/store/postgres"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	removed, err := postgres.NewRevocationRepository(db).DeleteExpired(ctx)
	if err != nil {
		log.Fatalf("Failed to purge expired revocations: %v", err)
	}

	fmt.Printf("Removed %d expired revocation entries\n", removed)
}
