// seeddemo populates the database with demo call logs so the metrics
// endpoints have something to chart. It reuses the service ingest path,
// so seeded rows are priced the same way live ones are.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/ncecere/llm_observability/backend/internal/app"
	"github.com/ncecere/llm_observability/backend/internal/config"
	"github.com/ncecere/llm_observability/backend/internal/database"
	"github.com/ncecere/llm_observability/backend/internal/redisclient"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

func main() {
	var (
		email  = flag.String("user", "admin@example.com", "email of the user to seed logs for")
		days   = flag.Int("days", 30, "number of past days to generate data for")
		perDay = flag.Int("per-day", 40, "number of logs to create per day")
	)
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(ctx, cfg.Database); err != nil {
			log.Fatalf("run migrations: %v", err)
		}
	}

	dbPool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer dbPool.Close()

	redisClient := redisclient.New(cfg.Redis)
	defer redisClient.Close()

	container, err := app.NewContainer(ctx, cfg, dbPool, redisClient, logger)
	if err != nil {
		log.Fatalf("build container: %v", err)
	}

	if err := container.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	user, err := container.Store.GetUserByEmail(ctx, strings.ToLower(*email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Fatalf("user %s not found; set OBSERVER_BOOTSTRAP_ADMIN_EMAIL or register first", *email)
		}
		log.Fatalf("load user: %v", err)
	}

	created, err := container.Ingest.Seed(ctx, user.ID, *days, *perDay)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.Printf("seed complete: %d logs across %d days for %s", created, *days, user.Email)
}
