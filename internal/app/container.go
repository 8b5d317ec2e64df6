// Package app assembles the runtime dependency graph.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ncecere/llm_observability/backend/internal/auth"
	"github.com/ncecere/llm_observability/backend/internal/cache"
	"github.com/ncecere/llm_observability/backend/internal/config"
	"github.com/ncecere/llm_observability/backend/internal/ingest"
	"github.com/ncecere/llm_observability/backend/internal/instrument"
	"github.com/ncecere/llm_observability/backend/internal/metrics"
	"github.com/ncecere/llm_observability/backend/internal/observability"
	"github.com/ncecere/llm_observability/backend/internal/rbac"
	"github.com/ncecere/llm_observability/backend/internal/settings"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

// Container aggregates runtime dependencies for handlers and services.
type Container struct {
	Config            *config.Config
	DBPool            *pgxpool.Pool
	Redis             *redis.Client
	Store             *store.Store
	Auth              *auth.Service
	Metrics           *metrics.Service
	Ingest            *ingest.Service
	Settings          *settings.Service
	LLM               *instrument.Client
	MetricsCache      *cache.MetricsCache
	Observability     *observability.Provider
	ReportingLocation *time.Location
	Logger            *slog.Logger
}

// NewContainer builds the dependency container from the provided primitives.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if pool == nil {
		return nil, fmt.Errorf("db pool is required")
	}
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	locName := strings.TrimSpace(cfg.Reporting.Timezone)
	if locName == "" {
		locName = "UTC"
	}
	reportingLoc, err := time.LoadLocation(locName)
	if err != nil {
		return nil, fmt.Errorf("load reporting timezone: %w", err)
	}

	obs, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("observability setup: %w", err)
	}

	st := store.New(pool)

	authSvc, err := auth.NewService(cfg.Auth, st)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	metricsCache := cache.NewMetricsCache(redisClient, cfg.Cache.MetricsTTL)
	ingestSvc := ingest.NewService(st, metricsCache, obs, logger)

	return &Container{
		Config:            cfg,
		DBPool:            pool,
		Redis:             redisClient,
		Store:             st,
		Auth:              authSvc,
		Metrics:           metrics.NewService(st, reportingLoc),
		Ingest:            ingestSvc,
		Settings:          settings.NewService(st),
		LLM:               instrument.New(cfg.LLM, ingestSvc),
		MetricsCache:      metricsCache,
		Observability:     obs,
		ReportingLocation: reportingLoc,
		Logger:            logger,
	}, nil
}

// Bootstrap ensures the configured admin account and model catalog exist.
// It is idempotent and safe to run on every start.
func (c *Container) Bootstrap(ctx context.Context) error {
	boot := c.Config.Bootstrap

	if boot.AdminEmail != "" && boot.AdminPassword != "" {
		email := strings.ToLower(strings.TrimSpace(boot.AdminEmail))
		_, err := c.Store.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			// Already provisioned.
		case errors.Is(err, store.ErrNotFound):
			hash, hashErr := auth.HashPassword(boot.AdminPassword)
			if hashErr != nil {
				return fmt.Errorf("bootstrap admin: %w", hashErr)
			}
			if _, createErr := c.Store.CreateUser(ctx, email, hash, rbac.RoleAdmin.String()); createErr != nil && !errors.Is(createErr, store.ErrDuplicateEmail) {
				return fmt.Errorf("bootstrap admin: %w", createErr)
			}
			c.Logger.Info("bootstrap admin created", "email", email)
		default:
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	for _, m := range boot.Models {
		cost := decimal.NewFromFloat(m.CostPer1KTokens)
		if _, err := c.Store.UpsertModel(ctx, m.Name, m.Provider, cost); err != nil {
			return fmt.Errorf("bootstrap model %s: %w", m.Name, err)
		}
	}

	if _, err := c.Store.GetSettings(ctx); err != nil {
		return fmt.Errorf("bootstrap settings: %w", err)
	}
	return nil
}

// Shutdown releases long-lived resources in dependency order.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	if c.Observability != nil {
		if err := c.Observability.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.DBPool != nil {
		c.DBPool.Close()
	}
	return errors.Join(errs...)
}
