package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tradedash/internal/audit"
	"github.com/wonny/tradedash/internal/trades"
	"github.com/wonny/tradedash/pkg/config"
	"github.com/wonny/tradedash/pkg/database"
	"github.com/wonny/tradedash/pkg/logger"
	"github.com/wonny/tradedash/pkg/redis"
)

// app bundles the dependencies shared by store-backed commands
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	repo     *trades.Repository
	analyzer *audit.Analyzer
	location *time.Location
}

// bootstrap loads config and connects to the store and cache.
// Redis failures degrade to an uncached analyzer.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	loc, err := cfg.Analytics.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve timezone: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, metrics cache disabled")
		rdb = redis.Disabled()
	}

	repo := trades.NewRepository(db.Pool)
	cache := redis.NewCache(rdb, "tradedash")

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    rdb,
		repo:     repo,
		analyzer: audit.NewAnalyzer(repo, cache, cfg.Analytics.CacheTTL, log),
		location: loc,
	}, nil
}

// Close releases connections
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
	a.db.Close()
}
