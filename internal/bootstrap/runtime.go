// Package bootstrap wires the process-level dependencies shared by the
// server and the command line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"travelbuddy/internal/cache"
	"travelbuddy/internal/config"
	"travelbuddy/internal/database"
	"travelbuddy/internal/middleware"
	"travelbuddy/internal/models"
	"travelbuddy/internal/observability"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/seed"
	"travelbuddy/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCatalog loads the subscription plan catalog into an empty table.
	SeedCatalog bool
}

// InitRuntime connects to DB and Redis and optionally runs built-in seeding.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	observability.SetGlobalLogger(middleware.Logger)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := Provision(ctx, cfg, db, opts); err != nil {
		return nil, nil, err
	}
	return db, r, nil
}

// Provision creates the development root admin, the plan catalog and the
// optional demo data on an already connected database.
func Provision(ctx context.Context, cfg *config.Config, db *gorm.DB, opts Options) error {
	if err := ensureDevRootAdmin(ctx, cfg, db); err != nil {
		return fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if opts.SeedCatalog {
		n, err := seed.EnsureSubscriptionPlans(db, cfg.PlanCatalogPath)
		if err != nil {
			return fmt.Errorf("failed to seed subscription plans: %w", err)
		}
		if n > 0 {
			middleware.Logger.InfoContext(ctx, "Subscription plan catalog seeded", slog.Int("plans", n))
		}
	}

	if cfg.SeedDemoData && !isProdLike(cfg.Env) {
		var travelers int64
		if err := db.Model(&models.Traveler{}).Count(&travelers).Error; err != nil {
			return err
		}
		if travelers == 0 {
			if _, err := seed.Seed(ctx, db, seed.Options{
				NumTravelers:     12,
				PlansPerTraveler: 2,
				CompleteRatio:    0.5,
				CatalogPath:      cfg.PlanCatalogPath,
			}); err != nil {
				return fmt.Errorf("failed to seed demo data: %w", err)
			}
		}
	}
	return nil
}

func isProdLike(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

func ensureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@travelbuddy.local"
	}
	if cfg.DevRootPassword == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	accounts := service.NewAccountService(repository.NewStore(db, repository.StoreOptions{}))
	created, err := accounts.EnsureAdmin(ctx, email, cfg.DevRootPassword, models.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if created {
		middleware.Logger.InfoContext(ctx, "Development root admin created", slog.String("email", email))
	}
	return nil
}
