package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xnapps/purchase-tracking/pkg/config"
	"github.com/xnapps/purchase-tracking/pkg/db"
	"github.com/xnapps/purchase-tracking/pkg/db/models"
	"github.com/xnapps/purchase-tracking/pkg/logger"
)

// DefaultLineStatuses is the catalogue seeded into fresh databases.
var DefaultLineStatuses = []models.LineStatus{
	{Code: "0", Name: "Pending"},
	{Code: "1", Name: "Finished"},
	{Code: "2", Name: "On hold"},
}

// MaybeRunDev migrates the schema automatically when the app runs in dev mode with the
// feature flag enabled, or whenever the store is sqlite.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg.DB.IsSQLite() {
		ctx = logg.WithField(ctx, "driver", cfg.DB.Driver)
		logg.Info(ctx, "bootstrapping sqlite schema from models")
		if err := Bootstrap(ctx, client.DB()); err != nil {
			return fmt.Errorf("bootstrapping sqlite schema: %w", err)
		}
		return nil
	}

	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}

// Bootstrap creates the schema from the gorm models and seeds the line status catalogue.
// It is idempotent.
func Bootstrap(ctx context.Context, conn *gorm.DB) error {
	tx := conn.WithContext(ctx)
	if err := tx.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	statuses := make([]models.LineStatus, len(DefaultLineStatuses))
	copy(statuses, DefaultLineStatuses)
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&statuses).Error; err != nil {
		return fmt.Errorf("seed line statuses: %w", err)
	}
	return nil
}
