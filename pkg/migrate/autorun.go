package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/pcforge-backend/pkg/config"
	"github.com/angelmondragon/pcforge-backend/pkg/db"
	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
	"github.com/angelmondragon/pcforge-backend/pkg/logger"
)

// MaybeAutoMigrate prepares the schema at startup when the store is database
// backed. SQLite always gets AutoMigrate; Postgres runs the embedded goose
// migrations only in dev with the auto-migrate flag set.
func MaybeAutoMigrate(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil {
		return nil
	}

	switch client.Dialect() {
	case config.StoreDriverSQLite:
		logg.Info(ctx, "running gorm automigrate (sqlite)")
		return client.AutoMigrate(ctx, models.All()...)

	case config.StoreDriverPostgres:
		if !cfg.App.IsDev() || !cfg.Store.AutoMigrate {
			return nil
		}
		sqlDB, err := client.DB().DB()
		if err != nil {
			return fmt.Errorf("extracting sql.DB: %w", err)
		}

		ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": EmbeddedDir})
		logg.Info(ctx, "running goose migrations (dev auto-run)")
		if err := Run(ctx, sqlDB, EmbeddedDir, "up"); err != nil {
			return fmt.Errorf("running goose up: %w", err)
		}
		logg.Info(ctx, "goose migrations completed")
	}
	return nil
}
