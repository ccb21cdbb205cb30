package migration

import (
	backupdomain "github.com/smallbiznis/flowsight/internal/backup/domain"
	"github.com/smallbiznis/flowsight/internal/config"
	creditusagedomain "github.com/smallbiznis/flowsight/internal/creditusage/domain"
	"github.com/smallbiznis/flowsight/internal/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module bootstraps the schema. Warehouse deployments own their schema (the
// cost analysis view lives warehouse-side), so migrations only run in
// standalone mode.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.IsStandalone() {
			return nil
		}

		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
			log.Info("database migrations applied")
			return nil
		}

		// sqlite and mysql development setups use the model definitions
		// directly
		err := conn.AutoMigrate(
			&telemetry.Event{},
			&creditusagedomain.Record{},
			&backupdomain.Backup{},
			&backupdomain.Schedule{},
		)
		if err != nil {
			return err
		}
		log.Info("database schema synchronized", zap.String("db_type", cfg.DBType))
		return nil
	}),
)
