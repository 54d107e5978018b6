package migration

import (
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/seed"
	"github.com/smallbiznis/crm/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		dbCfg := db.FromConfig(cfg)
		if dbCfg.Type == "postgres" {
			if err := RunMigrations(db.PostgresDSN(dbCfg)); err != nil {
				return err
			}
		} else {
			log.Info("auto migrating schema", zap.String("db_type", dbCfg.Type))
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}

		if cfg.Bootstrap.EnsureDefaultCompany {
			return seed.EnsureDefaultCompany(conn, seed.Admin{
				Email:    cfg.Bootstrap.AdminEmail,
				Password: cfg.Bootstrap.AdminPassword,
			})
		}
		return nil
	}),
)
