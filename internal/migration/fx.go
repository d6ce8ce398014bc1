package migration

import (
	apiconfigdomain "github.com/opendrive/drivevalue/internal/apiconfig/domain"
	catalogdomain "github.com/opendrive/drivevalue/internal/catalog/domain"
	"github.com/opendrive/drivevalue/internal/config"
	valuationdomain "github.com/opendrive/drivevalue/internal/valuation/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// mysql/sqlite deployments rely on gorm schema sync
		return conn.AutoMigrate(
			&apiconfigdomain.Configuration{},
			&catalogdomain.CacheEntry{},
			&valuationdomain.ValuationLog{},
		)
	}),
)
