package report

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop-backend/pkg/config"
	"workshop-backend/pkg/httpapi"
)

var Module = fx.Module("report",
	fx.Provide(
		NewJobStore,
		NewService,
		NewHandler,
		httpapi.AsRoutes(func(h *Handler) *Handler { return h }),
	),
	fx.Invoke(Migrate),
)

// Migrate creates the csv_jobs table when DATABASE_AUTO_MIGRATE is on.
func Migrate(cfg *config.Config, db *gorm.DB) error {
	if !cfg.Database.AutoMigrate {
		return nil
	}
	if err := db.AutoMigrate(&ReportJob{}); err != nil {
		zap.L().Error("[Report] failed to migrate csv_jobs", zap.Error(err))
		return err
	}
	zap.L().Info("[Report] csv_jobs migrated")
	return nil
}
