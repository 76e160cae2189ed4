package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"workshop-backend/pkg/config"
	"workshop-backend/pkg/db"
	"workshop-backend/pkg/gen"
	"workshop-backend/pkg/health"
	"workshop-backend/pkg/httpapi"
	"workshop-backend/pkg/logger"
	"workshop-backend/pkg/minio"
	"workshop-backend/pkg/otelcol"
	"workshop-backend/pkg/profiling"
	"workshop-backend/pkg/server"
	"workshop-backend/pkg/storage"
	"workshop-backend/pkg/task"
	"workshop-backend/services/catalog"
	"workshop-backend/services/report"
)

func main() {
	opts := []fx.Option{
		config.Module,
		storage.Module,
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		gen.Module,
		task.Module,
		minio.Module,
		health.Module,
		httpapi.Module,
		catalog.Module,
		report.Module,
		server.ProvideHTTPServer,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	if cfg.IsProduction() {
		return fxevent.NopLogger
	}
	return &fxevent.ZapLogger{Logger: logger.Named("fx")}
})
