package task

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"workshop-backend/pkg/config"
)

var Module = fx.Module("task:runner",
	fx.Provide(registerRunner),
)

func registerRunner(lc fx.Lifecycle, cfg *config.Config) *Runner {
	runner := NewRunner(cfg.Report.MaxConcurrent)

	zap.L().Info("[Runner] job runner ready", zap.Int("max_concurrent", cfg.Report.MaxConcurrent))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			zap.L().Info("[Runner] stopping", zap.Int("running", runner.Running()))
			return runner.Stop(ctx)
		},
	})

	return runner
}
