// Package profiling streams continuous profiles to pyroscope when PYROSCOPE_ADDR is set.
package profiling

import (
	"context"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"workshop-backend/pkg/config"
)

var Module = fx.Module("profiling", fx.Invoke(Register))

func NewConfig(c *config.Config) pyroscope.Config {
	return pyroscope.Config{
		ApplicationName: c.AppName,
		ServerAddress:   c.Pyroscope.Addr,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Tags: map[string]string{
			"service_name": c.AppName,
			"env":          c.AppEnv,
		},
	}
}

// Register starts the profiler with the app and stops it on shutdown. No-op without an address.
func Register(lc fx.Lifecycle, c *config.Config) {
	if c.Pyroscope.Addr == "" {
		return
	}

	var profiler *pyroscope.Profiler
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			zap.L().Info("[Profiling] starting pyroscope",
				zap.String("app_name", c.AppName),
				zap.String("pyroscope_addr", c.Pyroscope.Addr),
			)

			p, err := pyroscope.Start(NewConfig(c))
			if err != nil {
				// profiling never blocks startup
				zap.L().Error("[Profiling] failed to start pyroscope", zap.Error(err))
				return nil
			}
			profiler = p
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if profiler == nil {
				return nil
			}
			zap.L().Info("[Profiling] stopping pyroscope")
			return profiler.Stop()
		},
	})
}
