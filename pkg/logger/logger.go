package logger

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"workshop-backend/pkg/config"
	"workshop-backend/pkg/storage"
)

const (
	CombinedLog = "combined.log"
	ErrorLog    = "error.log"
	QueryLog    = "queries.log"
)

var Module = fx.Module("zap",
	fx.Provide(
		New,
		NewQueryLogger,
	),
	fx.Invoke(registerSync),
)

// QueryLogger receives every SQL statement executed through gorm.
type QueryLogger struct {
	*zap.Logger
}

type ConfigParams struct {
	fx.In
	Cfg   *config.Config
	Paths *storage.Paths
}

// New builds the application logger. Console output follows APP_ENV, and every entry is
// also appended as JSON to combined.log, with error and above duplicated into error.log.
func New(p ConfigParams) (*zap.Logger, error) {
	production := p.Cfg != nil && p.Cfg.IsProduction()

	combined, err := openLogFile(p.Paths.LogFile(CombinedLog))
	if err != nil {
		return nil, err
	}
	errorsFile, err := openLogFile(p.Paths.LogFile(ErrorLog))
	if err != nil {
		return nil, err
	}

	consoleLevel := zapcore.DebugLevel
	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	if production {
		consoleLevel = zapcore.InfoLevel
		consoleEncoder = zapcore.NewJSONEncoder(productionEncoderConfig())
	}

	fileEncoder := zapcore.NewJSONEncoder(productionEncoderConfig())

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), consoleLevel),
		zapcore.NewCore(fileEncoder, combined, zapcore.InfoLevel),
		zapcore.NewCore(fileEncoder, errorsFile, zapcore.ErrorLevel),
	)

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if !production {
		opts = append(opts, zap.Development())
	}

	log := zap.New(core, opts...)
	if p.Cfg != nil {
		log = log.With(
			zap.String("env", p.Cfg.AppEnv),
			zap.String("service_name", p.Cfg.AppName),
		)
	}

	zap.ReplaceGlobals(log)

	return log, nil
}

// NewQueryLogger writes SQL traces to queries.log only.
func NewQueryLogger(p ConfigParams) (*QueryLogger, error) {
	file, err := openLogFile(p.Paths.LogFile(QueryLog))
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(productionEncoderConfig()), file, zapcore.DebugLevel)
	return &QueryLogger{Logger: zap.New(core).Named("sql")}, nil
}

func productionEncoderConfig() zapcore.EncoderConfig {
	config := zap.NewProductionEncoderConfig()
	config.TimeKey = "timestamp"
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	config.StacktraceKey = "stacktrace"
	config.LevelKey = "severity"
	config.EncodeLevel = zapcore.CapitalLevelEncoder
	config.CallerKey = "caller"
	config.EncodeCaller = zapcore.ShortCallerEncoder
	return config
}

func openLogFile(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return zapcore.Lock(f), nil
}

func registerSync(lc fx.Lifecycle, log *zap.Logger, queries *QueryLogger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = queries.Sync()
			_ = log.Sync()
			return nil
		},
	})
}
