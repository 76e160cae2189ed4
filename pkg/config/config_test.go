package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(t.TempDir())
	return v
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DSN", "file::memory:")

	cfg, err := load(newViper(t))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, "3000", cfg.Server.Addr)
	require.Equal(t, DatabaseMySQL, cfg.Database.Type)
	require.Equal(t, "./storage/reports", cfg.Storage.ReportPath)
	require.Equal(t, "./storage/logs", cfg.Storage.LogPath)
	require.Equal(t, 30, cfg.Storage.RetentionDays)
	require.Equal(t, 24*time.Hour, cfg.Storage.SweepInterval)
	require.Equal(t, 2, cfg.Report.MaxConcurrent)
	require.Equal(t, "1", cfg.Auth.DefaultOwnerID)
	require.Equal(t, ExporterNone, cfg.Otel.Exporter)
	require.Equal(t, 1.0, cfg.Otel.SampleRatio)
	require.Empty(t, cfg.Pyroscope.Addr)
	require.Equal(t, "workshop-reports", cfg.Minio.BucketName)
	require.Equal(t, int64(1), cfg.Snowflake.NodeID)
	require.Equal(t, 30*24*time.Hour, cfg.RetentionAge())
	require.False(t, cfg.IsProduction())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("DATABASE_DSN", "file::memory:")
	t.Setenv("HTTP_SERVER_ADDR", "8080")
	t.Setenv("STORAGE_SWEEP_INTERVAL", "1h")
	t.Setenv("REPORT_MAX_CONCURRENT", "4")
	t.Setenv("APP_ENV", "production")

	cfg, err := load(newViper(t))
	require.NoError(t, err)

	require.Equal(t, DatabaseSQLite, cfg.Database.Type)
	require.Equal(t, "8080", cfg.Server.Addr)
	require.Equal(t, time.Hour, cfg.Storage.SweepInterval)
	require.Equal(t, 4, cfg.Report.MaxConcurrent)
	require.True(t, cfg.IsProduction())
}

func TestLoadLegacyAliases(t *testing.T) {
	t.Setenv("DATABASE_URL", "root:root@tcp(localhost:3306)/workshop")
	t.Setenv("PORT", "4000")
	t.Setenv("REPORT_PATH", "/data/reports")
	t.Setenv("LOG_PATH", "/data/logs")
	t.Setenv("REPORT_RETENTION_DAYS", "7")

	cfg, err := load(newViper(t))
	require.NoError(t, err)

	require.Equal(t, "root:root@tcp(localhost:3306)/workshop", cfg.Database.DSN)
	require.Equal(t, "4000", cfg.Server.Addr)
	require.Equal(t, "/data/reports", cfg.Storage.ReportPath)
	require.Equal(t, "/data/logs", cfg.Storage.LogPath)
	require.Equal(t, 7, cfg.Storage.RetentionDays)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "DATABASE:\n  TYPE: postgres\n  DSN: postgres://localhost/workshop\nSTORAGE:\n  RETENTION_DAYS: 14\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	cfg, err := load(v)
	require.NoError(t, err)
	require.Equal(t, DatabasePostgres, cfg.Database.Type)
	require.Equal(t, "postgres://localhost/workshop", cfg.Database.DSN)
	require.Equal(t, 14, cfg.Storage.RetentionDays)
}

func TestLoadRequiresDSN(t *testing.T) {
	_, err := load(newViper(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_DSN")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Database.Type = DatabaseSQLite
		cfg.Database.DSN = "file::memory:"
		cfg.Storage.RetentionDays = 30
		cfg.Storage.SweepInterval = time.Hour
		cfg.Report.MaxConcurrent = 1
		cfg.Otel.Exporter = ExporterNone
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown database", func(c *Config) { c.Database.Type = "oracle" }, "unsupported database type"},
		{"empty dsn", func(c *Config) { c.Database.DSN = "  " }, "DATABASE_DSN"},
		{"retention below a day", func(c *Config) { c.Storage.RetentionDays = 0 }, "RETENTION_DAYS"},
		{"zero sweep interval", func(c *Config) { c.Storage.SweepInterval = 0 }, "SWEEP_INTERVAL"},
		{"no report workers", func(c *Config) { c.Report.MaxConcurrent = 0 }, "MAX_CONCURRENT"},
		{"tls without cert", func(c *Config) { c.TLS.Enable = true }, "tls enabled"},
		{"minio without bucket", func(c *Config) { c.Minio.Endpoint = "minio:9000" }, "MINIO_BUCKET_NAME"},
		{"snowflake node out of range", func(c *Config) { c.Snowflake.NodeID = 1024 }, "SNOWFLAKE_NODE_ID"},
		{"unknown exporter", func(c *Config) { c.Otel.Exporter = "zipkin" }, "OTEL_EXPORTER"},
		{"sample ratio above one", func(c *Config) { c.Otel.SampleRatio = 1.5 }, "OTEL_SAMPLE_RATIO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
