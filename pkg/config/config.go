package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const (
	DatabaseMySQL    = "mysql"
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

type Config struct {
	AppEnv  string `mapstructure:"APP_ENV"`
	AppName string `mapstructure:"APP_NAME"`
	TLS     struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type               string        `mapstructure:"TYPE"`
		DSN                string        `mapstructure:"DSN"`
		AutoMigrate        bool          `mapstructure:"AUTO_MIGRATE"`
		Metrics            bool          `mapstructure:"METRICS"`
		SlowQueryThreshold time.Duration `mapstructure:"SLOW_QUERY_THRESHOLD"`
		ConnectionPool     struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Storage struct {
		BasePath      string        `mapstructure:"BASE_PATH"`
		ReportPath    string        `mapstructure:"REPORT_PATH"`
		LogPath       string        `mapstructure:"LOG_PATH"`
		RetentionDays int           `mapstructure:"RETENTION_DAYS"`
		SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`
	} `mapstructure:"STORAGE"`
	Report struct {
		MaxConcurrent int `mapstructure:"MAX_CONCURRENT"`
	} `mapstructure:"REPORT"`
	Auth struct {
		DefaultOwnerID string `mapstructure:"DEFAULT_OWNER_ID"`
	} `mapstructure:"AUTH"`
	Snowflake struct {
		NodeID int64 `mapstructure:"NODE_ID"`
	} `mapstructure:"SNOWFLAKE"`
	Otel struct {
		Exporter    string  `mapstructure:"EXPORTER"`
		Endpoint    string  `mapstructure:"ENDPOINT"`
		Insecure    bool    `mapstructure:"INSECURE"`
		SampleRatio float64 `mapstructure:"SAMPLE_RATIO"`
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Minio struct {
		Endpoint   string `mapstructure:"ENDPOINT"`
		AccessKey  string `mapstructure:"ACCESS_KEY"`
		SecretKey  string `mapstructure:"SECRET_KEY"`
		BucketName string `mapstructure:"BUCKET_NAME"`
		Secure     bool   `mapstructure:"SECURE"`
	} `mapstructure:"MINIO"`
}

// MaxSnowflakeNodeID is the largest node id that fits the 10 node bits of a snowflake id.
const MaxSnowflakeNodeID = 1<<10 - 1

const (
	ExporterNone = "none"
	ExporterHTTP = "http"
	ExporterGRPC = "grpc"
)

var Module = fx.Module("config", fx.Provide(LoadConfig))

// defaults mirror the values the service historically shipped with.
var defaults = map[string]any{
	"APP_ENV":                                     "development",
	"APP_NAME":                                    "workshop-backend",
	"TLS.ENABLE":                                  false,
	"TLS.CERT_PATH":                               "",
	"TLS.KEY_PATH":                                "",
	"HTTP_SERVER.ADDR":                            "3000",
	"HTTP_SERVER.READ_TIMEOUT":                    15 * time.Second,
	"HTTP_SERVER.WRITE_TIMEOUT":                   5 * time.Minute,
	"HTTP_SERVER.IDLE_TIMEOUT":                    60 * time.Second,
	"DATABASE.TYPE":                               DatabaseMySQL,
	"DATABASE.DSN":                                "",
	"DATABASE.AUTO_MIGRATE":                       false,
	"DATABASE.METRICS":                            false,
	"DATABASE.SLOW_QUERY_THRESHOLD":               200 * time.Millisecond,
	"DATABASE.CONNECTION_POOL.MAX_IDLE_CONN":      5,
	"DATABASE.CONNECTION_POOL.MAX_OPEN_CONNS":     20,
	"DATABASE.CONNECTION_POOL.CONN_MAX_LIFETIME":  30 * time.Minute,
	"DATABASE.CONNECTION_POOL.CONN_MAX_IDLE_TIME": 5 * time.Minute,
	"STORAGE.BASE_PATH":                           "./storage",
	"STORAGE.REPORT_PATH":                         "./storage/reports",
	"STORAGE.LOG_PATH":                            "./storage/logs",
	"STORAGE.RETENTION_DAYS":                      30,
	"STORAGE.SWEEP_INTERVAL":                      24 * time.Hour,
	"REPORT.MAX_CONCURRENT":                       2,
	"AUTH.DEFAULT_OWNER_ID":                       "1",
	"SNOWFLAKE.NODE_ID":                           1,
	"OTEL.EXPORTER":                               ExporterNone,
	"OTEL.ENDPOINT":                               "",
	"OTEL.INSECURE":                               true,
	"OTEL.SAMPLE_RATIO":                           1.0,
	"PYROSCOPE.ADDR":                              "",
	"MINIO.ENDPOINT":                              "",
	"MINIO.ACCESS_KEY":                            "",
	"MINIO.SECRET_KEY":                            "",
	"MINIO.BUCKET_NAME":                           "workshop-reports",
	"MINIO.SECURE":                                false,
}

// legacy env names still honoured by deployments.
var aliases = map[string][]string{
	"HTTP_SERVER.ADDR":       {"PORT"},
	"DATABASE.DSN":           {"DATABASE_URL"},
	"STORAGE.BASE_PATH":      {"STORAGE_PATH"},
	"STORAGE.REPORT_PATH":    {"REPORT_PATH"},
	"STORAGE.LOG_PATH":       {"LOG_PATH"},
	"STORAGE.RETENTION_DAYS": {"REPORT_RETENTION_DAYS"},
}

// LoadConfig reads .env, an optional config.yaml and the environment, in that order of precedence.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, ok := os.LookupEnv("CONFIG_PATH"); ok {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range aliases {
		envs := append([]string{strings.ReplaceAll(key, ".", "_")}, names...)
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case DatabaseMySQL, DatabasePostgres, DatabaseSQLite:
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("DATABASE_DSN (or DATABASE_URL) is required")
	}

	// a sweep must never race a report that is still being written
	if c.Storage.RetentionDays < 1 {
		return fmt.Errorf("STORAGE_RETENTION_DAYS must be at least 1, got %d", c.Storage.RetentionDays)
	}

	if c.Storage.SweepInterval <= 0 {
		return fmt.Errorf("STORAGE_SWEEP_INTERVAL must be positive, got %s", c.Storage.SweepInterval)
	}

	if c.Report.MaxConcurrent < 1 {
		return fmt.Errorf("REPORT_MAX_CONCURRENT must be at least 1, got %d", c.Report.MaxConcurrent)
	}

	if c.TLS.Enable && (c.TLS.CertPath == "" || c.TLS.KeyPath == "") {
		return errors.New("tls enabled but TLS_CERT_PATH or TLS_KEY_PATH not provided")
	}

	switch c.Otel.Exporter {
	case ExporterNone, ExporterHTTP, ExporterGRPC:
	default:
		return fmt.Errorf("unsupported OTEL_EXPORTER %q", c.Otel.Exporter)
	}

	if c.Snowflake.NodeID < 0 || c.Snowflake.NodeID > MaxSnowflakeNodeID {
		return fmt.Errorf("SNOWFLAKE_NODE_ID must be within [0, %d], got %d", MaxSnowflakeNodeID, c.Snowflake.NodeID)
	}

	if c.Minio.Endpoint != "" && c.Minio.BucketName == "" {
		return errors.New("MINIO_BUCKET_NAME is required when MINIO_ENDPOINT is set")
	}

	if c.Otel.SampleRatio < 0 || c.Otel.SampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be within [0, 1], got %v", c.Otel.SampleRatio)
	}

	return nil
}

// RetentionAge converts the configured retention days into a duration.
func (c *Config) RetentionAge() time.Duration {
	return time.Duration(c.Storage.RetentionDays) * 24 * time.Hour
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
