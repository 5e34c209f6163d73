package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Limits    LimitsConfig    `mapstructure:"limits"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`
	WriteTimeout   int `mapstructure:"write_timeout"`
	RequestTimeout int `mapstructure:"request_timeout"`
	RateLimit      int `mapstructure:"rate_limit"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig selects the place repository backend.
type StorageConfig struct {
	Driver     string `mapstructure:"driver"` // postgres | sqlite
	SQLitePath string `mapstructure:"sqlite_path"`

	// SlowQueryMS is the sqlite slow statement threshold in milliseconds.
	SlowQueryMS int `mapstructure:"slow_query_ms"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`

	// RefreshCron schedules DatasetRefreshWorkflow; empty disables the schedule.
	RefreshCron string `mapstructure:"refresh_cron"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// DatasetConfig locates the place dataset. When S3Bucket is set the object
// S3Key is read, otherwise Dir is scanned for the known file names.
type DatasetConfig struct {
	Dir      string `mapstructure:"dir"`
	S3Bucket string `mapstructure:"s3_bucket"`
	S3Key    string `mapstructure:"s3_key"`
	S3Region string `mapstructure:"s3_region"`

	// ImportOnEmpty makes the API import the dataset when storage has no places.
	ImportOnEmpty bool `mapstructure:"import_on_empty"`
}

// LimitsConfig caps result sizes served to clients.
type LimitsConfig struct {
	MaxResults int `mapstructure:"max_results"`
	MaxMarkers int `mapstructure:"max_markers"`
	CacheTTL   int `mapstructure:"cache_ttl"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.request_timeout", 5)
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("storage.sqlite_path", "hazardgrid.db")
	v.SetDefault("storage.slow_query_ms", 500)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "hazardgrid")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "hazardgrid")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "dataset-refresh")
	v.SetDefault("temporal.refresh_cron", "")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("dataset.dir", "./data")
	v.SetDefault("dataset.s3_region", "eu-west-1")
	v.SetDefault("dataset.import_on_empty", true)
	v.SetDefault("limits.max_results", 200)
	v.SetDefault("limits.max_markers", 200)
	v.SetDefault("limits.cache_ttl", 60)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: HAZARDGRID_DATABASE_HOST → database.host
	v.SetEnvPrefix("HAZARDGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}

	switch c.Storage.Driver {
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			errs = append(errs, "storage.sqlite_path is required for the sqlite driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.driver must be postgres or sqlite, got %q", c.Storage.Driver))
	}

	if c.Dataset.Dir == "" && c.Dataset.S3Bucket == "" {
		errs = append(errs, "dataset.dir or dataset.s3_bucket is required")
	}
	if c.Dataset.S3Bucket != "" && c.Dataset.S3Key == "" {
		errs = append(errs, "dataset.s3_key is required when dataset.s3_bucket is set")
	}

	if c.Limits.MaxResults <= 0 {
		errs = append(errs, "limits.max_results must be positive")
	}
	if c.Limits.MaxMarkers <= 0 {
		errs = append(errs, "limits.max_markers must be positive")
	}
	if c.Limits.CacheTTL < 0 {
		errs = append(errs, "limits.cache_ttl must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
