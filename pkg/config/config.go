package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for sightline-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Datasource connection configuration
	Datasource DatasourceConfig `yaml:"datasource"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Discovery defaults
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// DatasourceConfig holds the backing database connection settings.
type DatasourceConfig struct {
	// Dialect selects the driver: mysql, postgres, or mssql.
	Dialect  string `yaml:"dialect" env:"DB_DIALECT" env-default:"mysql"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"3306"`
	User     string `yaml:"user" env:"DB_USER" env-default:"root"`
	Password string `yaml:"-" env:"DB_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"DB_DATABASE" env-default:""`
	// MaxQueryLength is the hard cap on user-supplied SQL length.
	MaxQueryLength int `yaml:"max_query_length" env:"DB_MAX_QUERY_LENGTH" env-default:"10000"`
}

// CacheConfig holds analysis cache settings.
type CacheConfig struct {
	// Enabled turns the cache on. When false every read misses and every
	// write is a no-op.
	Enabled bool `yaml:"enabled" env:"CACHE_ENABLED" env-default:"true"`
	// Dir is the base directory for cache entry files.
	Dir string `yaml:"dir" env:"CACHE_DIR" env-default:".sightline-cache"`
	// MaxPayloadBytes bounds the serialized size of a single cache entry.
	MaxPayloadBytes int `yaml:"max_payload_bytes" env:"CACHE_MAX_PAYLOAD_BYTES" env-default:"8388608"`
	// TTLs per operation class, in minutes.
	QueryTTLMinutes          int `yaml:"query_ttl_minutes" env:"CACHE_QUERY_TTL_MINUTES" env-default:"30"`
	TableSchemaTTLMinutes    int `yaml:"table_schema_ttl_minutes" env:"CACHE_TABLE_SCHEMA_TTL_MINUTES" env-default:"60"`
	DatabaseSchemaTTLMinutes int `yaml:"database_schema_ttl_minutes" env:"CACHE_DATABASE_SCHEMA_TTL_MINUTES" env-default:"120"`
	DiscoveryTTLMinutes      int `yaml:"discovery_ttl_minutes" env:"CACHE_DISCOVERY_TTL_MINUTES" env-default:"240"`
}

// QueryTTL returns the TTL for cached query results.
func (c *CacheConfig) QueryTTL() time.Duration {
	return time.Duration(c.QueryTTLMinutes) * time.Minute
}

// TableSchemaTTL returns the TTL for table-scoped schema snapshots.
func (c *CacheConfig) TableSchemaTTL() time.Duration {
	return time.Duration(c.TableSchemaTTLMinutes) * time.Minute
}

// DatabaseSchemaTTL returns the TTL for database-scoped schema snapshots.
func (c *CacheConfig) DatabaseSchemaTTL() time.Duration {
	return time.Duration(c.DatabaseSchemaTTLMinutes) * time.Minute
}

// DiscoveryTTL returns the TTL for discovery reports.
func (c *CacheConfig) DiscoveryTTL() time.Duration {
	return time.Duration(c.DiscoveryTTLMinutes) * time.Minute
}

// DiscoveryConfig holds defaults for the discovery orchestrator.
type DiscoveryConfig struct {
	PageSize        int `yaml:"page_size" env:"DISCOVERY_PAGE_SIZE" env-default:"5"`
	MaxTablesPerDB  int `yaml:"max_tables_per_db" env:"DISCOVERY_MAX_TABLES_PER_DB" env-default:"20"`
	SampleDataLimit int `yaml:"sample_data_limit" env:"DISCOVERY_SAMPLE_DATA_LIMIT" env-default:"5"`
	// TokenThreshold is the estimated-token count above which a report
	// carries size guidance for the caller.
	TokenThreshold int `yaml:"token_threshold" env:"DISCOVERY_TOKEN_THRESHOLD" env-default:"20000"`
}

// Load reads configuration from config.yaml (if present) and environment
// variables, then validates it.
func Load(version string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Version = version

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Datasource.Dialect {
	case "mysql", "postgres", "mssql":
	default:
		return fmt.Errorf("unsupported datasource dialect %q", c.Datasource.Dialect)
	}
	if c.Datasource.MaxQueryLength <= 0 {
		return fmt.Errorf("max_query_length must be positive, got %d", c.Datasource.MaxQueryLength)
	}
	if c.Discovery.PageSize <= 0 {
		return fmt.Errorf("discovery page_size must be positive, got %d", c.Discovery.PageSize)
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		return fmt.Errorf("cache dir must be set when cache is enabled")
	}
	return nil
}
