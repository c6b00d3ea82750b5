package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds the server configuration, loadable from environment variables
// (STOCKROOM_ prefix), flags, or YAML config files.
type Config struct {
	Addr     string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Storage  StorageConfig
	Graceful GracefulConfig
}

// StorageConfig selects and configures the document storage backend.
type StorageConfig struct {
	Driver      string `default:"file" usage:"Storage backend: file, postgres or redis"`
	Dir         string `default:"data" usage:"Directory of the file backend"`
	DatabaseURL string `usage:"PostgreSQL connection URL for the postgres backend" flag:"database-url"`
	RedisAddr   string `default:"localhost:6379" usage:"Redis address for the redis backend" flag:"redis-addr"`
	Document    string `default:"inventory.json" usage:"Default document name for save and load"`
	LoadOnStart bool   `default:"false" usage:"Load the default document at startup" flag:"load-on-start"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOCKROOM",
		Files:     []string{"config.yaml", "/etc/stockroom/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the storage settings required by the selected driver.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Dir == "" {
			return errors.New("file storage requires a directory: set STOCKROOM_STORAGE_DIR")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database URL is required: set STOCKROOM_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("redis address is required: set STOCKROOM_STORAGE_REDIS_ADDR")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Document == "" {
		return errors.New("default document name is empty")
	}
	return nil
}

// applyPlatformDefaults maps the conventional DATABASE_URL and PORT variables
// onto the STOCKROOM_ configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		c.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
