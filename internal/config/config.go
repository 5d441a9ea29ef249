// Package config assembles the server configuration from built-in defaults,
// an optional YAML file, an optional .env file and MEDSHARE_* environment
// variables, in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the variable pointing at the YAML config file.
const EnvConfigFile = "MEDSHARE_CONFIG"

// Config is the complete server configuration.
type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Log     Log     `yaml:"log"`
	Storage Storage `yaml:"storage"`
}

// HTTP configures the API listener.
type HTTP struct {
	Addr           string   `yaml:"addr" env:"MEDSHARE_HTTP_ADDR"`
	CORSOrigins    []string `yaml:"cors_origins" env:"MEDSHARE_CORS_ORIGINS"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" env:"MEDSHARE_RATE_LIMIT_RPS"`
	RateLimitBurst int      `yaml:"rate_limit_burst" env:"MEDSHARE_RATE_LIMIT_BURST"`
}

// Log configures the structured logger.
type Log struct {
	Level  string `yaml:"level" env:"MEDSHARE_LOG_LEVEL"`
	Format string `yaml:"format" env:"MEDSHARE_LOG_FORMAT"` // json|text
}

// Storage selects the persistence backend.
type Storage struct {
	Driver      string `yaml:"driver" env:"MEDSHARE_STORAGE_DRIVER"` // file|memory|sqlite|postgres|redis|blob
	DataFile    string `yaml:"data_file" env:"MEDSHARE_DATA_FILE"`
	SQLitePath  string `yaml:"sqlite_path" env:"MEDSHARE_SQLITE_PATH"`
	PostgresDSN string `yaml:"postgres_dsn" env:"MEDSHARE_POSTGRES_DSN"`
	Redis       Redis  `yaml:"redis"`
	Blob        Blob   `yaml:"blob"`
}

// Redis configures the redis backend.
type Redis struct {
	Addr     string `yaml:"addr" env:"MEDSHARE_REDIS_ADDR"`
	Password string `yaml:"password" env:"MEDSHARE_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"MEDSHARE_REDIS_DB"`
	Key      string `yaml:"key" env:"MEDSHARE_REDIS_KEY"`
}

// Blob configures the object store backend.
type Blob struct {
	Driver string `yaml:"driver" env:"MEDSHARE_BLOB_DRIVER"` // fs|s3|memory
	FSRoot string `yaml:"fs_root" env:"MEDSHARE_BLOB_FS_ROOT"`
	Key    string `yaml:"key" env:"MEDSHARE_BLOB_KEY"`
	S3     S3     `yaml:"s3"`
}

// S3 configures the S3 blob driver. Credentials come from the default AWS chain.
type S3 struct {
	Bucket    string `yaml:"bucket" env:"MEDSHARE_BLOB_S3_BUCKET"`
	Region    string `yaml:"region" env:"MEDSHARE_BLOB_S3_REGION"`
	Endpoint  string `yaml:"endpoint" env:"MEDSHARE_BLOB_S3_ENDPOINT"`
	PathStyle bool   `yaml:"path_style" env:"MEDSHARE_BLOB_S3_PATH_STYLE"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		HTTP: HTTP{
			Addr:           ":8000",
			CORSOrigins:    []string{"*"},
			RateLimitBurst: 20,
		},
		Log: Log{Level: "info", Format: "json"},
		Storage: Storage{
			Driver:     "file",
			DataFile:   "data.json",
			SQLitePath: "medshare.db",
			Redis:      Redis{Addr: "localhost:6379", Key: "medshare:document"},
			Blob:       Blob{Driver: "fs", FSRoot: "./blobdata", Key: "medshare/data.json"},
		},
	}
}

// Load builds the configuration. envFile, when non-empty and present, is
// loaded into the process environment first without overriding variables
// that are already set.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Storage.Blob.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Blob.Driver))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	origins := c.HTTP.CORSOrigins[:0]
	for _, o := range c.HTTP.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.HTTP.CORSOrigins = origins
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http addr is required")
	}
	if c.HTTP.RateLimitRPS < 0 || c.HTTP.RateLimitBurst < 0 {
		return errors.New("rate limit must not be negative")
	}
	switch c.Storage.Driver {
	case "file", "memory", "sqlite", "redis", "blob":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return errors.New("postgres storage requires a dsn")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "blob" && c.Storage.Blob.Driver == "s3" && c.Storage.Blob.S3.Bucket == "" {
		return errors.New("s3 blob storage requires a bucket")
	}
	return nil
}
