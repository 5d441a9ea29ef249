package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

var configEnvVars = []string{
	EnvConfigFile,
	"MEDSHARE_HTTP_ADDR",
	"MEDSHARE_CORS_ORIGINS",
	"MEDSHARE_RATE_LIMIT_RPS",
	"MEDSHARE_RATE_LIMIT_BURST",
	"MEDSHARE_LOG_LEVEL",
	"MEDSHARE_LOG_FORMAT",
	"MEDSHARE_STORAGE_DRIVER",
	"MEDSHARE_DATA_FILE",
	"MEDSHARE_SQLITE_PATH",
	"MEDSHARE_POSTGRES_DSN",
	"MEDSHARE_REDIS_ADDR",
	"MEDSHARE_REDIS_PASSWORD",
	"MEDSHARE_REDIS_DB",
	"MEDSHARE_REDIS_KEY",
	"MEDSHARE_BLOB_DRIVER",
	"MEDSHARE_BLOB_FS_ROOT",
	"MEDSHARE_BLOB_KEY",
	"MEDSHARE_BLOB_S3_BUCKET",
	"MEDSHARE_BLOB_S3_REGION",
	"MEDSHARE_BLOB_S3_ENDPOINT",
	"MEDSHARE_BLOB_S3_PATH_STYLE",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.DataFile != "data.json" {
		t.Fatalf("unexpected storage defaults %+v", cfg.Storage)
	}
}

func TestLoadYAMLThenEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "medshare.yaml")
	yamlDoc := strings.Join([]string{
		"http:",
		"  addr: \":9000\"",
		"  rate_limit_rps: 5",
		"log:",
		"  level: debug",
		"storage:",
		"  driver: sqlite",
		"  sqlite_path: /tmp/from-yaml.db",
		"  redis:",
		"    db: 2",
	}, "\n")
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv(EnvConfigFile, path)
	t.Setenv("MEDSHARE_SQLITE_PATH", "/tmp/from-env.db")
	t.Setenv("MEDSHARE_CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9000" || cfg.HTTP.RateLimitRPS != 5 {
		t.Fatalf("yaml http settings not applied: %+v", cfg.HTTP)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log settings %+v", cfg.Log)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Storage.SQLitePath != "/tmp/from-env.db" {
		t.Fatalf("environment should override yaml, got %s", cfg.Storage.SQLitePath)
	}
	if cfg.Storage.Redis.DB != 2 || cfg.Storage.Redis.Addr != "localhost:6379" {
		t.Fatalf("nested yaml merge lost defaults: %+v", cfg.Storage.Redis)
	}
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(cfg.HTTP.CORSOrigins, want) {
		t.Fatalf("expected origins %v, got %v", want, cfg.HTTP.CORSOrigins)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "MEDSHARE_STORAGE_DRIVER=Memory\nMEDSHARE_LOG_FORMAT=TEXT\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("MEDSHARE_LOG_FORMAT", "json")

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("expected normalized memory driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf(".env must not override the process environment, got %q", cfg.Log.Format)
	}
}

func TestLoadMissingEnvFileIgnored(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing yaml", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "nope.yaml"))
		if _, err := Load(""); err == nil {
			t.Fatal("expected error for missing config file")
		}
	})
	t.Run("bad yaml", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("http: [unclosed"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		t.Setenv(EnvConfigFile, path)
		if _, err := Load(""); err == nil {
			t.Fatal("expected parse error")
		}
	})
	t.Run("bad number", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEDSHARE_REDIS_DB", "two")
		if _, err := Load(""); err == nil {
			t.Fatal("expected decode error")
		}
	})
	t.Run("unknown driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEDSHARE_STORAGE_DRIVER", "floppy")
		if _, err := Load(""); err == nil {
			t.Fatal("expected unknown driver error")
		}
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty addr", func(c *Config) { c.HTTP.Addr = "" }, true},
		{"negative burst", func(c *Config) { c.HTTP.RateLimitBurst = -1 }, true},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }, true},
		{"postgres with dsn", func(c *Config) {
			c.Storage.Driver = "postgres"
			c.Storage.PostgresDSN = "postgres://localhost/medshare"
		}, false},
		{"s3 without bucket", func(c *Config) {
			c.Storage.Driver = "blob"
			c.Storage.Blob.Driver = "s3"
		}, true},
		{"blob fs", func(c *Config) { c.Storage.Driver = "blob" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v got %v", tc.wantErr, err)
			}
		})
	}
}
