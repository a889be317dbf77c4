package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var defaults = map[string]any{
	"app_port":   "8080",
	"log_level":  "info",
	"log_format": "json",

	"db_driver":    "mysql",
	"mysql_host":   "mysql",
	"mysql_port":   "3306",
	"mysql_db":     "backoffice",
	"mysql_user":   "backoffice",
	"mysql_pass":   "backoffice",
	"postgres_dsn": "",
	"sqlite_path":  "backoffice.db",

	"redis_addr":     "redis:6379",
	"redis_password": "",
	"redis_db":       0,

	"idempotency_ttl_seconds": 300,
	"sync_lock_ttl_seconds":   600,

	"mongo_uri":      "",
	"mongo_database": "p2p",

	"kafka_brokers": "",
	"kafka_topic":   "backoffice.disbursements",

	"remote_api_url":     "http://192.168.1.6:3000",
	"remote_export_auth": "",
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	loadEnvFile()
	return LoadFrom(viper.New())
}

// LoadFrom unmarshals from v after registering defaults, so every key is
// also reachable through its upper-cased environment variable.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
