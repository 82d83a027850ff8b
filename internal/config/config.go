package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/config"
)

// Storage drivers.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// StorageConfig selects where the collections are persisted.
type StorageConfig struct {
	Driver     string
	SQLitePath string
}

// AdminConfig holds the administrator account.
type AdminConfig struct {
	Username string
	Password string
}

// ServiceConfig holds all configuration for the adoption service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	Storage     StorageConfig
	DBConfig    config.DatabaseConfig
	JWTConfig   config.JWTConfig
	TokenTTL    time.Duration
	KafkaConfig config.KafkaConfig
	Admin       AdminConfig
}

// Load reads configuration from environment variables prefixed with ADOPTION_.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("ADOPTION")
	if err != nil {
		return nil, err
	}
	v.SetDefault("STORAGE_DRIVER", StorageSQLite)
	v.SetDefault("SQLITE_PATH", "data/adoption.db")
	v.SetDefault("DB_NAME", "adoption_db")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "password")

	driver := strings.ToLower(v.GetString("STORAGE_DRIVER"))
	switch driver {
	case StorageSQLite, StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	return &ServiceConfig{
		Port:   config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv: config.GetAppEnv(v),
		Storage: StorageConfig{
			Driver:     driver,
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:   config.LoadJWTConfig(v),
		TokenTTL:    v.GetDuration("TOKEN_TTL"),
		KafkaConfig: config.LoadKafkaConfig(v),
		Admin: AdminConfig{
			Username: v.GetString("ADMIN_USERNAME"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
	}, nil
}
