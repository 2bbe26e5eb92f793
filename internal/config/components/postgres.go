package components

import (
	"fmt"

	"yard-tracker/internal/config/shared"
	"yard-tracker/internal/interfaces"
)

type PostgresConfig interface {
	interfaces.Config
	GetDsn() string
}

type PostgresConfigImpl struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
	TimeZone string `json:"timezone"`
}

func NewPostgresConfig() PostgresConfigImpl {
	config := PostgresConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (P *PostgresConfigImpl) Load() {
	P.Host = shared.GetEnv("POSTGRES_HOST")
	P.Port = shared.GetEnvAsInt("POSTGRES_PORT")
	P.User = shared.GetEnv("POSTGRES_USER")
	P.Password = shared.GetEnv("POSTGRES_PASSWORD")
	P.Database = shared.GetEnv("POSTGRES_DB")
	P.SSLMode = shared.GetEnv("POSTGRES_SSL_MODE")
	P.TimeZone = shared.GetEnv("TZ")
}

func (P *PostgresConfigImpl) SetDefaults() {
	if P.Host == "" {
		P.Host = "localhost"
	}
	if P.Port == 0 {
		P.Port = 5432
	}
	if P.User == "" {
		P.User = "postgres"
	}
	if P.Database == "" {
		P.Database = "yard_tracker"
	}
	if P.SSLMode == "" || P.SSLMode == "false" {
		P.SSLMode = "disable"
	}
	if P.TimeZone == "" {
		P.TimeZone = "UTC"
	}
}

func (P *PostgresConfigImpl) Validate() error {
	if P.Host == "" {
		return &shared.ConfigError{Component: "postgres", Field: "host", Message: "is required"}
	}
	if P.Port <= 0 || P.Port > 65535 {
		return &shared.ConfigError{Component: "postgres", Field: "port", Value: P.Port, Message: "must be between 1 and 65535"}
	}
	if P.User == "" {
		return &shared.ConfigError{Component: "postgres", Field: "user", Message: "is required"}
	}
	if P.Database == "" {
		return &shared.ConfigError{Component: "postgres", Field: "database", Message: "is required"}
	}
	switch P.SSLMode {
	case "disable", "require", "verify-ca", "verify-full":
	default:
		return &shared.ConfigError{Component: "postgres", Field: "ssl_mode", Value: P.SSLMode, Message: "must be one of: disable, require, verify-ca, verify-full"}
	}
	return nil
}

func (P *PostgresConfigImpl) GetDsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&TimeZone=%s", P.User, P.Password, P.Host, P.Port, P.Database, P.SSLMode, P.TimeZone)
}

var _ PostgresConfig = (*PostgresConfigImpl)(nil)
