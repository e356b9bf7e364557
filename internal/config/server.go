package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Server is the folio-server configuration. Environment variables override
// the file: PORT, DB_DRIVER, DATABASE_DSN, JWT_SECRET, LOG_LEVEL.
type Server struct {
	Port            int           `yaml:"port"`
	DBDriver        string        `yaml:"db_driver"`
	DatabaseDSN     string        `yaml:"database_dsn"`
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
}

var ErrMissingSecret = errors.New("jwt secret is required (JWT_SECRET)")

func DefaultServer() *Server {
	return &Server{
		Port:            8080,
		DBDriver:        "sqlite3",
		DatabaseDSN:     "folio-server.db",
		TokenTTL:        7 * 24 * time.Hour,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
	}
}

// LoadServer reads path when it exists, then applies env overrides.
func LoadServer(path string) (*Server, error) {
	cfg := DefaultServer()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Server) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v, ok := lookup("DB_DRIVER"); ok && v != "" {
		c.DBDriver = v
	}
	if v, ok := lookup("DATABASE_DSN"); ok && v != "" {
		c.DatabaseDSN = v
	}
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		c.JWTSecret = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate normalizes the driver name and checks required settings.
func (c *Server) Validate() error {
	switch c.DBDriver {
	case "sqlite", "sqlite3":
		c.DBDriver = "sqlite3"
	case "postgres", "postgresql", "pgx":
		c.DBDriver = "pgx"
	default:
		return fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid token_ttl %s", c.TokenTTL)
	}
	return nil
}

func (c *Server) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
