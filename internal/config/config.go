package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	URL       string    `yaml:"url"`
	Email     string    `yaml:"email,omitempty"`
	Token     string    `yaml:"token,omitempty"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
}

// Config is the terminal client configuration.
type Config struct {
	DBPath   string       `yaml:"db_path"`
	LogPath  string       `yaml:"log_path"`
	LogLevel string       `yaml:"log_level"`
	Language string       `yaml:"language"`
	Server   ServerConfig `yaml:"server"`
}

func DefaultConfigPath() string {
	return besideExecutable("config.yml")
}

func DefaultDBPath() string {
	return besideExecutable("folio.db")
}

func DefaultLogPath() string {
	return besideExecutable("folio.log")
}

func besideExecutable(name string) string {
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(exe), name)
}

func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DBPath:   DefaultDBPath(),
		LogPath:  DefaultLogPath(),
		LogLevel: "info",
		Language: "fr",
		Server:   ServerConfig{URL: "http://localhost:8080"},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogPath()
	}
	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.LogPath = expandHome(cfg.LogPath)

	return cfg, nil
}

func expandHome(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// TokenStore keeps the session token in the config file.
type TokenStore struct {
	mu   sync.Mutex
	cfg  *Config
	path string
}

func NewTokenStore(cfg *Config, path string) *TokenStore {
	return &TokenStore{cfg: cfg, path: path}
}

func (s *TokenStore) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.Server.Token == "" {
		return nil, nil
	}
	return &oauth2.Token{
		AccessToken: s.cfg.Server.Token,
		TokenType:   "Bearer",
		Expiry:      s.cfg.Server.ExpiresAt,
	}, nil
}

func (s *TokenStore) SetToken(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok == nil {
		s.cfg.Server.Token = ""
		s.cfg.Server.ExpiresAt = time.Time{}
	} else {
		s.cfg.Server.Token = tok.AccessToken
		s.cfg.Server.ExpiresAt = tok.Expiry
	}
	return s.cfg.Save(s.path)
}
