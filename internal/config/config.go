package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Watch captures the settings the session watcher needs.
type Watch struct {
	BackendURL   string
	PollInterval time.Duration
}

const (
	defaultWatchConfigPath = "~/.config/voicestart/config.toml"
	defaultBackendURL      = "http://localhost:8000"
	defaultPollSeconds     = 5
)

// LoadWatch locates and parses the watcher config, falling back to
// defaults when the file is missing.
func LoadWatch(path string) (Watch, error) {
	resolved, err := resolvePath(path, defaultWatchConfigPath)
	if err != nil {
		return Watch{}, err
	}

	cfg := Watch{
		BackendURL:   defaultBackendURL,
		PollInterval: defaultPollSeconds * time.Second,
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Watch{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BackendURL  string `toml:"backend_url"`
		PollSeconds int    `toml:"poll_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Watch{}, fmt.Errorf("parse config %s: %w", resolved, err)
	}

	if url := strings.TrimSpace(raw.BackendURL); url != "" {
		cfg.BackendURL = url
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	return cfg, nil
}

// Gateway captures the proxy daemon's settings, all environment-driven
// so deploys configure it through infra rather than files.
type Gateway struct {
	BackendURL     string
	ServiceKey     string
	AllowedOrigins []string
	Port           string
}

// LoadGateway reads gateway settings from the environment. Outside
// production a .env file is honored when present.
func LoadGateway() (Gateway, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := Gateway{
		BackendURL: strings.TrimSpace(os.Getenv("BACKEND_URL")),
		ServiceKey: strings.TrimSpace(os.Getenv("FRONTEND_API_KEY")),
		Port:       strings.TrimSpace(os.Getenv("PORT")),
	}
	if cfg.BackendURL == "" {
		return Gateway{}, fmt.Errorf("BACKEND_URL is required")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))
	if origins == "" {
		origins = "http://localhost:3000"
	}
	for _, origin := range strings.Split(origins, ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg, nil
}

func resolvePath(path, fallback string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(fallback)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
