// Package creds handles bearer-token persistence for the watch client.
// The token lives in ~/.config/voicestart/credentials.toml and is loaded
// once at startup, then passed explicitly into every backend call.
package creds

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Credentials holds the stored bearer token.
type Credentials struct {
	AccessToken string `toml:"access_token"`
}

const defaultCredsPath = "~/.config/voicestart/credentials.toml"

// DefaultPath returns the default credentials file path.
func DefaultPath() string {
	return defaultCredsPath
}

// Load reads stored credentials. A missing or unreadable file degrades
// to empty credentials; the caller decides whether a token is required.
func Load(path string) (Credentials, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Credentials{}, nil
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		return Credentials{}, nil
	}

	var creds Credentials
	if err := toml.Unmarshal(bytes, &creds); err != nil {
		return Credentials{}, nil
	}
	creds.AccessToken = strings.TrimSpace(creds.AccessToken)
	return creds, nil
}

// Save writes credentials, creating directories as needed. The file is
// written 0600 since it holds a live token.
func Save(path string, c Credentials) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create creds dir: %w", err)
	}

	bytes, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal creds: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write creds: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultCredsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
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
