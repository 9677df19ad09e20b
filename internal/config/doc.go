// Package config loads the settings for both binaries.
//
// The watcher reads a small TOML file at ~/.config/voicestart/config.toml
// (backend URL and poll cadence), with sensible defaults when the file
// is absent. The gateway is configured purely through environment
// variables (BACKEND_URL, FRONTEND_API_KEY, ALLOWED_ORIGINS, PORT)
// with a .env file honored outside production so local development
// needs no exported shell state.
package config
