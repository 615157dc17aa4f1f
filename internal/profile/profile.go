package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where cinematec stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the server
	Version string

	// Upstream API configuration
	TraktAPIKey  string // CINEMATEC_TRAKT_API_KEY (required)
	TraktBaseURL string // CINEMATEC_TRAKT_BASE_URL (default: https://api.trakt.tv)
	TMDBAPIKey   string // CINEMATEC_TMDB_API_KEY (optional, posters disabled without it)
	TMDBBaseURL  string // CINEMATEC_TMDB_BASE_URL (default: https://api.themoviedb.org/3)

	// AI configuration for synopsis/insight generation
	AIEnabled bool   // CINEMATEC_AI_ENABLED
	AIAPIKey  string // CINEMATEC_AI_API_KEY
	AIBaseURL string // CINEMATEC_AI_BASE_URL (default: https://api.openai.com/v1)
	AIModel   string // CINEMATEC_AI_MODEL (default: gpt-4o-mini)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from CINEMATEC_* environment variables.
func (p *Profile) FromEnv() {
	p.TraktAPIKey = getEnvOrDefault("CINEMATEC_TRAKT_API_KEY", p.TraktAPIKey)
	p.TraktBaseURL = getEnvOrDefault("CINEMATEC_TRAKT_BASE_URL", "https://api.trakt.tv")
	p.TMDBAPIKey = getEnvOrDefault("CINEMATEC_TMDB_API_KEY", p.TMDBAPIKey)
	p.TMDBBaseURL = getEnvOrDefault("CINEMATEC_TMDB_BASE_URL", "https://api.themoviedb.org/3")

	p.AIEnabled = getEnvOrDefault("CINEMATEC_AI_ENABLED", "") == "true" || p.AIEnabled
	p.AIAPIKey = getEnvOrDefault("CINEMATEC_AI_API_KEY", p.AIAPIKey)
	p.AIBaseURL = getEnvOrDefault("CINEMATEC_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIModel = getEnvOrDefault("CINEMATEC_AI_MODEL", "gpt-4o-mini")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/cinematec"
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("cinematec_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.TraktAPIKey == "" {
		return errors.New("CINEMATEC_TRAKT_API_KEY is required")
	}
	if p.TMDBAPIKey == "" {
		slog.Warn("TMDB API key not provided, poster images will not be available")
	}

	return nil
}
