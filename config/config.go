package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration, sourced from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DBHost     string
	DBPort     string
	DBUsername string
	DBPassword string
	DBName     string
	// DBCACert is the PEM-encoded root certificate for the database TLS
	// connection. Production supplies it through DB_CA_CERT; elsewhere it is
	// read from DBCACertFile. Empty means the connection is not wrapped in TLS.
	DBCACert     string
	DBCACertFile string

	SpotifyClientID     string
	SpotifyClientSecret string
}

const (
	defaultPort        = "3000"
	defaultDBPort      = "3306"
	defaultEnvironment = "development"
	defaultLogLevel    = "info"
	defaultCACertFile  = "ca-certificate.crt"
)

// Load reads configuration from environment variables, honoring a local .env
// file when one is present. Missing values are reported by Validate, not here.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", defaultPort),
		Environment: getEnv("ENVIRONMENT", defaultEnvironment),
		LogLevel:    getEnv("LOG_LEVEL", defaultLogLevel),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", defaultDBPort),
		DBUsername: os.Getenv("DB_USERNAME"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
	}

	if cfg.IsProduction() {
		cfg.DBCACert = os.Getenv("DB_CA_CERT")
	} else {
		cfg.DBCACertFile = getEnv("DB_CA_CERT_FILE", defaultCACertFile)
		if data, err := os.ReadFile(cfg.DBCACertFile); err == nil {
			cfg.DBCACert = string(data)
		}
	}

	return cfg
}

// Validate reports every missing or malformed setting at once so a broken
// deployment fails with one actionable message.
func (c *Config) Validate() error {
	var problems []string

	if _, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("PORT must be a number, got %q", c.Port))
	}
	if _, err := strconv.Atoi(c.DBPort); err != nil {
		problems = append(problems, fmt.Sprintf("DB_PORT must be a number, got %q", c.DBPort))
	}
	required := []struct {
		env string
		val string
	}{
		{"DB_HOST", c.DBHost},
		{"DB_USERNAME", c.DBUsername},
		{"DB_PASSWORD", c.DBPassword},
		{"DB_NAME", c.DBName},
		{"SPOTIFY_CLIENT_ID", c.SpotifyClientID},
		{"SPOTIFY_CLIENT_SECRET", c.SpotifyClientSecret},
	}
	for _, r := range required {
		if r.val == "" {
			problems = append(problems, r.env+" must be set")
		}
	}
	if c.IsProduction() && c.DBCACert == "" {
		problems = append(problems, "DB_CA_CERT must be set in production")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
