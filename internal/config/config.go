package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	minSecretKeyLength = 32
	DefaultDigestCron  = "0 6 * * *"
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	Port           string
	DBPath         string
	SecretKey      string
	Location       *time.Location
	LogLevel       string
	Environment    string
	CookieSecure   bool
	DigestCron     string
	MetricsEnabled bool
}

// Load reads a .env file when one exists and then the process environment.
// Variables already set in the environment win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secretKey, err := ResolveSecretKey()
	if err != nil {
		return nil, err
	}
	port, err := ResolvePort()
	if err != nil {
		return nil, err
	}
	location, err := ResolveLocation()
	if err != nil {
		return nil, err
	}
	cookieSecure, err := parseBool("COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}
	metricsEnabled, err := parseBool("METRICS_ENABLED", true)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:           port,
		DBPath:         getEnv("DB_PATH", filepath.Join("data", "sakhi.db")),
		SecretKey:      secretKey,
		Location:       location,
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:    strings.ToLower(getEnv("ENVIRONMENT", "development")),
		CookieSecure:   cookieSecure,
		DigestCron:     getEnv("DIGEST_CRON", DefaultDigestCron),
		MetricsEnabled: metricsEnabled,
	}, nil
}

// LoadForCLI is Load without the secret key requirement, for commands that
// only touch the database.
func LoadForCLI() (*Config, error) {
	_ = godotenv.Load()

	location, err := ResolveLocation()
	if err != nil {
		return nil, err
	}
	return &Config{
		DBPath:      getEnv("DB_PATH", filepath.Join("data", "sakhi.db")),
		Location:    location,
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment: strings.ToLower(getEnv("ENVIRONMENT", "development")),
	}, nil
}

func ResolveSecretKey() (string, error) {
	secretKey := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secretKey == "" {
		return "", errors.New("SECRET_KEY is not set")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secretKey)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secretKey) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secretKey, nil
}

func ResolvePort() (string, error) {
	raw := strings.TrimSpace(getEnv("PORT", "8080"))
	port, err := strconv.Atoi(raw)
	if err != nil {
		return "", fmt.Errorf("invalid PORT %q: %w", raw, err)
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid PORT %q: must be between 1 and 65535", raw)
	}
	return strconv.Itoa(port), nil
}

func ResolveLocation() (*time.Location, error) {
	name := strings.TrimSpace(getEnv("TZ", "UTC"))
	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ %q: %w", name, err)
	}
	return location, nil
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}
