// Package config reads runtime settings from the environment.
//
// An optional .env file in the working directory supplies values for
// variables that are unset or empty in the process environment. Unset variables fall back
// to defaults, but a variable that is set to something unparseable is an
// error rather than a silent fallback.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const minSecretLength = 16

type Config struct {
	Port     int
	DBDriver string // "sqlite" or "postgres"
	DBDSN    string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int

	LogLevel slog.Level
}

// Load reads .env (if present) and the environment. The file is parsed, not
// exported, so the process environment is left untouched.
func Load() (Config, error) {
	file, err := godotenv.Read()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading .env: %w", err)
	}

	return FromEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	})
}

// FromEnv builds a Config from a lookup function shaped like os.LookupEnv.
// Every problem is reported, joined into one error.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var errs []error
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		DBDriver:  get("DB_DRIVER", "sqlite"),
		DBDSN:     get("DB_DSN", "data/blog.db"),
		JWTSecret: get("JWT_SECRET", ""),
	}

	port, err := strconv.Atoi(get("PORT", "8080"))
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %q is not a valid port", get("PORT", "")))
	}
	cfg.Port = port

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		errs = append(errs, fmt.Errorf("DB_DRIVER: %q must be sqlite or postgres", cfg.DBDriver))
	}

	switch {
	case cfg.JWTSecret == "":
		errs = append(errs, errors.New("JWT_SECRET: required"))
	case len(cfg.JWTSecret) < minSecretLength:
		errs = append(errs, fmt.Errorf("JWT_SECRET: must be at least %d characters", minSecretLength))
	}

	cfg.AccessTokenTTL, err = parsePositiveDuration(get("ACCESS_TOKEN_TTL", "15m"))
	if err != nil {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_TTL: %w", err))
	}
	cfg.RefreshTokenTTL, err = parsePositiveDuration(get("REFRESH_TOKEN_TTL", "168h"))
	if err != nil {
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_TTL: %w", err))
	}

	cfg.BcryptCost, err = strconv.Atoi(get("BCRYPT_COST", "12"))
	if err != nil || cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST: must be an integer in [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(get("LOG_LEVEL", "info")))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("%q must be positive", s)
	}
	return d, nil
}
