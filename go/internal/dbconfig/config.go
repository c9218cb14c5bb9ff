package dbconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
)

const (
	EnvURL             = "DB_URL"
	EnvAnonKey         = "DB_ANON_KEY"
	EnvServiceRoleKey  = "DB_SERVICE_ROLE_KEY"
	EnvServiceRoleUser = "DB_SERVICE_ROLE_USER"

	defaultServiceRoleUser = "service_role"
)

// ErrMissingConfig is returned when a required store setting is absent.
var ErrMissingConfig = errors.New("missing store configuration")

// MissingError names the absent setting. It never carries a value.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return e.Key + " is not set"
}

func (e *MissingError) Is(target error) bool {
	return target == ErrMissingConfig
}

// Config holds the league store location and its credentials.
//
// URL names host, port, database and the low-privilege login role; AnonKey is that
// role's password. ServiceRoleKey is the password of the elevated role and may be
// empty, in which case only operations needing it fail.
type Config struct {
	URL             string
	AnonKey         string
	ServiceRoleUser string
	ServiceRoleKey  string
}

// Load reads DB_* environment variables. DB_URL and DB_ANON_KEY are required.
func Load() (Config, error) {
	cfg := Config{
		URL:             os.Getenv(EnvURL),
		AnonKey:         os.Getenv(EnvAnonKey),
		ServiceRoleUser: getEnv(EnvServiceRoleUser, defaultServiceRoleUser),
		ServiceRoleKey:  os.Getenv(EnvServiceRoleKey),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings every request path needs.
func (c Config) Validate() error {
	if c.URL == "" {
		return &MissingError{Key: EnvURL}
	}
	if c.AnonKey == "" {
		return &MissingError{Key: EnvAnonKey}
	}
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvURL, err)
	}
	return nil
}

// DSN returns the Postgres connection URL for the low-privilege login role.
func (c Config) DSN() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", EnvURL, err)
	}
	user := "authenticator"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.AnonKey)
	return u.String(), nil
}

// HasServiceRole reports whether the elevated credential is configured.
func (c Config) HasServiceRole() bool {
	return c.ServiceRoleKey != ""
}

// ServiceDSN returns the connection URL for the elevated role.
func (c Config) ServiceDSN() (string, error) {
	if !c.HasServiceRole() {
		return "", &MissingError{Key: EnvServiceRoleKey}
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", EnvURL, err)
	}
	u.User = url.UserPassword(c.ServiceRoleUser, c.ServiceRoleKey)
	return u.String(), nil
}

// Redacted returns the store location without credentials, safe for logs.
func (c Config) Redacted() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "<invalid>"
	}
	u.User = nil
	return u.Redacted()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
