package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/mcdev12/dynasty-sim/go/internal/identity"
	"github.com/mcdev12/dynasty-sim/go/internal/views"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Session identity.SessionConfig `yaml:"session"`

	Realtime struct {
		Enabled       bool          `yaml:"enabled"`
		NATSURL       string        `yaml:"nats_url"`
		SubjectPrefix string        `yaml:"subject_prefix"`
		ReconnectWait time.Duration `yaml:"reconnect_wait"`
	} `yaml:"realtime"`
}

func defaultConfig() *Config {
	natsCfg := views.DefaultNATSConfig()

	var cfg Config
	cfg.Server.Port = 8080
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Session = identity.DefaultSessionConfig()
	cfg.Realtime.NATSURL = natsCfg.URL
	cfg.Realtime.SubjectPrefix = natsCfg.SubjectPrefix
	cfg.Realtime.ReconnectWait = natsCfg.ReconnectWait
	return &cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// loadConfig reads the optional YAML file over the defaults. A missing file
// is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return applyEnv(config), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return applyEnv(config), nil
}

func applyEnv(config *Config) *Config {
	config.Server.Port = getEnvAsInt("PORT", config.Server.Port)
	config.Realtime.NATSURL = getEnv("NATS_URL", config.Realtime.NATSURL)
	return config
}

func (c *Config) natsConfig() views.NATSConfig {
	natsCfg := views.DefaultNATSConfig()
	natsCfg.URL = c.Realtime.NATSURL
	natsCfg.SubjectPrefix = c.Realtime.SubjectPrefix
	natsCfg.ReconnectWait = c.Realtime.ReconnectWait
	return natsCfg
}
