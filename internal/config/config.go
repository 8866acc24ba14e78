// Package config handles dgctl configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Environment variables (DGCTL_*)
//  2. Config file (~/.config/dgctl/config.yaml)
//  3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultAPIURL is the default DataGenesis backend endpoint.
	DefaultAPIURL = "http://localhost:8000"
	// DefaultPollInterval is the default status poll interval in seconds.
	DefaultPollInterval = 30
	// DefaultReconnectAttempts bounds event channel reconnects per outage.
	DefaultReconnectAttempts = 3
)

// Config holds the dgctl configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources.
func Load() *Config {
	v := viper.New()

	// Set defaults
	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("status.poll_interval", DefaultPollInterval)
	v.SetDefault("stream.reconnect_attempts", DefaultReconnectAttempts)

	// Config file location
	home, err := os.UserHomeDir()
	if err == nil {
		configDir := filepath.Join(home, ".config", "dgctl")
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Environment variables
	v.SetEnvPrefix("DGCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found, but warn on other errors)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	return &Config{v: v}
}

// Get returns a configuration value.
func (c *Config) Get(key string) interface{} {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns a configuration value as int.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// Set sets a configuration value and persists it.
func (c *Config) Set(key string, value interface{}) error {
	c.v.Set(key, value)

	// Ensure config directory exists
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".config", "dgctl")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	configFile := filepath.Join(configDir, "config.yaml")
	return c.v.WriteConfigAs(configFile)
}

// All returns all configuration as a map.
func (c *Config) All() map[string]interface{} {
	return c.v.AllSettings()
}

// APIURL returns the configured backend URL.
func (c *Config) APIURL() string {
	return c.GetString("api.url")
}

// StreamURL returns the websocket endpoint derived from the backend URL,
// unless stream.url overrides it explicitly.
func (c *Config) StreamURL() string {
	if url := c.GetString("stream.url"); url != "" {
		return url
	}

	url := c.APIURL()
	switch {
	case strings.HasPrefix(url, "https://"):
		return "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		return "ws://" + strings.TrimPrefix(url, "http://")
	default:
		return url
	}
}

// PollInterval returns the status poll interval in seconds.
func (c *Config) PollInterval() int {
	return c.GetInt("status.poll_interval")
}

// ReconnectAttempts returns the event channel reconnect budget.
func (c *Config) ReconnectAttempts() int {
	return c.GetInt("stream.reconnect_attempts")
}
