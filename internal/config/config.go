// Package config provides centralized configuration management for gpx.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for GitHub endpoints and the HTTP server.
const (
	DefaultAPIURL     = "https://api.github.com/"
	DefaultGraphQLURL = "https://api.github.com/graphql"
	DefaultAddr       = ":8000"
	DefaultAppURL     = "http://localhost:8000"
	DefaultCookieName = "gpx_session_id"
	// DefaultIdleTimeout drops sessions unused for a week.
	DefaultIdleTimeout = 7 * 24 * time.Hour
)

// ErrMissingConfig is wrapped by validation errors listing unset variables.
var ErrMissingConfig = errors.New("missing required configuration")

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub  GitHubConfig
	Session SessionConfig
	Server  ServerConfig
	Debug   bool
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	// Token is an operator-supplied token that overrides the session identity.
	Token      string
	APIURL     string
	GraphQLURL string
	// Timeout bounds every outbound call. Zero means no timeout.
	Timeout time.Duration
	// RateLimit caps outbound requests per hour. Zero disables throttling.
	RateLimit int
}

// SessionConfig holds session cookie configuration.
type SessionConfig struct {
	SecretKey    string
	CookieName   string
	SecureCookie bool
	// IdleTimeout expires sessions left unused this long. Zero keeps them.
	IdleTimeout time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string
	// AppURL is where the OAuth callback redirects after login.
	AppURL string
}

// Load reads configuration from environment variables and, when path is
// not empty, from a config file. Values are not validated; see Validate.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("github.api_url", DefaultAPIURL)
	v.SetDefault("github.graphql_url", DefaultGraphQLURL)
	v.SetDefault("github.timeout", time.Duration(0))
	v.SetDefault("github.rate_limit", 0)
	v.SetDefault("session.cookie_name", DefaultCookieName)
	v.SetDefault("session.secure_cookie", true)
	v.SetDefault("session.idle_timeout", DefaultIdleTimeout)
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.app_url", DefaultAppURL)
	v.SetDefault("debug", false)

	// Map specific environment variables
	bindings := map[string]string{
		"github.client_id":      "GITHUB_CLIENT_ID",
		"github.client_secret":  "GITHUB_CLIENT_SECRET",
		"github.token":          "GITHUB_TOKEN",
		"github.api_url":        "GITHUB_API_URL",
		"github.graphql_url":    "GITHUB_GRAPHQL_URL",
		"github.timeout":        "GITHUB_TIMEOUT",
		"github.rate_limit":     "GITHUB_RATE_LIMIT",
		"session.secret_key":    "SESSION_SECRET_KEY",
		"session.cookie_name":   "GPX_SESSION_COOKIE",
		"session.secure_cookie": "GPX_SECURE_COOKIE",
		"session.idle_timeout":  "SESSION_IDLE_TIMEOUT",
		"server.addr":           "GPX_ADDR",
		"server.app_url":        "GPX_APP_URL",
		"debug":                 "GPX_DEBUG",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return &Config{
		GitHub: GitHubConfig{
			ClientID:     v.GetString("github.client_id"),
			ClientSecret: v.GetString("github.client_secret"),
			Token:        v.GetString("github.token"),
			APIURL:       v.GetString("github.api_url"),
			GraphQLURL:   v.GetString("github.graphql_url"),
			Timeout:      v.GetDuration("github.timeout"),
			RateLimit:    v.GetInt("github.rate_limit"),
		},
		Session: SessionConfig{
			SecretKey:    v.GetString("session.secret_key"),
			CookieName:   v.GetString("session.cookie_name"),
			SecureCookie: v.GetBool("session.secure_cookie"),
			IdleTimeout:  v.GetDuration("session.idle_timeout"),
		},
		Server: ServerConfig{
			Addr:   v.GetString("server.addr"),
			AppURL: v.GetString("server.app_url"),
		},
		Debug: v.GetBool("debug"),
	}, nil
}

// ValidateServer ensures the values needed to serve the web interface are set.
func (c *Config) ValidateServer() error {
	var missing []string

	if c.GitHub.ClientID == "" {
		missing = append(missing, "GITHUB_CLIENT_ID")
	}
	if c.GitHub.ClientSecret == "" {
		missing = append(missing, "GITHUB_CLIENT_SECRET")
	}
	if c.Session.SecretKey == "" {
		missing = append(missing, "SESSION_SECRET_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingConfig, missing)
	}
	if c.Session.IdleTimeout < 0 {
		return fmt.Errorf("session idle timeout must not be negative, got %s", c.Session.IdleTimeout)
	}
	return c.validateLimits()
}

// ValidateCLI ensures a fixed token is available for non-interactive commands.
func (c *Config) ValidateCLI() error {
	if c.GitHub.Token == "" {
		return fmt.Errorf("%w: [GITHUB_TOKEN]", ErrMissingConfig)
	}
	return c.validateLimits()
}

func (c *Config) validateLimits() error {
	if c.GitHub.Timeout < 0 {
		return fmt.Errorf("github timeout must not be negative, got %s", c.GitHub.Timeout)
	}
	if c.GitHub.RateLimit < 0 {
		return fmt.Errorf("github rate limit must not be negative, got %d", c.GitHub.RateLimit)
	}
	return nil
}
