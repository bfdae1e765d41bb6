// Package config loads broker configuration from the environment.
package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings of the convexbridge CLI. All fields map to
// BRIDGE_* environment variables.
type Config struct {
	// ServerURL is the deployment base URL; it is normalized to the
	// auth root at broker construction.
	ServerURL string `envconfig:"server_url"`

	// EnableCachedLogins gates LoginFromCache. Disabling it is a
	// configuration choice, not a transient condition.
	EnableCachedLogins bool `envconfig:"enable_cached_logins" default:"true"`

	// Email and Password feed the email sign-in delegate used by the
	// `login` command. Leave empty on runtimes with a native delegate.
	Email    string `envconfig:"email"`
	Password string `envconfig:"password"`

	LogLevel string `envconfig:"log_level" default:"info"`
	Debug    bool   `envconfig:"debug"`
}

// LoadFromEnv loads a configuration from environment variables and an
// optional .env file. Validation is deferred so CLI flag overrides can be
// applied first.
func LoadFromEnv() (*Config, error) {
	// Load a .env file if one exists
	_ = godotenv.Overload()

	cfg := new(Config)
	if err := envconfig.Process("bridge", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is complete
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return ErrMissingServerURL
	}
	return nil
}
