// Package config resolves spinup's settings from environment variables,
// an optional .env file, and command-line flags.
package config

import (
	"errors"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/spinup-io/spinup/errs"
	"github.com/spinup-io/spinup/logger"
)

// Environment variables consumed by spinup.
const (
	EnvCassandraHost = "SPINNAKER_CASSANDRA_HOST"
	EnvCassandraPort = "SPINNAKER_CASSANDRA_PORT"
	EnvCassandraDir  = "SPINNAKER_CASSANDRA_DIR"
	EnvConfigFile    = "SPINNAKER_CONFIG_FILE"
	EnvLogDir        = "SPINNAKER_LOG_DIR"
)

// Settings is the fully resolved configuration for one spinup run.
type Settings struct {
	// CloudProvider selects which provider the platform is configured for.
	CloudProvider string `mapstructure:"cloud_provider" validate:"omitempty,oneof=amazon google none"`
	// DefaultRegion is the provider's default region.
	DefaultRegion string `mapstructure:"default_region"`
	// Quiet forces provider=none and region=none for unattended runs.
	Quiet bool `mapstructure:"quiet"`

	// CassandraHost is the dependency host (default 127.0.0.1).
	CassandraHost string `mapstructure:"cassandra_host" validate:"required"`
	// CassandraPort is the dependency port (default 9042).
	CassandraPort int `mapstructure:"cassandra_port" validate:"gt=0,lte=65535"`
	// CassandraDir holds the schema scripts.
	CassandraDir string `mapstructure:"cassandra_dir" validate:"required"`

	// ConfigFile is the system-wide configuration file to rewrite.
	ConfigFile string `mapstructure:"config_file" validate:"required"`
	// LogDir receives per-service daemon logs.
	LogDir string `mapstructure:"log_dir"`

	// AllowRepositoryEdits permits package-manager source changes.
	AllowRepositoryEdits bool `mapstructure:"allow_repository_edits"`
	// UpdateOS runs a base package upgrade during provisioning.
	UpdateOS bool `mapstructure:"update_os"`

	Logging logger.Config `mapstructure:"logging"`
}

// Load resolves settings from the environment, reading a .env file first
// when one exists in the working directory.
func Load() (*Settings, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errs.ConfigInvalid(err)
		}
	}

	v := viper.New()
	v.SetDefault("cassandra_host", "127.0.0.1")
	v.SetDefault("cassandra_port", 9042)
	v.SetDefault("cassandra_dir", "/opt/spinnaker/cassandra")
	v.SetDefault("config_file", "/root/.spinnaker/spinnaker_config.cfg")
	v.SetDefault("log_dir", "/opt/spinnaker/logs")
	v.SetDefault("allow_repository_edits", true)

	bind := map[string]string{
		"cassandra_host": EnvCassandraHost,
		"cassandra_port": EnvCassandraPort,
		"cassandra_dir":  EnvCassandraDir,
		"config_file":    EnvConfigFile,
		"log_dir":        EnvLogDir,
	}
	for key, env := range bind {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errs.ConfigInvalid(err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errs.ConfigInvalid(err)
	}
	s.ApplyDefaults()
	return &s, nil
}

// ApplyFlags merges the command-line surface into the settings. Quiet
// wins over an explicit provider selection.
func (s *Settings) ApplyFlags(provider, region string, quiet bool) {
	if provider != "" {
		s.CloudProvider = provider
	}
	if region != "" {
		s.DefaultRegion = region
	}
	if quiet {
		s.Quiet = true
		s.CloudProvider = "none"
		s.DefaultRegion = "none"
	}
}

// ApplyDefaults fills unset fields.
func (s *Settings) ApplyDefaults() {
	if s.CloudProvider == "" {
		s.CloudProvider = "none"
	}
	if s.CassandraHost == "" {
		s.CassandraHost = "127.0.0.1"
	}
	if s.CassandraPort == 0 {
		s.CassandraPort = 9042
	}
	s.Logging.ApplyDefaults()
}

// Validate checks the resolved settings. An out-of-set provider maps to
// UnsupportedProvider; everything else maps to ConfigInvalid.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "CloudProvider" {
					return errs.UnsupportedProvider(s.CloudProvider)
				}
			}
		}
		return errs.ConfigInvalid(err)
	}
	return s.Logging.Validate()
}
