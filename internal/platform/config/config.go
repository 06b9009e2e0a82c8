package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"auditfeed/pkg/validation"
)

// PathEnv names the optional YAML file consulted before the environment.
const PathEnv = "AUDITFEED_CONFIG"

// Config holds everything the CLI and the report server need to reach the
// management API.
type Config struct {
	API    API    `yaml:"api"`
	Server Server `yaml:"server"`
}

// API describes the tenant connection.
type API struct {
	ServiceURL     string        `yaml:"service_url"     env:"AUDITFEED_SERVICE_URL"     env-default:"https://manage.office.com/api/v1.0" validate:"required,url"`
	AccessToken    string        `yaml:"access_token"    env:"AUDITFEED_ACCESS_TOKEN"     validate:"notblank"`
	TenantID       string        `yaml:"tenant_id"       env:"AUDITFEED_TENANT_ID"`
	PublisherID    string        `yaml:"publisher_id"    env:"AUDITFEED_PUBLISHER_ID"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"AUDITFEED_REQUEST_TIMEOUT" env-default:"30s" validate:"gt=0"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"             env:"AUDITFEED_ADDR"             env-default:":8080"       validate:"required"`
	Environment     string        `yaml:"environment"      env:"AUDITFEED_ENVIRONMENT"      env-default:"development" validate:"oneof=development staging production"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"AUDITFEED_SHUTDOWN_TIMEOUT" env-default:"10s"         validate:"gt=0"`
}

// Load reads the YAML file named by AUDITFEED_CONFIG when set, then the
// environment. Environment values override the file.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv(PathEnv); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields every command needs and reports the first
// failure by its YAML path, e.g. "api.access_token is required".
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
