package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultDotEnvFile is loaded before the environment is read, if present.
const DefaultDotEnvFile = ".env"

// Load builds a validated Config. Values already in the process environment
// win over the dotenv file, which wins over the YAML file at path (optional),
// which wins over the built-in defaults.
func Load(path, dotEnvPath string) (*Config, error) {
	if err := loadDotEnv(dotEnvPath); err != nil {
		return nil, err
	}

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// read loads defaults, file and environment without validating.
func read(path string) (*Config, error) {
	var cfg Config

	if err := normalizeListEnv(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%w: read environment: %v", ErrConfiguration, err)
		}
	} else {
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config file: %v", ErrConfiguration, err)
		}
		if err := applyExplicitValues(&cfg, data); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config file: %v", ErrConfiguration, err)
		}
	}

	cfg.Schedule.AvailabilityDomains = splitList(strings.Join(cfg.Schedule.AvailabilityDomains, ","))
	cfg.expandPaths()
	return &cfg, nil
}

// loadDotEnv applies a dotenv file without overriding variables that are
// already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: failed to load %s: %v", ErrConfiguration, path, err)
	}
	return nil
}

// applyExplicitValues restores values that the YAML file set to the zero
// value. Defaults are applied to zero values, so an explicit false or 0 in
// the file would otherwise be replaced by the default. The environment still
// wins.
func applyExplicitValues(cfg *Config, data []byte) error {
	var raw struct {
		Schedule struct {
			SleepSeconds *int `yaml:"sleep_seconds"`
		} `yaml:"schedule"`
		Discovery struct {
			AutoDiscoverSubnet *bool `yaml:"auto_discover_subnet"`
			AutoSwitchRegion   *bool `yaml:"auto_switch_region"`
		} `yaml:"discovery"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v := raw.Schedule.SleepSeconds; v != nil && !envSet("SLEEP_SECONDS") {
		cfg.Schedule.SleepSeconds = *v
	}
	if v := raw.Discovery.AutoDiscoverSubnet; v != nil && !envSet("AUTO_DISCOVER_SUBNET") {
		cfg.Discovery.AutoDiscoverSubnet = *v
	}
	if v := raw.Discovery.AutoSwitchRegion; v != nil && !envSet("AUTO_SWITCH_REGION") {
		cfg.Discovery.AutoSwitchRegion = *v
	}
	return nil
}

// listEnvVars hold comma-separated lists.
var listEnvVars = []string{"ADS", "OCPUS"}

// normalizeListEnv trims list entries and drops empty ones before the
// environment is parsed, so "4, 2" reads the same as "4,2".
func normalizeListEnv() error {
	for _, name := range listEnvVars {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := os.Setenv(name, strings.Join(splitList(v), ",")); err != nil {
			return fmt.Errorf("normalize %s: %w", name, err)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envSet(name string) bool {
	_, ok := os.LookupEnv(name)
	return ok
}

func (c *Config) expandPaths() {
	c.OCIConfigFile = ExpandHome(c.OCIConfigFile)
	c.SSHPublicKeyPath = ExpandHome(c.SSHPublicKeyPath)
	c.Instance.CloudInitFile = ExpandHome(c.Instance.CloudInitFile)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Usage returns a description of every environment variable, for help text.
func Usage() string {
	var cfg Config
	desc, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return desc
}
