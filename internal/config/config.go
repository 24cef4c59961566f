package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Config is the run configuration of the fwtransfer command. Later sources
// override earlier ones: defaults, YAML file, FW_* environment variables,
// then explicit flags.
type Config struct {
	Region       string   `yaml:"region" env:"FW_REGION" validate:"required"`
	Environments []string `yaml:"environments" env:"FW_ENVIRONMENTS" validate:"required,min=1,dive,oneof=prod nonprod"`
	SourcePath   string   `yaml:"source" env:"FW_SOURCE" validate:"required"`
	TargetPath   string   `yaml:"target" env:"FW_TARGET" validate:"required"`
	OutputDir    string   `yaml:"output_dir" env:"FW_OUTPUT_DIR"`
	VariablesDSN string   `yaml:"variables_dsn" env:"FW_VARIABLES_DSN"`
	LogLevel     string   `yaml:"log_level" env:"FW_LOG_LEVEL"`
	LogFile      string   `yaml:"log_file" env:"FW_LOG_FILE"`
}

func Default() Config {
	return Config{
		Region:       "tokyo",
		Environments: []string{"prod"},
		LogLevel:     "INFO",
	}
}

// Load builds a Config from defaults, the optional YAML file at path and
// the process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("could not read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("could not parse config file %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("could not read environment: %w", err)
	}
	return cfg, nil
}

// Normalize trims values and lower-cases environments, accepting
// comma separated entries and dropping duplicates.
func (c *Config) Normalize() {
	c.Region = strings.TrimSpace(c.Region)
	var envs []string
	for _, e := range c.Environments {
		for _, part := range strings.Split(e, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				envs = append(envs, part)
			}
		}
	}
	c.Environments = lo.Uniq(envs)
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// OutputDirectory returns OutputDir, defaulting to the target file's directory.
func (c *Config) OutputDirectory() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return filepath.Dir(c.TargetPath)
}
