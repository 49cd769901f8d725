package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is read from the working directory when present.
	DefaultConfigFile = "wolverine.yaml"
	// DefaultEnvFile is loaded into the environment when present.
	DefaultEnvFile = ".env"

	DefaultModel       = "gpt-4"
	DefaultTemperature = 0.5
)

// Environment variables.
const (
	EnvAPIKey      = "OPENAI_API_KEY"
	EnvBaseURL     = "OPENAI_BASE_URL"
	EnvModel       = "DEFAULT_MODEL"
	EnvJSONRetries = "VALIDATE_JSON_RETRY"
	EnvAttempts    = "ATTEMPTS_TO_TRY"
)

// ErrMissingAPIKey is returned by Validate when the oracle has no key.
var ErrMissingAPIKey = errors.New(EnvAPIKey + " is not set")

// Config is the full configuration of a repair session.
type Config struct {
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float32 `yaml:"temperature"`
	// MaxAttempts bounds the repair iterations of a session; 0 is unbounded.
	MaxAttempts int `yaml:"max_attempts"`
	// JSONRetries bounds oracle requests per iteration until a reply parses;
	// a negative value is unbounded.
	JSONRetries int `yaml:"json_retries"`
	// Confirm shows each change report and waits for approval.
	Confirm bool `yaml:"confirm"`
	// CheckModel verifies the model is listed by the API before a session.
	CheckModel bool `yaml:"check_model"`
	// Interpreters maps a script extension to the command that runs it.
	Interpreters map[string][]string `yaml:"interpreters"`
	// PromptFile replaces the built-in system prompt.
	PromptFile string `yaml:"prompt_file"`
	// StateDir holds session history; empty means <repo root>/.wolverine.
	StateDir string `yaml:"state_dir"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		JSONRetries: -1,
		CheckModel:  true,
	}
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// ConfigFile must exist when set; otherwise DefaultConfigFile is used if
	// present.
	ConfigFile string
	// EnvFile defaults to DefaultEnvFile; a missing file is not an error.
	EnvFile string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Load builds a Config from defaults, the YAML file, the .env file and the
// environment, later sources winning.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	path := opts.ConfigFile
	required := path != ""
	if !required {
		path = DefaultConfigFile
	}
	if err := cfg.mergeFile(path, required); err != nil {
		return nil, err
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.mergeEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(getenv func(string) string) error {
	if v := getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := getenv(EnvModel); v != "" {
		c.Model = v
	}
	if v := getenv(EnvJSONRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", EnvJSONRetries, err)
		}
		c.JSONRetries = n
	}
	if v := getenv(EnvAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", EnvAttempts, err)
		}
		c.MaxAttempts = n
	}
	return nil
}

// Validate checks the configuration. needOracle is set for commands that
// talk to the model.
func (c *Config) Validate(needOracle bool) error {
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must not be negative, got %d", c.MaxAttempts)
	}
	if !needOracle {
		return nil
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return errors.New("model is not set")
	}
	if c.JSONRetries == 0 {
		return errors.New("json retries must be non-zero; use a negative value for unbounded")
	}
	return nil
}

// Prompt returns the contents of PromptFile, or "" when unset.
func (c *Config) Prompt() (string, error) {
	if c.PromptFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.PromptFile)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	return string(data), nil
}
