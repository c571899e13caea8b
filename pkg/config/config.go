package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "SCOREAHACK_"

// Config holds all configuration options for the originality analyzer
type Config struct {
	// Devpost page and search endpoints
	Devpost DevpostConfig `yaml:"devpost" json:"devpost" toml:"devpost"`

	// Candidate search bounds
	Search SearchConfig `yaml:"search" json:"search" toml:"search"`

	// Language model provider
	LLM LLMConfig `yaml:"llm" json:"llm" toml:"llm"`

	// Retry policy applied to every model call
	Retry RetryConfig `yaml:"retry" json:"retry" toml:"retry"`

	// Model request throttling
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit" toml:"rate_limit"`

	// Pipeline tuning
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis" toml:"analysis"`

	// HTTP API server
	Server ServerConfig `yaml:"server" json:"server" toml:"server"`

	// Report output
	Output OutputConfig `yaml:"output" json:"output" toml:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging" toml:"logging"`
}

// DevpostConfig holds Devpost-specific configuration
type DevpostConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url" toml:"base_url"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" toml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" toml:"timeout"`
}

// SearchConfig bounds the paginated candidate search
type SearchConfig struct {
	MaxResults int `yaml:"max_results" json:"max_results" toml:"max_results"`
	PageLimit  int `yaml:"page_limit" json:"page_limit" toml:"page_limit"` // exclusive: pages 1 to PageLimit-1 are requested
}

// LLMConfig selects and parameterises the chat-completion provider
type LLMConfig struct {
	Provider    string        `yaml:"provider" json:"provider" toml:"provider"`
	Model       string        `yaml:"model" json:"model" toml:"model"`
	APIKey      string        `yaml:"api_key" json:"-" toml:"api_key"`
	BaseURL     string        `yaml:"base_url" json:"base_url" toml:"base_url"`
	Temperature float32       `yaml:"temperature" json:"temperature" toml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens" toml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" toml:"timeout"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	Strategy     string        `yaml:"strategy" json:"strategy" toml:"strategy"`
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`
	BaseDelay    time.Duration `yaml:"base_delay" json:"base_delay" toml:"base_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay" toml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier" toml:"multiplier"`
	JitterFactor float64       `yaml:"jitter_factor" json:"jitter_factor" toml:"jitter_factor"`
}

// RateLimitConfig holds rate limiting configuration for model requests
type RateLimitConfig struct {
	Enabled           bool   `yaml:"enabled" json:"enabled" toml:"enabled"`
	Algorithm         string `yaml:"algorithm" json:"algorithm" toml:"algorithm"`
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute" toml:"requests_per_minute"`
	BurstSize         int    `yaml:"burst_size" json:"burst_size" toml:"burst_size"`
}

// AnalysisConfig holds pipeline configuration
type AnalysisConfig struct {
	Concurrency          int           `yaml:"concurrency" json:"concurrency" toml:"concurrency"`
	MinDescriptionLength int           `yaml:"min_description_length" json:"min_description_length" toml:"min_description_length"`
	Timeout              time.Duration `yaml:"timeout" json:"timeout" toml:"timeout"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr" toml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`
}

// OutputConfig holds report output configuration
type OutputConfig struct {
	Format string `yaml:"format" json:"format" toml:"format"`
	File   string `yaml:"file" json:"file" toml:"file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" toml:"level"`
	File   string `yaml:"file" json:"file" toml:"file"`
	Pretty bool   `yaml:"pretty" json:"pretty" toml:"pretty"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Devpost: DevpostConfig{
			BaseURL:   "https://devpost.com",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			Timeout:   30 * time.Second,
		},
		Search: SearchConfig{
			MaxResults: 20,
			PageLimit:  10,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-3.5-turbo-16k",
			Temperature: 0,
			MaxTokens:   1000,
			Timeout:     60 * time.Second,
		},
		Retry: RetryConfig{
			Strategy:     "exponential",
			MaxAttempts:  20,
			BaseDelay:    100 * time.Millisecond,
			MaxDelay:     30 * time.Second,
			Multiplier:   1.05,
			JitterFactor: 0,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			Algorithm:         "token_bucket",
			RequestsPerMinute: 120,
			BurstSize:         20,
		},
		Analysis: AnalysisConfig{
			Concurrency:          20,
			MinDescriptionLength: 50,
			Timeout:              5 * time.Minute,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(key string, dst *string) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	setString("DEVPOST_BASE_URL", &c.Devpost.BaseURL)
	setString("USER_AGENT", &c.Devpost.UserAgent)

	setInt("SEARCH_MAX_RESULTS", &c.Search.MaxResults)
	setInt("SEARCH_PAGE_LIMIT", &c.Search.PageLimit)

	setString("LLM_PROVIDER", &c.LLM.Provider)
	setString("LLM_MODEL", &c.LLM.Model)
	setString("LLM_BASE_URL", &c.LLM.BaseURL)
	setString("LLM_API_KEY", &c.LLM.APIKey)
	// The conventional provider variables are honoured when no explicit key is set.
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = providerKeyFromEnv(c.LLM.Provider)
	}

	setInt("RETRY_MAX_ATTEMPTS", &c.Retry.MaxAttempts)
	setDuration("RETRY_BASE_DELAY", &c.Retry.BaseDelay)

	if v := os.Getenv(EnvPrefix + "RATE_LIMIT_ENABLED"); v != "" {
		c.RateLimit.Enabled = strings.ToLower(v) == "true"
	}
	setInt("REQUESTS_PER_MINUTE", &c.RateLimit.RequestsPerMinute)

	setInt("CONCURRENCY", &c.Analysis.Concurrency)
	setInt("MIN_DESCRIPTION_LENGTH", &c.Analysis.MinDescriptionLength)
	setDuration("ANALYSIS_TIMEOUT", &c.Analysis.Timeout)

	setString("SERVER_ADDR", &c.Server.Addr)
	setString("OUTPUT_FORMAT", &c.Output.Format)
	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FILE", &c.Logging.File)

	return errors.Join(errs...)
}

func providerKeyFromEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "claude", "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini", "google":
		return os.Getenv("GEMINI_API_KEY")
	}
	return ""
}

// LoadFromFile loads configuration from a YAML or TOML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in the standard locations and
// returns "" when there is none
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".scoreahack.yaml",
		".scoreahack.yml",
		".scoreahack.toml",
		filepath.Join(home, ".config", "scoreahack", "config.yaml"),
		filepath.Join(home, ".config", "scoreahack", "config.yml"),
		filepath.Join(home, ".config", "scoreahack", "config.toml"),
		filepath.Join(home, ".scoreahack.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

var (
	validProviders  = map[string]bool{"openai": true, "ollama": true, "claude": true, "anthropic": true, "gemini": true, "google": true}
	validStrategies = map[string]bool{"exponential": true, "linear": true, "constant": true}
	validAlgorithms = map[string]bool{"token_bucket": true, "sliding_window": true}
	validFormats    = map[string]bool{"text": true, "json": true, "yaml": true}
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Devpost.BaseURL == "" {
		errs = append(errs, errors.New("devpost base URL is required"))
	}
	if c.Devpost.Timeout <= 0 {
		errs = append(errs, errors.New("devpost timeout must be positive"))
	}

	if c.Search.MaxResults <= 0 {
		errs = append(errs, errors.New("search max results must be positive"))
	}
	if c.Search.PageLimit <= 1 {
		errs = append(errs, errors.New("search page limit must be greater than 1"))
	}

	if !validProviders[strings.ToLower(c.LLM.Provider)] {
		errs = append(errs, fmt.Errorf("unsupported llm provider %q", c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm model is required"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, errors.New("llm temperature must be between 0 and 2"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}
	if c.Retry.BaseDelay < 0 {
		errs = append(errs, errors.New("retry base delay cannot be negative"))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry multiplier must be at least 1"))
	}
	if !validStrategies[strings.ToLower(c.Retry.Strategy)] {
		errs = append(errs, fmt.Errorf("invalid retry strategy %q", c.Retry.Strategy))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMinute <= 0 {
			errs = append(errs, errors.New("requests per minute must be positive"))
		}
		if c.RateLimit.BurstSize <= 0 {
			errs = append(errs, errors.New("burst size must be positive"))
		}
		if !validAlgorithms[strings.ToLower(c.RateLimit.Algorithm)] {
			errs = append(errs, fmt.Errorf("invalid rate limit algorithm %q", c.RateLimit.Algorithm))
		}
	}

	if c.Analysis.Concurrency <= 0 {
		errs = append(errs, errors.New("analysis concurrency must be positive"))
	}
	if c.Analysis.MinDescriptionLength < 0 {
		errs = append(errs, errors.New("minimum description length cannot be negative"))
	}

	if !validFormats[strings.ToLower(c.Output.Format)] {
		errs = append(errs, fmt.Errorf("invalid output format %q", c.Output.Format))
	}

	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file. A .toml extension selects TOML,
// anything else is written as YAML.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Keys mirror the cobra flag names.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if provider, ok := flags["provider"].(string); ok && provider != "" {
		c.LLM.Provider = provider
	}
	if model, ok := flags["model"].(string); ok && model != "" {
		c.LLM.Model = model
	}
	if apiKey, ok := flags["api-key"].(string); ok && apiKey != "" {
		c.LLM.APIKey = apiKey
	}
	if baseURL, ok := flags["llm-base-url"].(string); ok && baseURL != "" {
		c.LLM.BaseURL = baseURL
	}
	if devpostURL, ok := flags["devpost-url"].(string); ok && devpostURL != "" {
		c.Devpost.BaseURL = devpostURL
	}
	if concurrent, ok := flags["concurrency"].(int); ok && concurrent > 0 {
		c.Analysis.Concurrency = concurrent
	}
	if maxResults, ok := flags["max-results"].(int); ok && maxResults > 0 {
		c.Search.MaxResults = maxResults
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Format = format
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.File = output
	}
	if addr, ok := flags["addr"].(string); ok && addr != "" {
		c.Server.Addr = addr
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".scoreahack.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
