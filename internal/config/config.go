// Package config loads reqplan settings from defaults, an optional YAML
// file and REQPLAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// REQPLAN_API_BASE_URL.
const EnvPrefix = "REQPLAN"

// Config is the full client configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig controls how the backend is reached.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// TimeoutMs applies to regular calls.
	TimeoutMs int `mapstructure:"timeout_ms"`
	// LongTimeoutMs applies to upload, decomposition, suggestions and sync.
	LongTimeoutMs int `mapstructure:"long_timeout_ms"`
	// MaxRetries is the number of extra attempts for idempotent GETs.
	MaxRetries int  `mapstructure:"max_retries"`
	LogCalls   bool `mapstructure:"log_calls"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// UploadConfig bounds accepted documents and the summary wait loop.
type UploadConfig struct {
	MaxBytes        int64    `mapstructure:"max_bytes"`
	Extensions      []string `mapstructure:"extensions"`
	PollIntervalMs  int      `mapstructure:"poll_interval_ms"`
	MaxPollAttempts int      `mapstructure:"max_poll_attempts"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:       "http://localhost:8000",
			TimeoutMs:     30000,
			LongTimeoutMs: 300000,
			MaxRetries:    2,
		},
		Storage: StorageConfig{
			DBPath: DefaultDBPath(),
		},
		Upload: UploadConfig{
			MaxBytes:        10 << 20,
			Extensions:      []string{".pdf", ".docx", ".doc"},
			PollIntervalMs:  2000,
			MaxPollAttempts: 30,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Dir returns the configuration directory, $XDG_CONFIG_HOME/reqplan or
// ~/.config/reqplan.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reqplan")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reqplan"
	}
	return filepath.Join(home, ".config", "reqplan")
}

// DefaultDBPath returns the sqlite file used when none is configured.
func DefaultDBPath() string {
	return filepath.Join(Dir(), "reqplan.db")
}

// SetDefaults registers every default on v so env overrides resolve even
// for keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_ms", d.API.TimeoutMs)
	v.SetDefault("api.long_timeout_ms", d.API.LongTimeoutMs)
	v.SetDefault("api.max_retries", d.API.MaxRetries)
	v.SetDefault("api.log_calls", d.API.LogCalls)
	v.SetDefault("storage.db_path", d.Storage.DBPath)
	v.SetDefault("upload.max_bytes", d.Upload.MaxBytes)
	v.SetDefault("upload.extensions", d.Upload.Extensions)
	v.SetDefault("upload.poll_interval_ms", d.Upload.PollIntervalMs)
	v.SetDefault("upload.max_poll_attempts", d.Upload.MaxPollAttempts)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// NewViper returns a viper instance with defaults, env binding and the
// config search path set. file, when non-empty, is used instead of the
// search path.
func NewViper(file string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file, if any, and decodes v into a Config. A
// missing file on the search path is not an error; an explicitly named one
// that cannot be read is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || v.ConfigFileUsed() != "" {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Upload.Extensions = normalizeExtensions(cfg.Upload.Extensions)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	} else if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("api.base_url %q must start with http:// or https://", c.API.BaseURL))
	}
	if c.API.TimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout_ms must be positive, got %d", c.API.TimeoutMs))
	}
	if c.API.LongTimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("api.long_timeout_ms must be positive, got %d", c.API.LongTimeoutMs))
	}
	if c.API.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("api.max_retries must not be negative, got %d", c.API.MaxRetries))
	}
	if c.Storage.DBPath == "" {
		errs = append(errs, errors.New("storage.db_path is required"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes))
	}
	if len(c.Upload.Extensions) == 0 {
		errs = append(errs, errors.New("upload.extensions must not be empty"))
	}
	if c.Upload.PollIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("upload.poll_interval_ms must be positive, got %d", c.Upload.PollIntervalMs))
	}
	if c.Upload.MaxPollAttempts <= 0 {
		errs = append(errs, fmt.Errorf("upload.max_poll_attempts must be positive, got %d", c.Upload.MaxPollAttempts))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: invalid value %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: invalid value %q", c.Logging.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// normalizeExtensions lowercases and dot-prefixes each entry. Env values
// arrive as one space separated string.
func normalizeExtensions(in []string) []string {
	var out []string
	for _, raw := range in {
		for _, ext := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			out = append(out, ext)
		}
	}
	return out
}
