package backend

import "time"

// Config holds connection settings for the backend API.
type Config struct {
	BaseURL string
	// Timeout bounds regular calls.
	Timeout time.Duration
	// LongTimeout bounds upload, decomposition, suggestions and sync.
	LongTimeout time.Duration
	// MaxRetries is the number of extra attempts for GETs that failed
	// on a connection error or 5xx.
	MaxRetries   int
	RetryBackoff time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:8000",
		Timeout:      30 * time.Second,
		LongTimeout:  300 * time.Second,
		MaxRetries:   2,
		RetryBackoff: 250 * time.Millisecond,
	}
}

// ConfigFromMillis builds a Config from millisecond settings as they appear
// in the config file.
func ConfigFromMillis(baseURL string, timeoutMs, longTimeoutMs, maxRetries int) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	if timeoutMs > 0 {
		cfg.Timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	if longTimeoutMs > 0 {
		cfg.LongTimeout = time.Duration(longTimeoutMs) * time.Millisecond
	}
	if maxRetries >= 0 {
		cfg.MaxRetries = maxRetries
	}
	return cfg
}
