package api

import (
	"time"
)

// Config holds configuration for the API server.
type Config struct {
	ListenAddress string        `mapstructure:"listen_address"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	BasePath      string        `mapstructure:"base_path"`
	EnableCORS    bool          `mapstructure:"enable_cors"`
	LogRequests   bool          `mapstructure:"log_requests"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddress: ":8080",
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  120 * time.Second,
		IdleTimeout:   90 * time.Second,
		BasePath:      "/api/v1",
		EnableCORS:    true,
		LogRequests:   true,
	}
}
