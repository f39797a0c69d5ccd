package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/redis/go-redis/v9"
)

// Config holds all configuration for the render worker
type Config struct {
	// Worker configuration
	WorkerID string `env:"WORKER_ID" envDefault:"renderer-1"`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration
	StreamKey     string        `env:"STREAM_KEY" envDefault:"render.work"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"render-workers"`
	ResultStream  string        `env:"RESULT_STREAM" envDefault:"render.done"`
	BlockTime     time.Duration `env:"BLOCK_TIME" envDefault:"1s"`

	// Rendering configuration
	PartialsDir    string        `env:"PARTIALS_DIR" envDefault:"templates"`
	PartialsKey    string        `env:"PARTIALS_KEY" envDefault:""`
	DefaultLocale  string        `env:"DEFAULT_LOCALE" envDefault:"en"`
	ResolveTargets bool          `env:"RESOLVE_TARGETS" envDefault:"false"`
	RenderTimeout  time.Duration `env:"RENDER_TIMEOUT" envDefault:"10s"`
	WatchPartials  bool          `env:"WATCH_PARTIALS" envDefault:"false"`
	RoutesFile     string        `env:"ROUTES_FILE" envDefault:""`

	// CEL configuration
	CELEnabled bool `env:"CEL_ENABLED" envDefault:"true"`

	// HTTP server configuration (health, ready, preview)
	HTTPPort int `env:"HTTP_PORT" envDefault:"8082"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.StreamKey == "" {
		return fmt.Errorf("STREAM_KEY is required")
	}

	if c.ConsumerGroup == "" {
		return fmt.Errorf("CONSUMER_GROUP is required")
	}

	if c.ResultStream == "" {
		return fmt.Errorf("RESULT_STREAM is required")
	}

	if c.BlockTime <= 0 {
		return fmt.Errorf("BLOCK_TIME must be positive")
	}

	// PARTIALS_DIR and PARTIALS_KEY are both optional, but a worker
	// with neither has nothing to render
	if c.PartialsDir == "" && c.PartialsKey == "" {
		return fmt.Errorf("one of PARTIALS_DIR or PARTIALS_KEY is required")
	}

	if c.WatchPartials && c.PartialsDir == "" {
		return fmt.Errorf("WATCH_PARTIALS requires PARTIALS_DIR")
	}

	if c.DefaultLocale == "" {
		return fmt.Errorf("DEFAULT_LOCALE is required")
	}

	if c.RenderTimeout <= 0 {
		return fmt.Errorf("RENDER_TIMEOUT must be positive")
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// RedisOptions returns Redis client options
func (c *Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// ErrorStream returns the stream failed renders are published to
func (c *Config) ErrorStream() string {
	return c.ResultStream + ".errors"
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{WorkerID=%s, RedisAddr=%s, RedisDB=%d, StreamKey=%s, ConsumerGroup=%s, "+
			"PartialsDir=%s, PartialsKey=%s, WatchPartials=%v, RoutesFile=%s, DefaultLocale=%s, "+
			"ResolveTargets=%v, CELEnabled=%v, "+
			"HTTPPort=%d, LogLevel=%s}",
		c.WorkerID,
		c.RedisAddr,
		c.RedisDB,
		c.StreamKey,
		c.ConsumerGroup,
		c.PartialsDir,
		c.PartialsKey,
		c.WatchPartials,
		c.RoutesFile,
		c.DefaultLocale,
		c.ResolveTargets,
		c.CELEnabled,
		c.HTTPPort,
		c.LogLevel,
	)
}
