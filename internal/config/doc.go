// Package config provides configuration management for the render worker.
//
// Configuration is loaded from environment variables and validated on startup.
// All configuration options have sensible defaults for development.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
//
//	client := redis.NewClient(cfg.RedisOptions())
//
// Partials are read from PARTIALS_DIR, then from the redis hash PARTIALS_KEY
// when it is set. WATCH_PARTIALS reloads edited files from PARTIALS_DIR, and
// ROUTES_FILE names a YAML file with the page routes used by requests that
// name no page.
package config
