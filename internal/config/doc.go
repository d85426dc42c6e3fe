// Package config provides configuration management for the README builder
// and the render worker.
//
// Configuration is loaded from environment variables and validated on startup.
// All configuration options have sensible defaults for development; only
// LLM_API_KEY must be set for the ai block to reach a model.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
package config
