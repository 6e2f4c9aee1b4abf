// Package config defines the service configuration and its loading
// pipeline.
//
// # Overview
//
// Configuration is read from a YAML file, filled in with defaults,
// overridden from CERES_* environment variables, and validated before
// any component sees it. A fsnotify-based Watcher can reload the file
// at runtime so limit changes do not require a restart.
//
// # Usage
//
//	cfg, err := config.LoadWithEnvOverrides("config.yaml")
//	if err != nil {
//		return err
//	}
//	store := cache.NewStore[string](cache.StoreConfig{
//		MaxSize:    cfg.Cache.MaxSize,
//		DefaultTTL: cfg.Cache.DefaultTTL,
//	})
package config
