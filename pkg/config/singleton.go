package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig holds the singleton configuration instance.
	globalConfig *Config

	// configMutex protects access to globalConfig.
	configMutex sync.RWMutex

	// initOnce ensures configuration is initialized only once.
	initOnce sync.Once
)

// Initialize loads configuration from the specified path with
// environment variable overrides and stores it as the global singleton
// configuration. This function should be called once at application
// startup. Subsequent calls are ignored (uses sync.Once internally).
//
// Returns an error if configuration loading or validation fails.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadOrDefault(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configMutex.Unlock()
	})

	return initErr
}

// Get returns the global configuration instance. It returns nil if
// Initialize has not been called successfully. This function is
// thread-safe and can be called concurrently.
//
// For testing, prefer dependency injection with explicit Config
// instances over the global singleton.
func Get() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// Set sets the global configuration instance. It is primarily intended
// for testing; use Initialize for normal configuration loading.
//
// This function is thread-safe.
func Set(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// Reload reloads the configuration from the specified path. The new
// configuration replaces the global instance only if loading and
// validation succeed.
//
// Returns an error if reloading fails, in which case the existing
// configuration remains unchanged.
func Reload(path string) error {
	cfg, err := LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return nil
}
