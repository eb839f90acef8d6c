package engine

import (
	"net/http"
	"time"
)

// Config holds shared engine configuration, injected from main.
type Config struct {
	FetchTimeout time.Duration // per-fetch context deadline
	MaxBodyBytes int           // cap on any upstream response body
	HTTPClient   *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 6 * 1024 * 1024
	}
	cfg = c
	Cfg = &cfg
}
