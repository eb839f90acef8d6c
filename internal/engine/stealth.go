package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "anymark/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// RandomUserAgent returns a realistic rotating browser User-Agent.
func RandomUserAgent() string { return stealth.RandomUserAgent() }

// IsRetryableStatus returns true for HTTP status codes worth retrying.
func IsRetryableStatus(code int) bool { return stealth.IsRetryableStatus(code) }
