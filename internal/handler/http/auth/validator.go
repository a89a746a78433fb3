package auth

import (
	"fmt"
	"os"
	"strings"
)

// weakTokenList contains values that must never be accepted as a metrics API
// token. Placeholder values from deployment templates end up here.
var weakTokenList = []string{
	"token",
	"secret",
	"password",
	"changeme",
	"metrics",
	"test",
	"test123",
	"default",
	"admin",
	"grafana",
}

const (
	// minTokenLength is the minimum required length for the metrics API token
	minTokenLength = 16
)

// ValidateMetricsToken validates the metrics API token from the named
// environment variable at application startup. The server must not start
// with an empty or guessable token: every metrics route except the liveness
// probes is gated on it.
//
// Returns the token on success. The error message is safe to log; it never
// contains the token value.
func ValidateMetricsToken(envVar string) (string, error) {
	token := os.Getenv(envVar)

	if token == "" {
		return "", fmt.Errorf("metrics token validation failed: %s must not be empty", envVar)
	}

	if len(token) < minTokenLength {
		return "", fmt.Errorf("metrics token validation failed: %s must be at least %d characters (current length: %d)",
			envVar, minTokenLength, len(token))
	}

	lower := strings.ToLower(token)
	for _, weak := range weakTokenList {
		if lower == weak || strings.HasPrefix(lower, weak+"-") || strings.HasPrefix(lower, weak+"_") {
			return "", fmt.Errorf("metrics token validation failed: %s must not be a placeholder value", envVar)
		}
	}

	return token, nil
}
