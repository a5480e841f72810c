package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the values that would make the proxy unable to start
func ValidateConfig(cfg *Config) error {
	var errs []error

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: fmt.Sprintf("invalid port %q", cfg.ServerPort)})
	}

	if cfg.RateLimitPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_PER_MINUTE", Message: "must not be negative"})
	}

	if u, err := url.Parse(cfg.GeminiURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{Field: "GEMINI_API_URL", Message: fmt.Sprintf("invalid URL %q", cfg.GeminiURL)})
	}

	for _, proxy := range cfg.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				errs = append(errs, ValidationError{Field: "TRUSTED_PROXIES", Message: fmt.Sprintf("not an IP or CIDR: %q", proxy)})
			}
		}
	}

	switch cfg.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, ValidationError{Field: "LOG_FORMAT", Message: fmt.Sprintf("unknown format %q", cfg.LogFormat)})
	}

	return errors.Join(errs...)
}

// Warnings lists settings that are allowed to be empty but leave the proxy unable to serve
func (c *Config) Warnings() []string {
	var out []string
	if c.BasicAuthPass == "" {
		out = append(out, "APP_BASIC_AUTH_PASS is not set; every request will be rejected with 401")
	}
	if c.GeminiAPIKey == "" {
		out = append(out, "GEMINI_API_KEY is not set; authorised requests will fail with 500")
	}
	return out
}
