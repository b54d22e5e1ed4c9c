package config

import (
	"errors"
	"fmt"
	"strings"
)

/*
Validate checks structural settings only. A missing Gemini API key is not
an error here: the contact handler reports it per request so that the
server can start and answer health checks without a credential.
*/
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port (%d) must be between 1 and 65535", c.Server.Port)
	}

	if strings.TrimSpace(c.Gemini.Model) == "" {
		return errors.New("gemini.model is required")
	}
	if strings.TrimSpace(c.Gemini.BaseURL) == "" {
		return errors.New("gemini.base_url is required")
	}
	if c.Gemini.Timeout < 0 {
		return errors.New("gemini.timeout must not be negative")
	}

	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry.max_attempts must be at least 1")
	}
	if c.Retry.InitialDelay <= 0 {
		return errors.New("retry.initial_delay must be positive")
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}

	return nil
}
