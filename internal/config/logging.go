package config

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies log.level and log.format to the standard logrus logger.
func ConfigureLogging(c *Config) error {
	level := c.Log.Level
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)

	if c.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
