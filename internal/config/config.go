package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// APIKeyEnv is the environment variable holding the Gemini credential.
const APIKeyEnv = "GEMINI_API_KEY"

type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"server"`

	Gemini struct {
		APIKey         string        `mapstructure:"api_key"`
		BaseURL        string        `mapstructure:"base_url"`
		Model          string        `mapstructure:"model"`
		Timeout        time.Duration `mapstructure:"timeout"`
		PromptTemplate string        `mapstructure:"prompt_template"` // Path to a prompt file; empty uses the built-in prompt
	} `mapstructure:"gemini"`

	Retry struct {
		MaxAttempts  int           `mapstructure:"max_attempts"`
		InitialDelay time.Duration `mapstructure:"initial_delay"`
	} `mapstructure:"retry"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "text" or "json"
	} `mapstructure:"log"`

	v *viper.Viper
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"addr":      "server.addr",
	"port":      "server.port",
	"model":     "gemini.model",
	"log-level": "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.timeout", 30*time.Second)
	v.SetDefault("gemini.prompt_template", "")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay", time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads configFile (or config.yaml in the working directory when
// empty), then environment variables, then any flags set in flags.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// CONTACTFORM_SERVER_PORT etc.
	v.SetEnvPrefix("CONTACTFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The key is read under its conventional name, without the prefix.
	if err := v.BindEnv("gemini.api_key", APIKeyEnv); err != nil {
		return nil, fmt.Errorf("error binding %s: %w", APIKeyEnv, err)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config.yaml is fine; defaults and env vars still apply.
		// An explicitly named file has to exist.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.v = v

	return &config, nil
}

// GeminiAPIKey returns the current credential. When the config came from
// LoadConfig the environment is consulted again on every call.
func (c *Config) GeminiAPIKey() string {
	if c.v != nil {
		return c.v.GetString("gemini.api_key")
	}
	return c.Gemini.APIKey
}

// ListenAddr returns host:port for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Addr, c.Server.Port)
}
