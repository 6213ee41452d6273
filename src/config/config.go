package config

import (
	"fmt"
	"os"
	"strings"

	"exchange-chat/src/helpers"
	"exchange-chat/src/models"
	"exchange-chat/src/utils"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// Default returns the built-in configuration: localhost:8080, file audit log,
// PrivatBank archive endpoint.
func Default() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "exchange-chat",
		Host:     "localhost",
		Port:     8080,
		LogLevel: "INFO",
		Storage: models.MStorageConfig{
			DBType: "file",
			DBPath: "log.txt",
		},
		Network: models.MNetworkConfig{
			RequestTimeout: 10,
			MaxRetries:     1,
		},
		Rates: models.MRatesConfig{
			BaseURL:             utils.PrivatBankArchiveURL,
			MaxDays:             utils.MaxDays,
			FetchTimeoutSeconds: 15,
			DefaultCurrencies:   append([]string(nil), utils.DefaultCurrencies...),
			CacheTTLMinutes:     60,
		},
		WebSocket: models.MWebSocketConfig{
			WriteWaitSeconds: 2,
			PongWaitSeconds:  60,
			MaxMessageSize:   64 * 1024,
			SendBuffer:       256,
		},
	}}
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file. Keys missing from the file
// keep their Default() value.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, &helpers.ConfigurationError{ExchangeChatError: helpers.ExchangeChatError{
			Message: fmt.Sprintf("failed to read config file '%s'", configPath), Cause: err}}
	}

	// 2. Unmarshal data over the defaults
	config := Default()
	if err := yaml.Unmarshal(data, config.MConfig); err != nil {
		return nil, &helpers.ConfigurationError{ExchangeChatError: helpers.ExchangeChatError{
			Message: "failed to parse config from YAML", Cause: err}}
	}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// GetLogLevel lets the logger pick its level from a *Config.
func (c *Config) GetLogLevel() string {
	return c.LogLevel
}

// -----------------------------------------------------------------------------

// Address returns host:port for the listener.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return &helpers.ValidationError{ExchangeChatError: helpers.ExchangeChatError{Message: fmt.Sprintf(format, args...)}}
	}

	if c.Name == "" {
		return invalid("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return invalid("server host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return invalid("invalid server port number: %d (must be between 1 and 65535)", c.Port)
	}

	// Storage
	switch strings.ToLower(c.Storage.DBType) {
	case "file", "sqlite":
		if c.Storage.DBPath == "" {
			return invalid("database path cannot be empty for %s", c.Storage.DBType)
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return invalid("connection string cannot be empty for postgres")
		}
	default:
		return invalid("unsupported database type: %q", c.Storage.DBType)
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return invalid("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return invalid("max retries cannot be negative")
	}
	for _, p := range c.Network.Proxies {
		if !helpers.ValidateProxy(p) {
			return invalid("invalid proxy: %q", p)
		}
	}

	// Rates
	if c.Rates.BaseURL == "" {
		return invalid("rates base url cannot be empty")
	}
	if c.Rates.MaxDays <= 0 || c.Rates.MaxDays > utils.MaxDays {
		return invalid("max days must be between 1 and %d", utils.MaxDays)
	}
	if c.Rates.FetchTimeoutSeconds <= 0 {
		return invalid("fetch timeout must be greater than 0")
	}
	if len(c.Rates.DefaultCurrencies) == 0 {
		return invalid("at least one default currency must be configured")
	}
	if c.Rates.CacheTTLMinutes < 0 {
		return invalid("cache ttl cannot be negative")
	}

	// WebSocket
	if c.WebSocket.WriteWaitSeconds <= 0 || c.WebSocket.PongWaitSeconds <= 0 {
		return invalid("websocket timeouts must be greater than 0")
	}
	if c.WebSocket.MaxMessageSize <= 0 {
		return invalid("websocket max message size must be greater than 0")
	}
	if c.WebSocket.SendBuffer <= 0 {
		return invalid("websocket send buffer must be greater than 0")
	}

	return nil
}
