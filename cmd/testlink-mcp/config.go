// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/teradata-labs/testlink-mcp/pkg/testlink"
	"github.com/zalando/go-keyring"
)

const (
	// ServiceName for keyring storage
	ServiceName = "testlink-mcp"
	// APIKeyName is the keyring entry holding the TestLink developer key
	APIKeyName = "api_key"
	// DefaultConfigFileName is the name of the config file
	DefaultConfigFileName = "testlink-mcp"
	// EnvPrefix prefixes every environment override, e.g. TESTLINK_URL.
	EnvPrefix = "TESTLINK"
)

// Config holds all configuration for the bridge.
// Priority: CLI flags > env vars > config file > defaults
type Config struct {
	// URL is the TestLink base URL, e.g. http://localhost/testlink
	URL string `mapstructure:"url" yaml:"url"`

	// APIKey is the TestLink developer key. From env/flag/keyring only.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	RPC     RPCConfig     `mapstructure:"rpc" yaml:"rpc"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// RPCConfig holds XML-RPC client settings.
type RPCConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit"` // calls per second, 0 = unlimited
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
	File  string `mapstructure:"file" yaml:"file"`   // empty = stderr
}

// MetricsConfig holds the Prometheus listener configuration.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"` // empty = disabled
}

// LoadConfig loads configuration from file, env, and flags.
func LoadConfig(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".testlink-mcp"))
		}
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/testlink-mcp/")
		viper.SetConfigName(DefaultConfigFileName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Non-fatal: the keyring may be unavailable; Validate reports a missing key.
	_ = loadSecretsFromKeyring(&config)

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("url", "http://localhost/testlink")
	viper.SetDefault("api_key", "")

	viper.SetDefault("rpc.timeout", testlink.DefaultRequestTimeout)
	viper.SetDefault("rpc.rate_limit", 0.0)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "")

	viper.SetDefault("metrics.addr", "")
}

// loadSecretsFromKeyring fills secrets not supplied by flag, env or file.
func loadSecretsFromKeyring(config *Config) error {
	if config.APIKey != "" {
		return nil
	}
	key, err := GetSecretFromKeyring(APIKeyName)
	if err != nil {
		return err
	}
	config.APIKey = key
	return nil
}

// Validate reports settings the bridge cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("TestLink URL is not configured: set %s_URL or url in %s.yaml", EnvPrefix, DefaultConfigFileName)
	}
	if c.APIKey == "" {
		return fmt.Errorf("TestLink API key is not configured: set %s_API_KEY or run '%s config set-key'", EnvPrefix, ServiceName)
	}
	if c.RPC.RateLimit < 0 {
		return fmt.Errorf("rpc.rate_limit must not be negative, got %v", c.RPC.RateLimit)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "********"
	}
	return c
}

// GetSecretFromKeyring retrieves a secret from the system keyring.
func GetSecretFromKeyring(key string) (string, error) {
	return keyring.Get(ServiceName, key)
}

// SaveSecretToKeyring saves a secret to the system keyring.
func SaveSecretToKeyring(key, value string) error {
	return keyring.Set(ServiceName, key, value)
}

// DeleteSecretFromKeyring removes a secret from the system keyring.
func DeleteSecretFromKeyring(key string) error {
	return keyring.Delete(ServiceName, key)
}
