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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// isolateConfig gives each test a fresh viper, an empty keyring and no
// TESTLINK_* environment.
func isolateConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	keyring.MockInit()
	_ = DeleteSecretFromKeyring(APIKeyName)

	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{"URL", "API_KEY", "RPC_TIMEOUT", "RPC_RATE_LIMIT", "LOG_LEVEL", "LOG_FILE", "METRICS_ADDR"} {
		t.Setenv(EnvPrefix+"_"+name, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "testlink-mcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost/testlink", cfg.URL)
	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, 30*time.Second, cfg.RPC.Timeout)
	assert.Zero(t, cfg.RPC.RateLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
	assert.Empty(t, cfg.Metrics.Addr)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TESTLINK_API_KEY")
}

func TestLoadConfig_File(t *testing.T) {
	isolateConfig(t)

	path := writeConfigFile(t, `
url: https://testlink.example.com
api_key: file-key
rpc:
  timeout: 10s
  rate_limit: 2
log:
  level: debug
  file: /var/log/testlink-mcp.log
metrics:
  addr: ":9464"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://testlink.example.com", cfg.URL)
	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, 10*time.Second, cfg.RPC.Timeout)
	assert.Equal(t, 2.0, cfg.RPC.RateLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/log/testlink-mcp.log", cfg.Log.File)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_ExampleFile(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadConfig("../../examples/testlink-mcp.yaml")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/testlink", cfg.URL)
	assert.Equal(t, 30*time.Second, cfg.RPC.Timeout)
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	isolateConfig(t)

	path := writeConfigFile(t, "url: https://from-file.example.com\nrpc:\n  timeout: 10s\n")
	t.Setenv("TESTLINK_URL", "https://from-env.example.com")
	t.Setenv("TESTLINK_API_KEY", "env-key")
	t.Setenv("TESTLINK_RPC_TIMEOUT", "5s")
	t.Setenv("TESTLINK_RPC_RATE_LIMIT", "2.5")
	t.Setenv("TESTLINK_LOG_LEVEL", "warn")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env.example.com", cfg.URL)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, 5*time.Second, cfg.RPC.Timeout)
	assert.Equal(t, 2.5, cfg.RPC.RateLimit)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_KeyringFallback(t *testing.T) {
	isolateConfig(t)
	require.NoError(t, SaveSecretToKeyring(APIKeyName, "keyring-key"))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "keyring-key", cfg.APIKey)

	viper.Reset()
	t.Setenv("TESTLINK_API_KEY", "env-key")
	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey, "environment wins over keyring")
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	isolateConfig(t)

	path := writeConfigFile(t, "url: [unterminated\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{URL: "http://tl.local", APIKey: "k"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing url", func(c *Config) { c.URL = "  " }, "TestLink URL is not configured"},
		{"missing key", func(c *Config) { c.APIKey = "" }, "TestLink API key is not configured"},
		{"negative rate", func(c *Config) { c.RPC.RateLimit = -1 }, "rate_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Redacted(t *testing.T) {
	cfg := Config{URL: "http://tl.local", APIKey: "secret"}
	red := cfg.Redacted()
	assert.Equal(t, "********", red.APIKey)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Empty(t, Config{}.Redacted().APIKey)
}
