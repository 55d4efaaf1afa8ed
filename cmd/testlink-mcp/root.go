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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/teradata-labs/testlink-mcp/internal/version"
)

var (
	cfgFile string
	config  *Config
)

// rootCmd represents the base command. Without a subcommand it serves MCP
// on stdio.
var rootCmd = &cobra.Command{
	Use:   "testlink-mcp",
	Short: "MCP server for TestLink",
	Long: `testlink-mcp exposes TestLink test cases, suites, plans, builds,
executions and requirements as MCP tools over stdio.`,
	Version:      version.Get(),
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.testlink-mcp/testlink-mcp.yaml)")

	// TestLink flags
	rootCmd.PersistentFlags().String("url", "", "TestLink base URL (or TESTLINK_URL)")
	rootCmd.PersistentFlags().String("api-key", "", "TestLink API key (or TESTLINK_API_KEY/keyring)")
	rootCmd.PersistentFlags().Duration("rpc-timeout", 0, "per-call XML-RPC timeout (default 30s)")
	rootCmd.PersistentFlags().Float64("rate-limit", 0, "maximum XML-RPC calls per second (0=unlimited)")

	// Logging flags
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file path (default: stderr)")

	// Metrics flags
	rootCmd.PersistentFlags().String("metrics-addr", "", "Prometheus listen address, e.g. :9464 (empty=disabled)")

	// Bind flags to viper. Unset flags fall through to env, file and defaults.
	_ = viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	_ = viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api-key"))
	_ = viper.BindPFlag("rpc.timeout", rootCmd.PersistentFlags().Lookup("rpc-timeout"))
	_ = viper.BindPFlag("rpc.rate_limit", rootCmd.PersistentFlags().Lookup("rate-limit"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("metrics.addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	var err error
	config, err = LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}
