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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage testlink-mcp configuration",
	Long:  `Manage the configuration file and the API key stored in the system keyring.`,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Save the TestLink API key to the system keyring",
	Long: `Save the TestLink API key to the system keyring securely.

The key will be stored in your system's secure credential storage
(Keychain on macOS, Credential Manager on Windows, Secret Service on Linux).
It is used whenever TESTLINK_API_KEY and api_key are unset.`,
	Args: cobra.NoArgs,
	RunE: runConfigSetKey,
}

var configDeleteKeyCmd = &cobra.Command{
	Use:   "delete-key",
	Short: "Delete the TestLink API key from the system keyring",
	Args:  cobra.NoArgs,
	RunE:  runConfigDeleteKey,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration (merged from all sources). The API key is masked.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return showConfig(cmd.OutOrStdout(), config, viper.ConfigFileUsed())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configDeleteKeyCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	fmt.Fprint(cmd.ErrOrStderr(), "Enter TestLink API key (input hidden): ")
	secret, err := readSecret(os.Stdin)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	if err := storeAPIKey(secret); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s to system keyring\n", APIKeyName)
	return nil
}

func runConfigDeleteKey(cmd *cobra.Command, _ []string) error {
	deleted, err := deleteAPIKey()
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s stored in system keyring\n", APIKeyName)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s from system keyring\n", APIKeyName)
	return nil
}

// readSecret reads the key without echo from a terminal, or one line from
// a pipe.
func readSecret(f *os.File) (string, error) {
	if term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}

func storeAPIKey(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("API key cannot be empty")
	}
	if err := SaveSecretToKeyring(APIKeyName, secret); err != nil {
		return fmt.Errorf("error saving to keyring: %w", err)
	}
	return nil
}

// deleteAPIKey reports false when there was nothing to delete.
func deleteAPIKey() (bool, error) {
	err := DeleteSecretFromKeyring(APIKeyName)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("error deleting from keyring: %w", err)
	}
	return true, nil
}

func showConfig(w io.Writer, cfg *Config, source string) error {
	if source == "" {
		source = "(none, using defaults and environment)"
	}
	fmt.Fprintf(w, "# config file: %s\n", source)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Redacted()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
