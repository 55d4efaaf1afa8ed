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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/teradata-labs/testlink-mcp/pkg/mcp/server"
	"github.com/teradata-labs/testlink-mcp/pkg/testlink"
	"gopkg.in/yaml.v3"
)

var (
	callArgs   string
	callOutput string
)

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Invoke one tool against TestLink and print the result",
	Long: `Run a single catalog tool without an MCP client.

Examples:
  testlink-mcp call list_projects
  testlink-mcp call read_test_case --args '{"test_case_id":"ACX-50140"}'
  testlink-mcp call list_builds --args '{"plan_id":7}' --output yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringVar(&callArgs, "args", "{}", "tool arguments as a JSON object")
	callCmd.Flags().StringVarP(&callOutput, "output", "o", "json", "output format (json, yaml)")
}

func runCall(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger(config.Log.File, config.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	bridge, err := newBridge(config, logger, nil)
	if err != nil {
		return err
	}
	return callTool(cmd.Context(), cmd.OutOrStdout(), bridge, args[0], callArgs, callOutput)
}

// callTool dispatches one tool and writes its payload in the requested format.
func callTool(ctx context.Context, w io.Writer, bridge *server.TestLinkBridge, name, rawArgs, output string) error {
	if output != "json" && output != "yaml" {
		return fmt.Errorf("unsupported output format %q (use json or yaml)", output)
	}

	arguments, err := parseArgs(rawArgs)
	if err != nil {
		return err
	}

	result := bridge.Dispatch(ctx, name, arguments)
	if !result.Success {
		if result.Kind == testlink.KindUnknownOperation {
			if suggestions := suggestTools(ctx, bridge, name); len(suggestions) > 0 {
				return fmt.Errorf("%s (did you mean %s?)", result.Message, strings.Join(suggestions, ", "))
			}
		}
		return errors.New(result.Message)
	}

	if output == "json" {
		_, err := fmt.Fprintln(w, result.Render().Content[0].Text)
		return err
	}
	return writeYAML(w, result.Payload)
}

// suggestTools returns up to three catalog names that fuzzily match name.
func suggestTools(ctx context.Context, bridge *server.TestLinkBridge, name string) []string {
	tools, err := bridge.ListTools(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
	}

	matches := fuzzy.Find(name, names)
	if len(matches) > 3 {
		matches = matches[:3]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}

func parseArgs(raw string) (map[string]interface{}, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]interface{}{}, nil
	}
	var arguments map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &arguments); err != nil {
		return nil, fmt.Errorf("--args must be a JSON object: %w", err)
	}
	if arguments == nil {
		arguments = map[string]interface{}{}
	}
	return arguments, nil
}

// writeYAML renders payload with the same field names as the JSON output.
func writeYAML(w io.Writer, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return enc.Close()
}
