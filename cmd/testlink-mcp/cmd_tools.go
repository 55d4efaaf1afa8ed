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
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/teradata-labs/testlink-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/testlink-mcp/pkg/mcp/server"
	"go.uber.org/zap"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the MCP tool catalog",
	Long:  `Print every tool the server publishes, in catalog order, with its access class.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Listing the catalog needs no TestLink connection.
		bridge := server.NewTestLinkBridge(nil, zap.NewNop())
		return printTools(cmd.Context(), cmd.OutOrStdout(), bridge)
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func printTools(ctx context.Context, w io.Writer, bridge *server.TestLinkBridge) error {
	tools, err := bridge.ListTools(ctx)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Tool", "Access", "Description"})
	for i, tool := range tools {
		tw.AppendRow(table.Row{i + 1, tool.Name, accessClass(bridge, tool), firstSentence(tool.Description)})
	}
	tw.AppendFooter(table.Row{"", len(tools), "", ""})
	tw.Render()
	return nil
}

// accessClass summarizes a tool's annotations for the table.
func accessClass(bridge *server.TestLinkBridge, tool protocol.Tool) string {
	if !bridge.Supported(tool.Name) {
		return "unsupported"
	}
	ann := tool.Annotations
	switch {
	case ann == nil:
		return "write"
	case ann.DestructiveHint != nil && *ann.DestructiveHint:
		return "destructive"
	case ann.ReadOnlyHint != nil && *ann.ReadOnlyHint:
		return "read"
	}
	return "write"
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
