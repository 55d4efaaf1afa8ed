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

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/teradata-labs/testlink-mcp/pkg/mcp/protocol"
)

func newToolsListHandler(provider ToolProvider) MethodHandler {
	return func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
		tools, err := provider.ListTools(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		return protocol.ToolListResult{Tools: tools}, nil
	}
}

// newToolsCallHandler creates the tools/call handler. Provider errors are
// returned as tool results with isError set, not as JSON-RPC errors.
func newToolsCallHandler(provider ToolProvider) MethodHandler {
	return func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var callParams protocol.CallToolParams
		if len(params) == 0 {
			return nil, protocol.NewError(protocol.InvalidParams, "tool call params are required", nil)
		}
		if err := json.Unmarshal(params, &callParams); err != nil {
			return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid tool call params: %v", err), nil)
		}
		if callParams.Name == "" {
			return nil, protocol.NewError(protocol.InvalidParams, "tool name is required", nil)
		}

		result, err := provider.CallTool(ctx, callParams.Name, callParams.Arguments)
		if err != nil {
			return protocol.TextResult("Error: "+err.Error(), true), nil
		}
		return result, nil
	}
}
