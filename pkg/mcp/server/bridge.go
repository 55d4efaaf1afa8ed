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

	"github.com/google/uuid"
	"github.com/teradata-labs/testlink-mcp/internal/metrics"
	"github.com/teradata-labs/testlink-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/testlink-mcp/pkg/testlink"
	"go.uber.org/zap"
)

// runFunc executes one catalog operation against the TestLink client.
type runFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// operation is one catalog entry. Exactly one of run and gap is set: a gap
// entry has no code path to the client.
type operation struct {
	tool protocol.Tool
	run  runFunc
	gap  *testlink.Gap
}

// Result is the uniform outcome of a dispatched operation.
type Result struct {
	Success bool
	Payload interface{}
	Kind    testlink.ErrorKind
	Message string
}

// TestLinkBridge maps the TestLink client to MCP tools. The catalog is built
// once at construction and never changes.
type TestLinkBridge struct {
	client  *testlink.Client
	logger  *zap.Logger
	metrics *metrics.Metrics

	operations []operation
	byName     map[string]*operation
}

// BridgeOption configures a TestLinkBridge.
type BridgeOption func(*TestLinkBridge)

// WithBridgeMetrics records one sample per dispatched tool call.
func WithBridgeMetrics(m *metrics.Metrics) BridgeOption {
	return func(b *TestLinkBridge) {
		b.metrics = m
	}
}

// NewTestLinkBridge creates a bridge over a shared client.
func NewTestLinkBridge(client *testlink.Client, logger *zap.Logger, opts ...BridgeOption) *TestLinkBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &TestLinkBridge{
		client: client,
		logger: logger,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.operations = b.buildOperations()
	b.byName = make(map[string]*operation, len(b.operations))
	for i := range b.operations {
		b.byName[b.operations[i].tool.Name] = &b.operations[i]
	}
	return b
}

// ListTools implements ToolProvider. Tools are returned in catalog order.
func (b *TestLinkBridge) ListTools(_ context.Context) ([]protocol.Tool, error) {
	tools := make([]protocol.Tool, len(b.operations))
	for i, op := range b.operations {
		tools[i] = op.tool
	}
	return tools, nil
}

// Supported reports whether name is a catalog entry backed by a TestLink
// method. Capability gaps and unknown names report false.
func (b *TestLinkBridge) Supported(name string) bool {
	op, ok := b.byName[name]
	return ok && op.gap == nil
}

// CallTool implements ToolProvider. Failures are rendered as error results,
// so the returned error is always nil.
func (b *TestLinkBridge) CallTool(ctx context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error) {
	return b.Dispatch(ctx, name, args).Render(), nil
}

// Dispatch runs one operation and converts every outcome into a Result.
func (b *TestLinkBridge) Dispatch(ctx context.Context, name string, args map[string]interface{}) Result {
	callID := uuid.NewString()
	logger := b.logger.With(zap.String("tool", name), zap.String("call_id", callID))
	logger.Debug("calling tool")

	result := b.dispatch(ctx, name, args)

	outcome := "success"
	if !result.Success {
		outcome = string(result.Kind)
		logger.Warn("tool call failed",
			zap.String("kind", outcome),
			zap.String("message", result.Message),
		)
	} else {
		logger.Debug("tool call succeeded")
	}

	metricName := name
	if result.Kind == testlink.KindUnknownOperation {
		metricName = "unknown"
	}
	b.metrics.ObserveTool(metricName, outcome)
	return result
}

func (b *TestLinkBridge) dispatch(ctx context.Context, name string, args map[string]interface{}) Result {
	if args == nil {
		return failure(&testlink.Error{Kind: testlink.KindMissingArguments, Message: "Missing arguments in request"})
	}
	op, ok := b.byName[name]
	if !ok {
		return failure(&testlink.Error{Kind: testlink.KindUnknownOperation, Message: fmt.Sprintf("Unknown tool: %s", name)})
	}
	if op.gap != nil {
		return failure(op.gap.Err())
	}
	if err := protocol.ValidateToolArguments(op.tool, args); err != nil {
		return failure(&testlink.Error{Kind: testlink.KindValidation, Message: err.Error(), Err: err})
	}

	payload, err := op.run(ctx, args)
	if err != nil {
		return failure(err)
	}
	return Result{Success: true, Payload: payload}
}

func failure(err error) Result {
	return Result{Success: false, Kind: testlink.KindOf(err), Message: err.Error()}
}

// Render converts the result into an MCP tool result: the payload as
// indented JSON on success, "Error: <message>" otherwise.
func (r Result) Render() *protocol.CallToolResult {
	if !r.Success {
		return protocol.TextResult("Error: "+r.Message, true)
	}
	text, err := json.MarshalIndent(r.Payload, "", "  ")
	if err != nil {
		return protocol.TextResult(fmt.Sprintf("Error: encode result: %v", err), true)
	}
	return protocol.TextResult(string(text), false)
}
