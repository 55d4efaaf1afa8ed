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
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/testlink-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/testlink-mcp/pkg/mcp/transport"
	"go.uber.org/zap/zaptest"
)

// staticProvider is a ToolProvider with fixed behavior.
type staticProvider struct {
	tools   []protocol.Tool
	listErr error
	callErr error
}

func (p *staticProvider) ListTools(context.Context) ([]protocol.Tool, error) {
	return p.tools, p.listErr
}

func (p *staticProvider) CallTool(_ context.Context, name string, _ map[string]interface{}) (*protocol.CallToolResult, error) {
	if p.callErr != nil {
		return nil, p.callErr
	}
	return protocol.TextResult("called "+name, false), nil
}

func handle(t *testing.T, s *MCPServer, msg string) *protocol.Response {
	t.Helper()
	out, err := s.HandleMessage(context.Background(), []byte(msg))
	require.NoError(t, err)
	if out == nil {
		return nil
	}
	var resp protocol.Response
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, protocol.JSONRPCVersion, resp.JSONRPC)
	return &resp
}

func TestNewMCPServer(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", nil)
	require.NotNil(t, s.logger)
	assert.Equal(t, "testlink-mcp", s.info.Name)
	assert.Contains(t, s.handlers, "initialize")
	assert.Contains(t, s.handlers, "ping")
	assert.NotContains(t, s.handlers, "tools/list")
	assert.Nil(t, s.capabilities.Tools)

	s = NewMCPServer("testlink-mcp", "1.2.0", nil, WithToolProvider(&staticProvider{}))
	assert.Contains(t, s.handlers, "tools/list")
	assert.Contains(t, s.handlers, "tools/call")
	assert.NotNil(t, s.capabilities.Tools)
}

func TestMCPServer_Initialize(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t),
		WithToolProvider(&staticProvider{}),
		WithInstructions("Use read_test_case first."),
	)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"claude","version":"0.9"}}}`)
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var result protocol.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "2024-11-05", result.ProtocolVersion)
	assert.Equal(t, "testlink-mcp", result.ServerInfo.Name)
	assert.Equal(t, "1.2.0", result.ServerInfo.Version)
	assert.NotNil(t, result.Capabilities.Tools)
	assert.Equal(t, "Use read_test_case first.", result.Instructions)

	require.NotNil(t, s.ClientInfo())
	assert.Equal(t, "claude", s.ClientInfo().Name)
}

func TestMCPServer_Initialize_UnknownVersion(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t))

	resp := handle(t, s, `{"jsonrpc":"2.0","id":"a","method":"initialize","params":{"protocolVersion":"1999-01-01"}}`)
	require.Nil(t, resp.Error)
	var result protocol.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, protocol.ProtocolVersion, result.ProtocolVersion)
	assert.Nil(t, s.ClientInfo())
}

func TestMCPServer_Initialize_InvalidParams(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t))

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":"nope"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InvalidParams, resp.Error.Code)
}

func TestMCPServer_Ping(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t))

	resp := handle(t, s, `{"jsonrpc":"2.0","id":7,"method":"ping"}`)
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{}`, string(resp.Result))
	assert.Equal(t, "7", resp.ID.String())
}

func TestMCPServer_Notifications(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t))

	assert.Nil(t, handle(t, s, `{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.Nil(t, handle(t, s, `{"jsonrpc":"2.0","method":"notifications/cancelled","params":{"requestId":1}}`))
}

func TestMCPServer_ProtocolErrors(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t))

	tests := []struct {
		name     string
		msg      string
		wantCode int
	}{
		{"invalid JSON", `{not json`, protocol.ParseError},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`, protocol.InvalidRequest},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, protocol.InvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`, protocol.MethodNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := handle(t, s, tt.msg)
			require.NotNil(t, resp)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestToolsList(t *testing.T) {
	provider := &staticProvider{tools: []protocol.Tool{
		{Name: "list_projects", Description: "List projects", InputSchema: map[string]interface{}{"type": "object"}},
	}}
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t), WithToolProvider(provider))

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Nil(t, resp.Error)

	var result protocol.ToolListResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "list_projects", result.Tools[0].Name)
}

func TestToolsList_ProviderError(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t),
		WithToolProvider(&staticProvider{listErr: errors.New("catalog unavailable")}))

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "catalog unavailable")
}

func TestToolsCall(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t), WithToolProvider(&staticProvider{}))

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_projects","arguments":{}}}`)
	require.Nil(t, resp.Error)

	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.False(t, result.IsError)
	assert.Equal(t, "called list_projects", result.Content[0].Text)
}

func TestToolsCall_ProviderErrorIsToolResult(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t),
		WithToolProvider(&staticProvider{callErr: errors.New("boom")}))

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_projects"}}`)
	require.Nil(t, resp.Error)

	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.True(t, result.IsError)
	assert.Equal(t, "Error: boom", result.Content[0].Text)
}

func TestToolsCall_InvalidParams(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t), WithToolProvider(&staticProvider{}))

	for _, msg := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"tools/call"}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":[1,2]}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"arguments":{}}}`,
	} {
		resp := handle(t, s, msg)
		require.NotNil(t, resp.Error, msg)
		assert.Equal(t, protocol.InvalidParams, resp.Error.Code, msg)
	}
}

func TestMCPServer_Serve_StopsAtEndOfInput(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t))

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n" +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n")
	var out strings.Builder
	tr := transport.NewStdioTransport(in, &out)

	require.NoError(t, s.Serve(context.Background(), tr))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{}}`, lines[0])
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":2,"result":{}}`, lines[1])
}

func TestMCPServer_Serve_OversizeMessageKeepsSession(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t))

	padding := strings.Repeat(" ", 100*1024)
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"` + padding + `}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n")
	var out strings.Builder
	tr := transport.NewStdioTransport(in, &out, transport.WithMaxMessageSize(80*1024))

	require.NoError(t, s.Serve(context.Background(), tr))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var rejected protocol.Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rejected))
	require.NotNil(t, rejected.Error)
	assert.Equal(t, protocol.InvalidRequest, rejected.Error.Code)
	assert.Nil(t, rejected.ID)

	assert.JSONEq(t, `{"jsonrpc":"2.0","id":2,"result":{}}`, lines[1])
}

func TestMCPServer_Serve_ContextCancelled(t *testing.T) {
	s := NewMCPServer("testlink-mcp", "1.2.0", zaptest.NewLogger(t))
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, transport.NewStdioTransport(pr, io.Discard)) }()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
