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
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/teradata-labs/testlink-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/testlink-mcp/pkg/mcp/transport"
	"go.uber.org/zap"
)

// MethodHandler processes a JSON-RPC method call. params is the raw JSON
// params of the request.
type MethodHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// MCPServer dispatches JSON-RPC method calls to registered handlers.
type MCPServer struct {
	info         protocol.Implementation
	capabilities protocol.ServerCapabilities
	instructions string
	handlers     map[string]MethodHandler
	logger       *zap.Logger

	mu         sync.RWMutex
	clientInfo *protocol.Implementation // set by initialize
}

// Option configures an MCPServer.
type Option func(*MCPServer)

// WithToolProvider registers a ToolProvider and enables the tools capability.
func WithToolProvider(p ToolProvider) Option {
	return func(s *MCPServer) {
		s.capabilities.Tools = &protocol.ToolsCapability{}
		s.handlers["tools/list"] = newToolsListHandler(p)
		s.handlers["tools/call"] = newToolsCallHandler(p)
	}
}

// WithInstructions sets the usage hint returned from initialize.
func WithInstructions(text string) Option {
	return func(s *MCPServer) {
		s.instructions = text
	}
}

// NewMCPServer creates a new MCP server with the given identity and options.
func NewMCPServer(name, version string, logger *zap.Logger, opts ...Option) *MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &MCPServer{
		info:     protocol.Implementation{Name: name, Version: version},
		handlers: make(map[string]MethodHandler),
		logger:   logger,
	}
	s.handlers["initialize"] = s.handleInitialize
	s.handlers["notifications/initialized"] = s.handleInitialized
	s.handlers["ping"] = s.handlePing

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleMessage processes one JSON-RPC message and returns the encoded
// response, or nil for notifications.
func (s *MCPServer) HandleMessage(ctx context.Context, msg []byte) ([]byte, error) {
	var req protocol.Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return json.Marshal(protocol.NewErrorResponse(nil, protocol.NewError(protocol.ParseError, "invalid JSON", nil)))
	}
	if err := protocol.ValidateRequest(&req); err != nil {
		return json.Marshal(protocol.NewErrorResponse(req.ID, protocol.NewError(protocol.InvalidRequest, err.Error(), nil)))
	}

	handler, ok := s.handlers[req.Method]
	if !ok {
		if req.IsNotification() {
			return nil, nil
		}
		return json.Marshal(protocol.NewErrorResponse(req.ID,
			protocol.NewError(protocol.MethodNotFound, fmt.Sprintf("method not found: %s", req.Method), nil)))
	}

	start := time.Now()
	result, err := handler(ctx, req.Params)
	duration := time.Since(start)

	if err != nil {
		s.logger.Warn("handler error",
			zap.String("method", req.Method),
			zap.Stringer("id", req.ID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		if req.IsNotification() {
			return nil, nil
		}
		var rpcErr *protocol.Error
		if errors.As(err, &rpcErr) {
			return json.Marshal(protocol.NewErrorResponse(req.ID, rpcErr))
		}
		return json.Marshal(protocol.NewErrorResponse(req.ID, protocol.NewError(protocol.InternalError, err.Error(), nil)))
	}

	s.logger.Debug("request handled",
		zap.String("method", req.Method),
		zap.Stringer("id", req.ID),
		zap.Duration("duration", duration),
	)
	if req.IsNotification() {
		return nil, nil
	}

	resp, err := protocol.NewResultResponse(req.ID, result)
	if err != nil {
		return json.Marshal(protocol.NewErrorResponse(req.ID, protocol.NewError(protocol.InternalError, err.Error(), nil)))
	}
	return json.Marshal(resp)
}

// Serve reads messages from t and answers them one at a time until the
// peer closes its side, the transport fails, or ctx is cancelled. A peer
// closing the stream is a normal shutdown and returns nil. An oversize
// message is answered with an InvalidRequest error and skipped.
func (s *MCPServer) Serve(ctx context.Context, t transport.Transport) error {
	s.logger.Info("MCP server starting", zap.String("name", s.info.Name), zap.String("version", s.info.Version))

	for {
		msg, err := t.Receive(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				s.logger.Info("MCP server stopping", zap.String("reason", "context cancelled"))
				return ctx.Err()
			case errors.Is(err, io.EOF), errors.Is(err, transport.ErrClosed):
				s.logger.Info("MCP server stopping", zap.String("reason", "input closed"))
				return nil
			case errors.Is(err, transport.ErrMessageTooLarge):
				s.logger.Warn("dropped oversize message", zap.Error(err))
				resp, mErr := json.Marshal(protocol.NewErrorResponse(nil,
					protocol.NewError(protocol.InvalidRequest, "message exceeds maximum size", nil)))
				if mErr != nil {
					return fmt.Errorf("encode error response: %w", mErr)
				}
				if err := t.Send(ctx, resp); err != nil {
					return fmt.Errorf("send: %w", err)
				}
				continue
			}
			return fmt.Errorf("receive: %w", err)
		}

		resp, err := s.HandleMessage(ctx, msg)
		if err != nil {
			s.logger.Error("handle message", zap.Error(err))
			continue
		}
		if resp == nil {
			continue
		}
		if err := t.Send(ctx, resp); err != nil {
			return fmt.Errorf("send: %w", err)
		}
	}
}

func (s *MCPServer) handleInitialize(_ context.Context, params json.RawMessage) (interface{}, error) {
	var initParams protocol.InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &initParams); err != nil {
			return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid initialize params: %v", err), nil)
		}
	}

	version := protocol.NegotiateVersion(initParams.ProtocolVersion)
	if initParams.ProtocolVersion != "" && version != initParams.ProtocolVersion {
		s.logger.Warn("client protocol version not supported",
			zap.String("client_version", initParams.ProtocolVersion),
			zap.String("server_version", version),
		)
	}

	if initParams.ClientInfo.Name != "" {
		s.mu.Lock()
		info := initParams.ClientInfo
		s.clientInfo = &info
		s.mu.Unlock()

		s.logger.Info("client connected",
			zap.String("client_name", info.Name),
			zap.String("client_version", info.Version),
		)
	}

	return protocol.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    s.capabilities,
		ServerInfo:      s.info,
		Instructions:    s.instructions,
	}, nil
}

func (s *MCPServer) handleInitialized(_ context.Context, _ json.RawMessage) (interface{}, error) {
	s.logger.Debug("client initialized")
	return nil, nil
}

func (s *MCPServer) handlePing(_ context.Context, _ json.RawMessage) (interface{}, error) {
	return struct{}{}, nil
}

// ClientInfo returns the connected client's identity, or nil before initialize.
func (s *MCPServer) ClientInfo() *protocol.Implementation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientInfo
}
