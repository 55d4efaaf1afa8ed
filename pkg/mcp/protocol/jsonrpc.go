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
// Package protocol implements the Model Context Protocol (MCP) JSON-RPC 2.0 layer
// used by the TestLink bridge.
package protocol

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the required version string for JSON-RPC 2.0
const JSONRPCVersion = "2.0"

// Request represents a JSON-RPC 2.0 request or notification
type Request struct {
	JSONRPC string          `json:"jsonrpc"`          // Must be "2.0"
	ID      *RequestID      `json:"id,omitempty"`     // Absent for notifications
	Method  string          `json:"method"`           // Method name
	Params  json.RawMessage `json:"params,omitempty"` // Method-specific params
}

// IsNotification reports whether the request expects no response.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// RequestID can be string, number, or null per JSON-RPC 2.0
type RequestID struct {
	Str *string
	Num *int64
}

// MarshalJSON implements json.Marshaler for RequestID
func (r *RequestID) MarshalJSON() ([]byte, error) {
	switch {
	case r == nil:
		return []byte("null"), nil
	case r.Str != nil:
		return json.Marshal(*r.Str)
	case r.Num != nil:
		return json.Marshal(*r.Num)
	}
	return []byte("null"), nil
}

// UnmarshalJSON implements json.Unmarshaler for RequestID
func (r *RequestID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Str = &s
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		r.Num = &n
		return nil
	}
	return fmt.Errorf("invalid request ID: %s", data)
}

// String returns a string representation of the RequestID, used in logs
func (r *RequestID) String() string {
	switch {
	case r == nil:
		return "null"
	case r.Str != nil:
		return *r.Str
	case r.Num != nil:
		return fmt.Sprintf("%d", *r.Num)
	}
	return "null"
}

// NewStringRequestID creates a RequestID from a string
func NewStringRequestID(s string) *RequestID {
	return &RequestID{Str: &s}
}

// NewNumericRequestID creates a RequestID from a number
func NewNumericRequestID(n int64) *RequestID {
	return &RequestID{Num: &n}
}

// Response represents a JSON-RPC 2.0 response
type Response struct {
	JSONRPC string          `json:"jsonrpc"`          // Must be "2.0"
	ID      *RequestID      `json:"id"`               // Echoes the request ID
	Result  json.RawMessage `json:"result,omitempty"` // Success result
	Error   *Error          `json:"error,omitempty"`  // Mutually exclusive with Result
}

// NewResultResponse marshals result into a success response for id.
func NewResultResponse(id *RequestID, result interface{}) (*Response, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Result: data}, nil
}

// NewErrorResponse builds an error response for id.
func NewErrorResponse(id *RequestID, err *Error) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Error: err}
}

// Error represents a JSON-RPC 2.0 error object
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Standard JSON-RPC error codes
const (
	ParseError     = -32700 // Invalid JSON
	InvalidRequest = -32600 // Invalid JSON-RPC
	MethodNotFound = -32601 // Method doesn't exist
	InvalidParams  = -32602 // Invalid parameters
	InternalError  = -32603 // Internal error
	ServerError    = -32000 // Server-specific error (to -32099)
)

// NewError creates a JSON-RPC error. data is attached only if it marshals.
func NewError(code int, message string, data interface{}) *Error {
	e := &Error{Code: code, Message: message}
	if data != nil {
		if dataJSON, err := json.Marshal(data); err == nil {
			e.Data = dataJSON
		}
	}
	return e
}

func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("JSON-RPC error %d: %s (data: %s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}
