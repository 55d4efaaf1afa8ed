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
package protocol

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ArgumentError lists every schema violation found in a tool's arguments.
type ArgumentError struct {
	Tool     string
	Problems []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Problems, "; "))
}

// ValidateToolArguments checks arguments against the tool's input schema.
// A tool without a schema accepts anything.
func ValidateToolArguments(tool Tool, arguments map[string]interface{}) error {
	if len(tool.InputSchema) == 0 {
		return nil
	}
	if arguments == nil {
		arguments = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(tool.InputSchema),
		gojsonschema.NewGoLoader(arguments),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, re.String())
	}
	return &ArgumentError{Tool: tool.Name, Problems: problems}
}

// ValidateRequest validates the envelope of an incoming JSON-RPC request
func ValidateRequest(req *Request) error {
	if req.JSONRPC != JSONRPCVersion {
		return fmt.Errorf("invalid jsonrpc version: %q (expected %s)", req.JSONRPC, JSONRPCVersion)
	}
	if req.Method == "" {
		return fmt.Errorf("method is required")
	}
	return nil
}
