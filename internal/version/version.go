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

// Package version reports the build identity of testlink-mcp.
package version

import "fmt"

// Build metadata, overridden at build time via ldflags:
// go build -ldflags="-X github.com/teradata-labs/testlink-mcp/internal/version.Version=vX.Y.Z"
var (
	Version   = "0.1.0"
	GitCommit = ""
	BuildDate = ""
)

// Get returns the current version
func Get() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// String returns the version with whatever build metadata is known.
func String() string {
	s := Get()
	if GitCommit != "" {
		s += fmt.Sprintf(" (commit %s)", GitCommit)
	}
	if BuildDate != "" {
		s += fmt.Sprintf(" built %s", BuildDate)
	}
	return s
}
