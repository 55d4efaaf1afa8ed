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

// testlink-mcp is an MCP (Model Context Protocol) server that exposes a
// TestLink instance as a catalog of tools.
//
// It communicates with MCP clients over stdio (newline-delimited JSON-RPC)
// and with TestLink over its XML-RPC API.
//
// Usage:
//
//	TESTLINK_URL=http://localhost/testlink TESTLINK_API_KEY=... testlink-mcp
//
// Claude Desktop configuration (claude_desktop_config.json):
//
//	{
//	  "mcpServers": {
//	    "testlink": {
//	      "command": "/path/to/testlink-mcp",
//	      "env": {"TESTLINK_URL": "http://localhost/testlink"}
//	    }
//	  }
//	}
package main

func main() {
	Execute()
}
