// Package mcp connects to the remote/local MCP tool servers declared in
// AppConfig.MCP and exposes their tools to mcpconv for conversion into the
// catalog, grounded on the teacher's internal/mcp client built on the
// official MCP Go SDK.
package mcp

import (
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Config mirrors pkg/types.MCPConfig in the shape the SDK transport needs.
type Config struct {
	Enabled     bool
	Type        TransportType
	URL         string
	Headers     map[string]string
	Command     []string
	Environment map[string]string
	Timeout     int // milliseconds
}

// TransportType selects how a server is reached.
type TransportType string

const (
	TransportTypeRemote TransportType = "remote"
	TransportTypeLocal  TransportType = "local"
	TransportTypeStdio  TransportType = "stdio"
)

// Tool is an MCP tool declaration, independent of the SDK's own type so
// mcpconv doesn't need to import it.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

func fromSDKTool(t *sdkmcp.Tool) Tool {
	var schema json.RawMessage
	if t.InputSchema != nil {
		schema, _ = json.Marshal(t.InputSchema)
	}
	return Tool{Name: t.Name, Description: t.Description, InputSchema: schema}
}

// Status is a server's connection state.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisabled     Status = "disabled"
	StatusFailed       Status = "failed"
	StatusConnecting   Status = "connecting"
	StatusDisconnected Status = "disconnected"
)

// ServerStatus reports a configured server's health for diagnostics.
type ServerStatus struct {
	Name      string
	Status    Status
	ToolCount int
	Error     string
}
