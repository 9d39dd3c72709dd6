package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Client manages a set of MCP server connections using the official SDK.
// Satisfies mcpconv.Executor.
type Client struct {
	mu      sync.RWMutex
	servers map[string]*mcpServer
	sdk     *sdkmcp.Client
}

type mcpServer struct {
	name    string
	session *sdkmcp.ClientSession
	tools   []Tool
	status  Status
	err     string
}

// NewClient creates an MCP client identifying itself to servers as the
// PageSpace gateway.
func NewClient() *Client {
	return &Client{
		servers: make(map[string]*mcpServer),
		sdk: sdkmcp.NewClient(&sdkmcp.Implementation{
			Name:    "pagespace-gateway",
			Version: "1.0.0",
		}, nil),
	}
}

// AddServer connects to a configured MCP server and lists its tools. A
// disabled config is recorded but not dialed; a connect failure is
// recorded as StatusFailed rather than returned, so one bad server config
// doesn't prevent the gateway from starting with the rest.
func (c *Client) AddServer(ctx context.Context, name string, cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !cfg.Enabled {
		c.servers[name] = &mcpServer{name: name, status: StatusDisabled}
		return
	}

	server, err := c.connectServer(ctx, name, cfg)
	if err != nil {
		c.servers[name] = &mcpServer{name: name, status: StatusFailed, err: err.Error()}
		return
	}
	c.servers[name] = server
}

func (c *Client) connectServer(ctx context.Context, name string, cfg Config) (*mcpServer, error) {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var transport sdkmcp.Transport
	switch cfg.Type {
	case TransportTypeRemote:
		transport = &sdkmcp.SSEClientTransport{
			Endpoint:   cfg.URL,
			HTTPClient: &http.Client{Timeout: timeout},
		}
	case TransportTypeLocal, TransportTypeStdio:
		if len(cfg.Command) == 0 {
			return nil, fmt.Errorf("mcp server %s: empty command", name)
		}
		cmd := exec.Command(cfg.Command[0], cfg.Command[1:]...)
		cmd.Env = os.Environ()
		for k, v := range cfg.Environment {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
		transport = &sdkmcp.CommandTransport{Command: cmd}
	default:
		return nil, fmt.Errorf("mcp server %s: unknown transport %q", name, cfg.Type)
	}

	session, err := c.sdk.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp server %s: connect: %w", name, err)
	}

	server := &mcpServer{name: name, session: session, status: StatusConnected}
	result, err := session.ListTools(ctx, nil)
	if err != nil {
		// Non-fatal: some servers expose resources/prompts only.
		server.tools = []Tool{}
		return server, nil
	}
	server.tools = make([]Tool, len(result.Tools))
	for i, t := range result.Tools {
		server.tools[i] = fromSDKTool(t)
	}
	return server, nil
}

// ToolsByServer returns each connected server's tool list, keyed by server
// name, for the catalog to wrap via mcpconv.NewWrapper.
func (c *Client) ToolsByServer() map[string][]Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]Tool)
	for name, server := range c.servers {
		if server.status != StatusConnected {
			continue
		}
		tools := make([]Tool, len(server.tools))
		copy(tools, server.tools)
		out[name] = tools
	}
	return out
}

// ExecuteTool implements mcpconv.Executor: it invokes toolName on the
// named server and flattens the result's text content into a string.
func (c *Client) ExecuteTool(ctx context.Context, server, toolName string, input json.RawMessage) (string, error) {
	c.mu.RLock()
	target, ok := c.servers[server]
	c.mu.RUnlock()
	if !ok || target.status != StatusConnected || target.session == nil {
		return "", fmt.Errorf("mcp server not connected: %s", server)
	}

	var args map[string]any
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return "", fmt.Errorf("mcp tool %s/%s: parse arguments: %w", server, toolName, err)
		}
	}

	result, err := target.session.CallTool(ctx, &sdkmcp.CallToolParams{Name: toolName, Arguments: args})
	if err != nil {
		return "", err
	}
	if result.IsError {
		for _, content := range result.Content {
			if text, ok := content.(*sdkmcp.TextContent); ok {
				return "", fmt.Errorf("mcp tool %s/%s: %s", server, toolName, text.Text)
			}
		}
		return "", fmt.Errorf("mcp tool %s/%s: execution failed", server, toolName)
	}

	var out strings.Builder
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			out.WriteString(text.Text)
		}
	}
	return out.String(), nil
}

// Status reports every configured server's connection state.
func (c *Client) Status() []ServerStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ServerStatus, 0, len(c.servers))
	for name, server := range c.servers {
		out = append(out, ServerStatus{Name: name, Status: server.status, ToolCount: len(server.tools), Error: server.err})
	}
	return out
}

// Close disconnects every connected server.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, server := range c.servers {
		if server.session != nil {
			server.session.Close()
		}
	}
	c.servers = make(map[string]*mcpServer)
	return nil
}
