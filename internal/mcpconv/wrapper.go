package mcpconv

import (
	"context"
	"encoding/json"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/pagespace/gateway/internal/tool"
)

// Executor invokes a namespaced MCP tool against its owning server.
// Implemented by the MCP client layer.
type Executor interface {
	ExecuteTool(ctx context.Context, server, toolName string, input json.RawMessage) (string, error)
}

// Wrapper adapts a remote MCP tool declaration into tool.Tool, grounded
// on the teacher's MCPToolWrapper: same Execute/Result shape, retargeted
// to the mcp:<server>:<tool> namespace and AST-translated schema.
type Wrapper struct {
	server      string
	toolName    string
	namespaced  string
	description string
	rawSchema   json.RawMessage
	exec        Executor
}

// NewWrapper validates and namespaces (server, toolName), then wraps it
// for registration in a catalog alongside the internal tool groups.
func NewWrapper(server, toolName, description string, inputSchema json.RawMessage, exec Executor) (*Wrapper, []string, error) {
	namespaced, err := Namespace(server, toolName)
	if err != nil {
		return nil, nil, err
	}
	_, warnings, err := TranslateSchema(inputSchema)
	if err != nil {
		return nil, nil, err
	}
	return &Wrapper{
		server:      server,
		toolName:    toolName,
		namespaced:  namespaced,
		description: description,
		rawSchema:   inputSchema,
		exec:        exec,
	}, warnings, nil
}

func (w *Wrapper) ID() string                  { return w.namespaced }
func (w *Wrapper) Description() string         { return w.description }
func (w *Wrapper) Parameters() json.RawMessage { return w.rawSchema }

// ProviderName returns the tool-call-facing name for providerID: the
// colon form, or the double-underscore form for providers that forbid
// colons in function names.
func (w *Wrapper) ProviderName(providerID string) string {
	return ToProviderName(w.namespaced, providerID)
}

func (w *Wrapper) Execute(ctx context.Context, input json.RawMessage, toolCtx *tool.Context) (*tool.Result, error) {
	output, err := w.exec.ExecuteTool(ctx, w.server, w.toolName, input)
	if err != nil {
		return nil, err
	}
	if toolCtx != nil {
		toolCtx.SetMetadata(w.namespaced, map[string]any{
			"type":   "mcp",
			"server": w.server,
			"tool":   w.toolName,
		})
	}
	return &tool.Result{Title: w.namespaced, Output: output}, nil
}

// EinoTool returns an Eino-compatible tool implementation, grounded on
// the teacher's mcpEinoWrapper. Eino's ParameterInfo is flat, so only
// top-level properties are surfaced for tool-calling, matching the
// teacher's own parseInputSchemaToParams behavior.
func (w *Wrapper) EinoTool() einotool.InvokableTool {
	return &mcpEinoWrapper{w: w}
}

type mcpEinoWrapper struct {
	w *Wrapper
}

func (e *mcpEinoWrapper) Info(ctx context.Context) (*schema.ToolInfo, error) {
	props, _, err := TranslateSchema(e.w.rawSchema)
	if err != nil {
		return nil, err
	}
	params := make(map[string]*schema.ParameterInfo, len(props))
	for name, p := range props {
		paramType := schema.String
		switch p.Kind {
		case KindInteger:
			paramType = schema.Integer
		case KindNumber:
			paramType = schema.Number
		case KindBoolean:
			paramType = schema.Boolean
		case KindArray:
			paramType = schema.Array
		case KindObject:
			paramType = schema.Object
		}
		params[name] = &schema.ParameterInfo{
			Type:     paramType,
			Desc:     p.Desc,
			Required: p.Required,
		}
	}
	return &schema.ToolInfo{
		Name:        e.w.ProviderName(""),
		Desc:        e.w.description,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

func (e *mcpEinoWrapper) InvokableRun(ctx context.Context, argsJSON string, opts ...einotool.Option) (string, error) {
	result, err := e.w.Execute(ctx, json.RawMessage(argsJSON), nil)
	if err != nil {
		return "", err
	}
	return result.Output, nil
}
