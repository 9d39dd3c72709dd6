// Package provider provides LLM provider abstraction using Eino framework.
package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/pagespace/gateway/pkg/types"
)

// Provider represents an LLM provider with Eino ChatModel.
type Provider interface {
	// ID returns the provider identifier.
	ID() string

	// Name returns the human-readable provider name.
	Name() string

	// Models returns the list of available models.
	Models() []types.Model

	// ChatModel returns the Eino ChatModel for this provider.
	ChatModel() model.ToolCallingChatModel

	// CreateCompletion creates a streaming completion.
	CreateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionStream, error)
}

// CompletionRequest represents a request to generate a completion.
type CompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []*schema.Message `json:"messages"`
	Tools       []*schema.ToolInfo `json:"tools,omitempty"`
	MaxTokens   int               `json:"maxTokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	TopP        float64           `json:"topP,omitempty"`
	StopWords   []string          `json:"stopWords,omitempty"`
}

// CompletionStream wraps an Eino stream reader.
type CompletionStream struct {
	reader *schema.StreamReader[*schema.Message]
}

// NewCompletionStream creates a new completion stream.
func NewCompletionStream(reader *schema.StreamReader[*schema.Message]) *CompletionStream {
	return &CompletionStream{reader: reader}
}

// Recv receives the next message chunk from the stream.
func (s *CompletionStream) Recv() (*schema.Message, error) {
	return s.reader.Recv()
}

// Close closes the stream.
func (s *CompletionStream) Close() {
	s.reader.Close()
}

// ToolInfo represents a tool definition for the LLM.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

// ConvertToEinoTools converts internal tool definitions to Eino format.
func ConvertToEinoTools(tools []ToolInfo) []*schema.ToolInfo {
	result := make([]*schema.ToolInfo, len(tools))
	for i, t := range tools {
		// Parse parameters from JSON schema
		var params map[string]*schema.ParameterInfo
		if len(t.Parameters) > 0 {
			params = parseJSONSchemaToParams(t.Parameters)
		}

		result[i] = &schema.ToolInfo{
			Name: t.Name,
			Desc: t.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		}
	}
	return result
}

// parseJSONSchemaToParams converts JSON Schema to Eino ParameterInfo.
func parseJSONSchemaToParams(schemaJSON json.RawMessage) map[string]*schema.ParameterInfo {
	var jsonSchema struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}

	if err := json.Unmarshal(schemaJSON, &jsonSchema); err != nil {
		return nil
	}

	requiredSet := make(map[string]bool)
	for _, r := range jsonSchema.Required {
		requiredSet[r] = true
	}

	params := make(map[string]*schema.ParameterInfo)
	for name, prop := range jsonSchema.Properties {
		paramType := schema.String
		switch prop.Type {
		case "integer":
			paramType = schema.Integer
		case "number":
			paramType = schema.Number
		case "boolean":
			paramType = schema.Boolean
		case "array":
			paramType = schema.Array
		case "object":
			paramType = schema.Object
		}

		params[name] = &schema.ParameterInfo{
			Type:     paramType,
			Desc:     prop.Description,
			Required: requiredSet[name],
		}
	}

	return params
}

// ConvertFromEinoMessage converts an Eino stream chunk into a persisted
// ChatMessage for pageID, carrying any tool calls the provider emitted.
func ConvertFromEinoMessage(msg *schema.Message, pageID string) *types.ChatMessage {
	role := types.RoleAssistantMsg
	switch msg.Role {
	case schema.User:
		role = types.RoleUserMsg
	case schema.System:
		role = types.RoleSystemMsg
	}

	var toolCalls []types.ToolCall
	for _, tc := range msg.ToolCalls {
		toolCalls = append(toolCalls, types.ToolCall{
			ToolCallID: tc.ID,
			Name:       tc.Function.Name,
			Arguments:  json.RawMessage(tc.Function.Arguments),
		})
	}

	return &types.ChatMessage{
		PageID:    pageID,
		Role:      role,
		Content:   msg.Content,
		ToolCalls: toolCalls,
	}
}

// ConvertToEinoMessages converts persisted ChatMessages, decoding any
// Envelope-structured content into its constituent text/file/tool parts,
// into the Eino wire format for a completion request.
func ConvertToEinoMessages(messages []*types.ChatMessage) []*schema.Message {
	result := make([]*schema.Message, 0, len(messages))

	for _, msg := range messages {
		role := schema.Assistant
		switch msg.Role {
		case types.RoleUserMsg:
			role = schema.User
		case types.RoleSystemMsg:
			role = schema.System
		}

		content := msg.Content
		if env, ok := types.IsEnvelope(msg.Content); ok {
			var sb strings.Builder
			for _, t := range env.TextParts {
				sb.WriteString(t)
			}
			content = sb.String()
		}

		var toolCalls []schema.ToolCall
		for _, tc := range msg.ToolCalls {
			toolCalls = append(toolCalls, schema.ToolCall{
				ID: tc.ToolCallID,
				Function: schema.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}

		result = append(result, &schema.Message{
			Role:      role,
			Content:   content,
			ToolCalls: toolCalls,
		})

		for _, tr := range msg.ToolResults {
			result = append(result, &schema.Message{
				Role:       schema.Tool,
				Content:    tr.Output,
				ToolCallID: tr.ToolCallID,
			})
		}
	}

	return result
}
