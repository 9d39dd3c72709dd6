package provider

import (
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagespace/gateway/pkg/types"
)

func TestModelPriority(t *testing.T) {
	tests := []struct {
		modelID        string
		wantHigherThan string
	}{
		{"gpt-5-turbo", "claude-sonnet-4-latest"},
		{"claude-sonnet-4-20250514", "gpt-4o-2024"},
		{"claude-opus-4", "gpt-4o"},
		{"gpt-4o-latest", "claude-3-5-sonnet"},
	}

	for _, tt := range tests {
		t.Run(tt.modelID+" > "+tt.wantHigherThan, func(t *testing.T) {
			assert.Greater(t, modelPriority(tt.modelID), modelPriority(tt.wantHigherThan))
		})
	}
}

func TestConvertToEinoTools(t *testing.T) {
	tools := []ToolInfo{
		{
			Name:        "read_file",
			Description: "Reads a file",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"path": {"type": "string", "description": "File path"},
					"limit": {"type": "integer", "description": "Max lines"}
				},
				"required": ["path"]
			}`),
		},
		{
			Name:        "bash",
			Description: "Runs a command",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"command": {"type": "string", "description": "Command to run"},
					"timeout": {"type": "number", "description": "Timeout in ms"}
				},
				"required": ["command"]
			}`),
		},
	}

	result := ConvertToEinoTools(tools)
	require.Len(t, result, 2)
	assert.Equal(t, "read_file", result[0].Name)
	assert.Equal(t, "Reads a file", result[0].Desc)
	assert.Equal(t, "bash", result[1].Name)
}

func TestParseJSONSchemaToParams(t *testing.T) {
	schemaJSON := json.RawMessage(`{
		"type": "object",
		"properties": {
			"stringParam": {"type": "string", "description": "A string"},
			"intParam": {"type": "integer", "description": "An integer"},
			"numParam": {"type": "number", "description": "A number"},
			"boolParam": {"type": "boolean", "description": "A boolean"},
			"arrayParam": {"type": "array", "description": "An array"},
			"objectParam": {"type": "object", "description": "An object"}
		},
		"required": ["stringParam", "intParam"]
	}`)

	params := parseJSONSchemaToParams(schemaJSON)
	require.NotNil(t, params)

	require.Contains(t, params, "stringParam")
	assert.Equal(t, schema.String, params["stringParam"].Type)
	assert.True(t, params["stringParam"].Required)

	require.Contains(t, params, "intParam")
	assert.Equal(t, schema.Integer, params["intParam"].Type)
	assert.True(t, params["intParam"].Required)

	require.Contains(t, params, "numParam")
	assert.Equal(t, schema.Number, params["numParam"].Type)
	assert.False(t, params["numParam"].Required)

	require.Contains(t, params, "boolParam")
	assert.Equal(t, schema.Boolean, params["boolParam"].Type)

	require.Contains(t, params, "arrayParam")
	assert.Equal(t, schema.Array, params["arrayParam"].Type)

	require.Contains(t, params, "objectParam")
	assert.Equal(t, schema.Object, params["objectParam"].Type)
}

func TestParseJSONSchemaToParams_InvalidJSON(t *testing.T) {
	result := parseJSONSchemaToParams(json.RawMessage(`invalid json`))
	assert.Nil(t, result)
}

func TestParseJSONSchemaToParams_EmptySchema(t *testing.T) {
	result := parseJSONSchemaToParams(json.RawMessage(`{}`))
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestConvertFromEinoMessage(t *testing.T) {
	tests := []struct {
		name     string
		einoMsg  *schema.Message
		wantRole types.MessageRole
	}{
		{"user message", &schema.Message{Role: schema.User, Content: "Hello"}, types.RoleUserMsg},
		{"assistant message", &schema.Message{Role: schema.Assistant, Content: "Hi there"}, types.RoleAssistantMsg},
		{"system message", &schema.Message{Role: schema.System, Content: "You are helpful"}, types.RoleSystemMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertFromEinoMessage(tt.einoMsg, "page-123")
			assert.Equal(t, tt.wantRole, result.Role)
			assert.Equal(t, "page-123", result.PageID)
		})
	}
}

func TestConvertFromEinoMessage_CarriesToolCalls(t *testing.T) {
	msg := &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{ID: "call-1", Function: schema.FunctionCall{Name: "search", Arguments: `{"q":"x"}`}},
		},
	}
	result := ConvertFromEinoMessage(msg, "page-1")
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "call-1", result.ToolCalls[0].ToolCallID)
	assert.Equal(t, "search", result.ToolCalls[0].Name)
}

func TestConvertToEinoMessages(t *testing.T) {
	messages := []*types.ChatMessage{
		{ID: "msg1", Role: types.RoleUserMsg, Content: "Hello"},
		{
			ID: "msg2", Role: types.RoleAssistantMsg, Content: "Hi there",
			ToolCalls: []types.ToolCall{
				{ToolCallID: "call-123", Name: "read_file", Arguments: json.RawMessage(`{"path":"/test.txt"}`)},
			},
		},
		{ID: "msg3", Role: types.RoleSystemMsg, Content: "system prompt"},
	}

	result := ConvertToEinoMessages(messages)
	require.Len(t, result, 3)

	assert.Equal(t, schema.User, result[0].Role)
	assert.Equal(t, "Hello", result[0].Content)

	assert.Equal(t, schema.Assistant, result[1].Role)
	assert.Equal(t, "Hi there", result[1].Content)
	require.Len(t, result[1].ToolCalls, 1)
	assert.Equal(t, "call-123", result[1].ToolCalls[0].ID)
	assert.Equal(t, "read_file", result[1].ToolCalls[0].Function.Name)

	assert.Equal(t, schema.System, result[2].Role)
}

func TestConvertToEinoMessages_DecodesEnvelope(t *testing.T) {
	env := types.Envelope{TextParts: []string{"part one ", "part two"}}
	encoded, err := env.Encode()
	require.NoError(t, err)

	messages := []*types.ChatMessage{
		{ID: "msg1", Role: types.RoleUserMsg, Content: encoded},
	}

	result := ConvertToEinoMessages(messages)
	require.Len(t, result, 1)
	assert.Equal(t, "part one part two", result[0].Content)
}

func TestConvertToEinoMessages_EmitsToolResultMessages(t *testing.T) {
	messages := []*types.ChatMessage{
		{
			ID: "msg1", Role: types.RoleAssistantMsg,
			ToolResults: []types.ToolResult{{ToolCallID: "call-1", Output: "42"}},
		},
	}

	result := ConvertToEinoMessages(messages)
	require.Len(t, result, 2)
	assert.Equal(t, schema.Tool, result[1].Role)
	assert.Equal(t, "42", result[1].Content)
	assert.Equal(t, "call-1", result[1].ToolCallID)
}

func TestConvertToEinoMessages_Empty(t *testing.T) {
	result := ConvertToEinoMessages(nil)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}
