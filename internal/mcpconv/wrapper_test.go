package mcpconv

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	lastServer, lastTool string
	lastInput            json.RawMessage
	output                string
	err                   error
}

func (f *fakeExecutor) ExecuteTool(ctx context.Context, server, toolName string, input json.RawMessage) (string, error) {
	f.lastServer, f.lastTool, f.lastInput = server, toolName, input
	return f.output, f.err
}

func TestNewWrapper_Success(t *testing.T) {
	exec := &fakeExecutor{output: "done"}
	w, warnings, err := NewWrapper("github", "create_issue", "creates an issue",
		json.RawMessage(`{"type":"object","properties":{"title":{"type":"string"}},"required":["title"]}`), exec)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "mcp:github:create_issue", w.ID())
}

func TestNewWrapper_RejectsInvalidName(t *testing.T) {
	exec := &fakeExecutor{}
	_, _, err := NewWrapper("bad/server", "tool", "desc", json.RawMessage(`{}`), exec)
	assert.Error(t, err)
}

func TestWrapper_Execute_DelegatesToExecutor(t *testing.T) {
	exec := &fakeExecutor{output: "issue #1 created"}
	w, _, err := NewWrapper("github", "create_issue", "desc", json.RawMessage(`{}`), exec)
	require.NoError(t, err)

	res, err := w.Execute(context.Background(), json.RawMessage(`{"title":"bug"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "issue #1 created", res.Output)
	assert.Equal(t, "github", exec.lastServer)
	assert.Equal(t, "create_issue", exec.lastTool)
}

func TestWrapper_ProviderName(t *testing.T) {
	exec := &fakeExecutor{}
	w, _, err := NewWrapper("github", "create_issue", "desc", json.RawMessage(`{}`), exec)
	require.NoError(t, err)

	assert.Equal(t, "mcp__github__create_issue", w.ProviderName("openai"))
	assert.Equal(t, "mcp:github:create_issue", w.ProviderName("anthropic"))
}
