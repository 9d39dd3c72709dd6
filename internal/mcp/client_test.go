package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddServer_DisabledRecordsStatusWithoutDialing(t *testing.T) {
	c := NewClient()
	c.AddServer(context.Background(), "disabled-server", Config{Enabled: false})

	statuses := c.Status()
	assert.Len(t, statuses, 1)
	assert.Equal(t, StatusDisabled, statuses[0].Status)
}

func TestAddServer_UnknownTransportRecordsFailed(t *testing.T) {
	c := NewClient()
	c.AddServer(context.Background(), "bad-server", Config{Enabled: true, Type: "bogus"})

	statuses := c.Status()
	assert.Len(t, statuses, 1)
	assert.Equal(t, StatusFailed, statuses[0].Status)
	assert.Contains(t, statuses[0].Error, "unknown transport")
}

func TestExecuteTool_UnconnectedServerErrors(t *testing.T) {
	c := NewClient()
	_, err := c.ExecuteTool(context.Background(), "never-added", "some_tool", nil)
	assert.Error(t, err)
}

func TestToolsByServer_ExcludesDisabledAndFailed(t *testing.T) {
	c := NewClient()
	c.AddServer(context.Background(), "disabled-server", Config{Enabled: false})
	c.AddServer(context.Background(), "bad-server", Config{Enabled: true, Type: "bogus"})

	assert.Empty(t, c.ToolsByServer())
}
