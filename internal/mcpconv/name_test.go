package mcpconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("github-mcp_1"))
	assert.ErrorIs(t, ValidateName(""), ErrEmptyName)
	assert.ErrorIs(t, ValidateName("a/b"), ErrInvalidChars)
	assert.ErrorIs(t, ValidateName("has space"), ErrInvalidChars)
	assert.ErrorIs(t, ValidateName("rm;rf"), ErrInvalidChars)

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, ValidateName(string(long)), ErrNameTooLong)
}

func TestNamespace(t *testing.T) {
	ns, err := Namespace("github", "create_issue")
	assert.NoError(t, err)
	assert.Equal(t, "mcp:github:create_issue", ns)

	_, err = Namespace("bad/server", "tool")
	assert.ErrorIs(t, err, ErrInvalidChars)
}

func TestToProviderName(t *testing.T) {
	ns := "mcp:github:create_issue"
	assert.Equal(t, "mcp__github__create_issue", ToProviderName(ns, "google"))
	assert.Equal(t, "mcp__github__create_issue", ToProviderName(ns, "openai"))
	assert.Equal(t, ns, ToProviderName(ns, "anthropic"))
}

func TestParseNamespaced_ColonForm(t *testing.T) {
	server, toolName, err := ParseNamespaced("mcp:github:create_issue")
	assert.NoError(t, err)
	assert.Equal(t, "github", server)
	assert.Equal(t, "create_issue", toolName)
}

func TestParseNamespaced_UnderscoreForm(t *testing.T) {
	server, toolName, err := ParseNamespaced("mcp__github__create_issue")
	assert.NoError(t, err)
	assert.Equal(t, "github", server)
	assert.Equal(t, "create_issue", toolName)
}

func TestParseNamespaced_ToolNameRetainsSeparator(t *testing.T) {
	server, toolName, err := ParseNamespaced("mcp:fs:path:read")
	assert.NoError(t, err)
	assert.Equal(t, "fs", server)
	assert.Equal(t, "path:read", toolName)
}

func TestParseNamespaced_RejectsUnprefixed(t *testing.T) {
	_, _, err := ParseNamespaced("github:create_issue")
	assert.ErrorIs(t, err, ErrNotNamespaced)
}
