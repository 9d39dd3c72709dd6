// Package mcpconv namespaces MCP-server-declared tools into the
// gateway's flat tool space and translates their JSON Schema into the
// internal parameter AST, per spec §4.5 step 2-3.
package mcpconv

import (
	"errors"
	"regexp"
	"strings"
)

// namePattern is the allowed charset for server and tool names: no
// control characters, slashes, null bytes, or shell metacharacters.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const maxNameLength = 64

var (
	ErrEmptyName    = errors.New("mcp name must not be empty")
	ErrNameTooLong  = errors.New("mcp name exceeds 64 characters")
	ErrInvalidChars = errors.New("mcp name contains characters outside [A-Za-z0-9_-]")
	ErrNotNamespaced = errors.New("tool name does not begin with mcp: or mcp__")
)

// ValidateName validates a server or tool name component in isolation.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	if !namePattern.MatchString(name) {
		return ErrInvalidChars
	}
	return nil
}

// colonForbiddingProviders forbid literal colons in tool-call names
// (Gemini, Azure OpenAI, OpenAI's function-calling schema validation).
var colonForbiddingProviders = map[string]bool{
	"google": true,
	"openai": true,
	"azure":  true,
}

// ProviderForbidsColons reports whether providerID requires the
// double-underscore encoding instead of the colon form.
func ProviderForbidsColons(providerID string) bool {
	return colonForbiddingProviders[strings.ToLower(providerID)]
}

// Namespace builds the canonical "mcp:<server>:<tool>" name after
// validating both components.
func Namespace(server, toolName string) (string, error) {
	if err := ValidateName(server); err != nil {
		return "", err
	}
	if err := ValidateName(toolName); err != nil {
		return "", err
	}
	return "mcp:" + server + ":" + toolName, nil
}

// ToProviderName renders namespaced for a provider that forbids colons,
// replacing every ":" with "__". Names already in the mcp__ form, or
// providers that accept colons, pass through unchanged.
func ToProviderName(namespaced string, providerID string) string {
	if ProviderForbidsColons(providerID) {
		return strings.ReplaceAll(namespaced, ":", "__")
	}
	return namespaced
}

// ParseNamespaced accepts either the colon form ("mcp:server:tool") or
// the legacy double-underscore form ("mcp__server__tool") and returns
// the server and tool name. The server name is the first segment; the
// remainder (which may itself contain the separator) is the tool name.
func ParseNamespaced(name string) (server, toolName string, err error) {
	switch {
	case strings.HasPrefix(name, "mcp:"):
		rest := strings.TrimPrefix(name, "mcp:")
		return splitFirst(rest, ":")
	case strings.HasPrefix(name, "mcp__"):
		rest := strings.TrimPrefix(name, "mcp__")
		return splitFirst(rest, "__")
	default:
		return "", "", ErrNotNamespaced
	}
}

func splitFirst(s, sep string) (first, rest string, err error) {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return "", "", ErrNotNamespaced
	}
	return s[:idx], s[idx+len(sep):], nil
}
