package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOrigin(t *testing.T) {
	cases := map[string]string{
		"https://app.pagespace.io":      "https://app.pagespace.io",
		"https://app.pagespace.io:443":  "https://app.pagespace.io",
		"http://localhost:80":           "http://localhost",
		"http://localhost:3000":         "http://localhost:3000",
		"https://app.pagespace.io:8443": "https://app.pagespace.io:8443",
		"not a url":                     "",
		"":                              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeOrigin(in), in)
	}
}

func TestOriginGuard_NoOriginHeaderPasses(t *testing.T) {
	g := NewOriginGuard("https://app.pagespace.io", nil, OriginModeBlock)
	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	assert.NoError(t, g.Check(r))
}

func TestOriginGuard_ExactMatchPasses(t *testing.T) {
	g := NewOriginGuard("https://app.pagespace.io", []string{"https://admin.pagespace.io"}, OriginModeBlock)
	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	r.Header.Set("Origin", "https://admin.pagespace.io")
	assert.NoError(t, g.Check(r))
}

func TestOriginGuard_MismatchBlocks(t *testing.T) {
	g := NewOriginGuard("https://app.pagespace.io", nil, OriginModeBlock)
	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	r.Header.Set("Origin", "https://evil.example.com")

	err := g.Check(r)
	require.Error(t, err)
	var oe *ErrOriginInvalid
	require.ErrorAs(t, err, &oe)
}

func TestOriginGuard_MismatchWarnPasses(t *testing.T) {
	g := NewOriginGuard("https://app.pagespace.io", nil, OriginModeWarn)
	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	assert.NoError(t, g.Check(r))
}

func TestOriginGuard_NoSubdomainMatch(t *testing.T) {
	g := NewOriginGuard("https://app.pagespace.io", nil, OriginModeBlock)
	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	r.Header.Set("Origin", "https://evil.app.pagespace.io")
	assert.Error(t, g.Check(r))
}

func TestIsMutating(t *testing.T) {
	assert.False(t, IsMutating(http.MethodGet))
	assert.False(t, IsMutating(http.MethodHead))
	assert.False(t, IsMutating(http.MethodOptions))
	assert.True(t, IsMutating(http.MethodPost))
	assert.True(t, IsMutating(http.MethodDelete))
}
