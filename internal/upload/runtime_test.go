package upload

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeMemoryMonitor_AdmitsUnderCeiling(t *testing.T) {
	m := NewRuntimeMemoryMonitor(0)
	ok, reason := m.Admit()
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestRuntimeMemoryMonitor_RefusesOverCeiling(t *testing.T) {
	m := NewRuntimeMemoryMonitor(1)
	ok, reason := m.Admit()
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}

func TestInMemoryActiveUploads_IncrementDecrementPairs(t *testing.T) {
	a := NewInMemoryActiveUploads()
	a.Increment("u1")
	a.Increment("u1")
	assert.Equal(t, 2, a.Count("u1"))
	a.Decrement("u1")
	assert.Equal(t, 1, a.Count("u1"))
	a.Decrement("u1")
	assert.Equal(t, 0, a.Count("u1"))
}

func TestHMACServiceTokens_IssuesDistinctTokensPerUser(t *testing.T) {
	tokens := NewHMACServiceTokens("secret", 0)
	t1, err := tokens.IssueUploadToken(context.Background(), "u1")
	require.NoError(t, err)
	t2, err := tokens.IssueUploadToken(context.Background(), "u2")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
	assert.True(t, strings.HasPrefix(t1, "u1."))
}

func TestHTTPProcessor_Process(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ingest", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(processorResponse{ContentHash: "hash1", Size: 3})
	}))
	defer srv.Close()

	p := NewHTTPProcessor(srv.URL)
	result, err := p.Process(context.Background(), "tok", "file.txt", "text/plain", strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "hash1", result.ContentHash)
	assert.Equal(t, int64(3), result.Size)
}

func TestHTTPProcessor_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProcessor(srv.URL)
	_, err := p.Process(context.Background(), "tok", "file.txt", "text/plain", strings.NewReader("abc"))
	assert.Error(t, err)
}
