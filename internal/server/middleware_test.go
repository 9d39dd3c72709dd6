package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagespace/gateway/internal/auth"
	"github.com/pagespace/gateway/pkg/types"
)

type fakeSessions struct{ byToken map[string]*types.Session }

func (f *fakeSessions) Lookup(ctx context.Context, rawToken string) (*types.Session, error) {
	return f.byToken[rawToken], nil
}

type fakeUsers struct{ byID map[string]*types.User }

func (f *fakeUsers) Get(ctx context.Context, userID string) (*types.User, error) {
	return f.byID[userID], nil
}

type fakeMCP struct{ byHash map[string]*auth.MCPTokenRecord }

func (f *fakeMCP) LookupByHash(ctx context.Context, hash string) (*auth.MCPTokenRecord, error) {
	return f.byHash[hash], nil
}
func (f *fakeMCP) TouchLastUsed(ctx context.Context, tokenID string) error { return nil }

func testServer() *Server {
	authn := auth.New("secret", &fakeSessions{byToken: map[string]*types.Session{}},
		&fakeUsers{byID: map[string]*types.User{}}, &fakeMCP{byHash: map[string]*auth.MCPTokenRecord{}}, "session")
	return &Server{
		deps: Deps{
			Config:        &types.AppConfig{WebAppURL: "https://app.example.com", OriginValidationMode: "block"},
			Authenticator: authn,
			Origin:        auth.NewOriginGuard("https://app.example.com", nil, auth.OriginModeBlock),
			CSRF:          auth.NewCSRFGuard("secret"),
		},
	}
}

func TestRequireAuth_NoCredentialsRejected(t *testing.T) {
	s := testServer()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/activities", nil)

	got := s.requireAuth(w, r, auth.AllowedTypes{Session: true})
	assert.Nil(t, got)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_SessionBearerAttachesPrincipal(t *testing.T) {
	s := testServer()
	s.deps.Authenticator = auth.New("secret",
		&fakeSessions{byToken: map[string]*types.Session{"ps_sess_abc": {UserID: "u1"}}},
		&fakeUsers{byID: map[string]*types.User{"u1": {ID: "u1"}}},
		&fakeMCP{byHash: map[string]*auth.MCPTokenRecord{}}, "session")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/activities", nil)
	r.Header.Set("Authorization", "Bearer ps_sess_abc")

	got := s.requireAuth(w, r, auth.AllowedTypes{Session: true})
	require.NotNil(t, got)
	p := principalFrom(got.Context())
	require.NotNil(t, p)
	assert.Equal(t, "u1", p.UserID)
}

func TestGuardMutation_GetBypassesOriginAndCSRF(t *testing.T) {
	s := testServer()
	r := httptest.NewRequest(http.MethodGet, "/api/activities", nil)
	w := httptest.NewRecorder()
	assert.True(t, s.guardMutation(w, r, &auth.Principal{UserID: "u1"}))
}

func TestGuardMutation_MismatchedOriginBlocked(t *testing.T) {
	s := testServer()
	r := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()

	ok := s.guardMutation(w, r, &auth.Principal{UserID: "u1", Source: auth.SourceCookie})
	assert.False(t, ok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGuardMutation_BearerSessionBypassesCSRF(t *testing.T) {
	s := testServer()
	r := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	w := httptest.NewRecorder()

	ok := s.guardMutation(w, r, &auth.Principal{UserID: "u1", Source: auth.SourceHeader})
	assert.True(t, ok)
}

func TestGuardMutation_CookieWithoutCSRFHeaderBlocked(t *testing.T) {
	s := testServer()
	r := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	w := httptest.NewRecorder()

	ok := s.guardMutation(w, r, &auth.Principal{UserID: "u1", Source: auth.SourceCookie, SessionID: "sess1"})
	assert.False(t, ok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGuardMutation_CookieWithValidCSRFAllowed(t *testing.T) {
	s := testServer()
	token, err := s.deps.CSRF.IssueToken("sess1")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	r.Header.Set(auth.CSRFHeader, token)
	w := httptest.NewRecorder()

	ok := s.guardMutation(w, r, &auth.Principal{UserID: "u1", Source: auth.SourceCookie, SessionID: "sess1"})
	assert.True(t, ok)
}
