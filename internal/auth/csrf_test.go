package auth

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFGuard_IssueAndVerify(t *testing.T) {
	g := NewCSRFGuard("secret")
	token, err := g.IssueToken("sess-1")
	require.NoError(t, err)

	assert.NoError(t, g.VerifyToken("sess-1", token))
}

func TestCSRFGuard_WrongSessionFails(t *testing.T) {
	g := NewCSRFGuard("secret")
	token, err := g.IssueToken("sess-1")
	require.NoError(t, err)

	assert.ErrorIs(t, g.VerifyToken("sess-2", token), ErrCSRFTokenInvalid)
}

func TestCSRFGuard_TamperedTokenFails(t *testing.T) {
	g := NewCSRFGuard("secret")
	token, err := g.IssueToken("sess-1")
	require.NoError(t, err)

	assert.ErrorIs(t, g.VerifyToken("sess-1", token+"x"), ErrCSRFTokenInvalid)
}

func TestCSRFGuard_MalformedTokenFails(t *testing.T) {
	g := NewCSRFGuard("secret")
	assert.ErrorIs(t, g.VerifyToken("sess-1", "not-a-token"), ErrCSRFTokenInvalid)
}

func TestCSRFGuard_ExpiredTokenFails(t *testing.T) {
	g := NewCSRFGuard("secret")
	staleTs := time.Now().Add(-48 * time.Hour).Unix()
	sig := g.sign("sess-1", staleTs, "deadbeef")
	stale := fmt.Sprintf("%d.%s.%s", staleTs, "deadbeef", sig)

	assert.ErrorIs(t, g.VerifyToken("sess-1", stale), ErrCSRFTokenInvalid)
}

func TestCSRFGuard_CheckRequest(t *testing.T) {
	g := NewCSRFGuard("secret")
	token, err := g.IssueToken("sess-1")
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/x", nil)
	r.Header.Set(CSRFHeader, token)
	assert.NoError(t, g.CheckRequest(r, "sess-1"))

	r2 := httptest.NewRequest("POST", "/x", nil)
	assert.ErrorIs(t, g.CheckRequest(r2, "sess-1"), ErrCSRFTokenMissing)

	r3 := httptest.NewRequest("POST", "/x", nil)
	r3.Header.Set(CSRFHeader, token)
	assert.ErrorIs(t, g.CheckRequest(r3, ""), ErrCSRFNoSession)
}
