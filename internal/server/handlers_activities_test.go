package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagespace/gateway/internal/auth"
)

func TestHandleListActivities_InvalidContext(t *testing.T) {
	s := &Server{}
	r := withPrincipal(httptest.NewRequest(http.MethodGet, "/api/activities?context=bogus", nil), &auth.Principal{UserID: "u1"})
	w := httptest.NewRecorder()

	s.handleListActivities(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListActivities_DriveContextRequiresDriveID(t *testing.T) {
	s := &Server{}
	r := withPrincipal(httptest.NewRequest(http.MethodGet, "/api/activities?context=drive", nil), &auth.Principal{UserID: "u1"})
	w := httptest.NewRecorder()

	s.handleListActivities(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListActivities_PageContextRequiresPageID(t *testing.T) {
	s := &Server{}
	r := withPrincipal(httptest.NewRequest(http.MethodGet, "/api/activities?context=page", nil), &auth.Principal{UserID: "u1"})
	w := httptest.NewRecorder()

	s.handleListActivities(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListActivities_DriveContextOutOfScopeDenied(t *testing.T) {
	s := &Server{}
	p := &auth.Principal{UserID: "u1", TokenID: "mcp1", IsScoped: true, AllowedDriveIDs: []string{"d2"}}
	r := withPrincipal(httptest.NewRequest(http.MethodGet, "/api/activities?context=drive&driveId=d1", nil), p)
	w := httptest.NewRecorder()

	s.handleListActivities(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestParseIntOrDefault(t *testing.T) {
	assert.Equal(t, 50, parseIntOrDefault("", 50))
	assert.Equal(t, 50, parseIntOrDefault("not-a-number", 50))
	assert.Equal(t, 10, parseIntOrDefault("10", 50))
}
