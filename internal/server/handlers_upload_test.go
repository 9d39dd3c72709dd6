package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pagespace/gateway/internal/auth"

	"github.com/stretchr/testify/assert"
)

func multipartRequest(t *testing.T, fields map[string]string, withFile bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withFile {
		fw, err := mw.CreateFormFile("file", "doc.txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte("hello"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestHandleUpload_MissingFileRejected(t *testing.T) {
	s := &Server{}
	r := withPrincipal(multipartRequest(t, map[string]string{"driveId": "d1"}, false), &auth.Principal{UserID: "u1"})
	w := httptest.NewRecorder()

	s.handleUpload(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleUpload_OutOfScopeDriveDenied(t *testing.T) {
	s := &Server{}
	p := &auth.Principal{UserID: "u1", TokenID: "mcp1", IsScoped: true, AllowedDriveIDs: []string{"d2"}}
	r := withPrincipal(multipartRequest(t, map[string]string{"driveId": "d1"}, true), p)
	w := httptest.NewRecorder()

	s.handleUpload(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploadErrCode(t *testing.T) {
	assert.Equal(t, ErrCodeQuotaExceeded, uploadErrCode(http.StatusRequestEntityTooLarge))
	assert.Equal(t, ErrCodeTooManyUploads, uploadErrCode(http.StatusTooManyRequests))
	assert.Equal(t, ErrCodeMemoryPressure, uploadErrCode(http.StatusServiceUnavailable))
	assert.Equal(t, ErrCodeInvalidRequest, uploadErrCode(http.StatusBadRequest))
	assert.Equal(t, ErrCodeProcessorFailure, uploadErrCode(http.StatusInternalServerError))
}
