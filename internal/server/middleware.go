package server

import (
	"context"
	"net/http"

	"github.com/pagespace/gateway/internal/auth"
)

// withAuth wraps handler with the standard authenticate-then-guard chain:
// resolve the Principal, then (for mutating methods) the origin/CSRF check.
// Every route registered in routes.go goes through this.
func (s *Server) withAuth(allowed auth.AllowedTypes, handler func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authed := s.requireAuth(w, r, allowed)
		if authed == nil {
			return
		}
		p := principalFrom(authed.Context())
		if !s.guardMutation(w, authed, p) {
			return
		}
		handler(w, authed)
	}
}

type ctxKey int

const principalCtxKey ctxKey = iota

// principalFrom returns the authenticated Principal attached by requireAuth.
// Callers that reach a handler always have one; the zero value is never
// valid for an authenticated route.
func principalFrom(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(principalCtxKey).(*auth.Principal)
	return p
}

// requireAuth authenticates the request against allowed credential kinds,
// writes the spec §7 error envelope and returns nil on failure, or returns
// a request carrying the resolved Principal in its context on success.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request, allowed auth.AllowedTypes) *http.Request {
	p, err := s.deps.Authenticator.Authenticate(r.Context(), r, allowed)
	if err != nil {
		writeError(w, http.StatusUnauthorized, ErrCodePermissionDenied, err.Error())
		return nil
	}
	return r.WithContext(context.WithValue(r.Context(), principalCtxKey, p))
}

// guardMutation runs the origin and CSRF checks spec §4.2 requires for
// cookie-bound mutating requests. Bearer session tokens and MCP tokens
// never go through a browser's cookie jar, so they bypass CSRF entirely
// (spec §8, testable property #10); the origin check still applies to any
// credential source, since it is cheap defense in depth.
func (s *Server) guardMutation(w http.ResponseWriter, r *http.Request, p *auth.Principal) bool {
	if !auth.IsMutating(r.Method) {
		return true
	}
	if err := s.deps.Origin.Check(r); err != nil {
		writeError(w, http.StatusForbidden, ErrCodeOriginInvalid, err.Error())
		return false
	}
	if p.Source != auth.SourceCookie {
		return true
	}
	if err := s.deps.CSRF.CheckRequest(r, p.SessionID); err != nil {
		writeError(w, http.StatusForbidden, csrfErrCode(err), err.Error())
		return false
	}
	return true
}

func csrfErrCode(err error) string {
	switch err {
	case auth.ErrCSRFTokenMissing:
		return ErrCodeCSRFTokenMissing
	case auth.ErrCSRFNoSession:
		return ErrCodeCSRFNoSession
	case auth.ErrCSRFInvalidSess:
		return ErrCodeCSRFInvalidSess
	default:
		return ErrCodeCSRFTokenInvalid
	}
}
