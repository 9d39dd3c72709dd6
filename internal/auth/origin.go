package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// OriginMode selects how a failed origin check is treated.
type OriginMode string

const (
	OriginModeWarn  OriginMode = "warn"
	OriginModeBlock OriginMode = "block"
)

// OriginGuard implements the defense-in-depth origin check for cookie-bound
// mutating requests (spec §4.2). Bearer-token callers must not be routed
// through this guard; browsers are the only client that auto-attaches
// credentials, which is exactly what this check defends against.
type OriginGuard struct {
	allowed map[string]bool
	mode    OriginMode
}

// NewOriginGuard builds a guard from the canonical web app URL plus any
// additional allowed origins, normalizing each to scheme://host[:port].
func NewOriginGuard(webAppURL string, additional []string, mode OriginMode) *OriginGuard {
	allowed := make(map[string]bool)
	for _, raw := range append([]string{webAppURL}, additional...) {
		if n := NormalizeOrigin(raw); n != "" {
			allowed[n] = true
		}
	}
	if mode == "" {
		mode = OriginModeBlock
	}
	return &OriginGuard{allowed: allowed, mode: mode}
}

// NormalizeOrigin reduces an origin string to scheme://host[:port], with
// default ports (443 for https, 80 for http) collapsed away.
func NormalizeOrigin(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	host := u.Hostname()
	port := u.Port()
	if (u.Scheme == "https" && port == "443") || (u.Scheme == "http" && port == "80") {
		port = ""
	}
	if port != "" {
		return u.Scheme + "://" + host + ":" + port
	}
	return u.Scheme + "://" + host
}

// ErrOriginInvalid is returned when mode is OriginModeBlock and the
// request's Origin header doesn't match any allowed origin.
type ErrOriginInvalid struct{ Origin string }

func (e *ErrOriginInvalid) Error() string { return "origin not allowed: " + e.Origin }

// Check validates r's Origin header against the allow-list. A missing
// Origin header always passes (non-browser clients don't send one). An
// empty allow-list logs a warning and passes.
func (g *OriginGuard) Check(r *http.Request) error {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return nil
	}

	if len(g.allowed) == 0 {
		log.Warn().Str("origin", origin).Msg("origin guard has no configured allow-list")
		return nil
	}

	if g.allowed[NormalizeOrigin(origin)] {
		return nil
	}

	if g.mode == OriginModeWarn {
		log.Warn().Str("origin", origin).Msg("origin not in allow-list, proceeding (warn mode)")
		return nil
	}

	return &ErrOriginInvalid{Origin: origin}
}

// IsMutating reports whether method requires the origin/CSRF guard at all.
func IsMutating(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}
