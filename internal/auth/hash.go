package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashToken derives the lookup hash for a bearer token using the gateway's
// keyed hash. The same derivation is used at issuance time so a stolen
// database dump never exposes usable tokens.
func HashToken(secret, token string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// ConstantTimeEqual compares two strings without leaking timing
// information about where they first differ.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
