// Package attachment validates the file parts attached to a user
// message, per spec §4.7: count cap, size cap, MIME allow-list, and a
// magic-byte cross-check against the declared MIME type.
package attachment

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// MaxFileParts is the per-message cap on attached files.
const MaxFileParts = 5

// MaxDataURLBytes is the per-part cap on the raw data: URL length.
const MaxDataURLBytes = 4 * 1024 * 1024

// allowedMIMETypes is the image allow-list. SVG is explicitly excluded
// (XML-based formats are a script-injection vector in an LLM-rendered
// chat surface).
var allowedMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// Part is one file attachment on a user message.
type Part struct {
	DataURL string
}

// Result is the validation outcome for a single message's attachments.
type Result struct {
	Valid         bool
	FilePartCount int
	Reason        string
}

// Validate checks parts against spec §4.7's rules, in order: count cap,
// then per-part size/scheme/MIME/magic-byte checks.
func Validate(parts []Part) Result {
	if len(parts) > MaxFileParts {
		return Result{Valid: false, Reason: fmt.Sprintf("too many attachments: %d exceeds the limit of %d", len(parts), MaxFileParts)}
	}

	for i, p := range parts {
		if reason := validatePart(p); reason != "" {
			return Result{Valid: false, Reason: fmt.Sprintf("attachment %d: %s", i+1, reason)}
		}
	}

	return Result{Valid: true, FilePartCount: len(parts)}
}

func validatePart(p Part) string {
	if len(p.DataURL) > MaxDataURLBytes {
		return "exceeds the 4 MiB data URL size limit"
	}
	if !strings.HasPrefix(p.DataURL, "data:") {
		return "must be a data: URL"
	}

	declaredMIME, payload, err := parseDataURL(p.DataURL)
	if err != nil {
		return err.Error()
	}
	if !allowedMIMETypes[declaredMIME] {
		return fmt.Sprintf("unsupported MIME type: %s", declaredMIME)
	}

	sniffed := http.DetectContentType(payload)
	if baseMIME(sniffed) != declaredMIME {
		return "magic bytes do not match the declared MIME type"
	}
	return ""
}

// parseDataURL splits "data:<mime>[;base64],<payload>" into the declared
// MIME type and decoded payload bytes.
func parseDataURL(dataURL string) (mime string, payload []byte, err error) {
	rest := strings.TrimPrefix(dataURL, "data:")
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	meta, data := rest[:comma], rest[comma+1:]

	isBase64 := false
	metaParts := strings.Split(meta, ";")
	mime = metaParts[0]
	for _, p := range metaParts[1:] {
		if p == "base64" {
			isBase64 = true
		}
	}
	if mime == "" {
		mime = "text/plain"
	}

	if isBase64 {
		payload, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", nil, fmt.Errorf("invalid base64 payload")
		}
		return mime, payload, nil
	}
	return mime, []byte(data), nil
}

// baseMIME strips any "; charset=..." suffix http.DetectContentType adds.
func baseMIME(sniffed string) string {
	if idx := strings.IndexByte(sniffed, ';'); idx >= 0 {
		return strings.TrimSpace(sniffed[:idx])
	}
	return sniffed
}
