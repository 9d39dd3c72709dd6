package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	einotool "github.com/cloudwego/eino/components/tool"
)

const webfetchDescription = `Fetches the content of a URL and returns the response body unchanged.

Usage notes:
  - The URL must be a fully-formed valid URL starting with http:// or https://
  - This tool is read-only
  - Responses larger than 1MB are rejected with an error, not truncated`

const (
	maxResponseSize = 1 * 1024 * 1024 // 1MB
	fetchTimeout    = 20 * time.Second
)

// WebFetchTool fetches a URL's body, backing the catalog's web_search group.
type WebFetchTool struct {
	client *http.Client
}

// WebFetchInput is the input for the webfetch tool.
type WebFetchInput struct {
	URL string `json:"url"`
}

// NewWebFetchTool creates a new webfetch tool. workDir is accepted for
// parity with the catalog's other tool constructors but unused: a URL
// fetch has no working-directory-relative behavior.
func NewWebFetchTool(workDir string) *WebFetchTool {
	return &WebFetchTool{client: &http.Client{Timeout: fetchTimeout}}
}

func (t *WebFetchTool) ID() string          { return "webfetch" }
func (t *WebFetchTool) Description() string { return webfetchDescription }

func (t *WebFetchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {
				"type": "string",
				"description": "The URL to fetch content from"
			}
		},
		"required": ["url"]
	}`)
}

func (t *WebFetchTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params WebFetchInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	if !strings.HasPrefix(params.URL, "http://") && !strings.HasPrefix(params.URL, "https://") {
		return nil, fmt.Errorf("URL must start with http:// or https://")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", params.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/plain;q=1.0, text/html;q=0.8, */*;q=0.1")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request failed with status code: %d", resp.StatusCode)
	}
	if resp.ContentLength > maxResponseSize {
		return nil, fmt.Errorf("response too large (exceeds 1MB limit)")
	}

	limitedReader := io.LimitReader(resp.Body, maxResponseSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("response too large (exceeds 1MB limit)")
	}

	return &Result{
		Title:    fmt.Sprintf("%s (%s)", params.URL, resp.Header.Get("Content-Type")),
		Output:   string(body),
		Metadata: map[string]any{},
	}, nil
}

func (t *WebFetchTool) EinoTool() einotool.InvokableTool {
	return &einoToolWrapper{tool: t}
}
