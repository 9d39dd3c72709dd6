package catalog

import (
	"context"
	"encoding/json"

	"github.com/pagespace/gateway/internal/tool"
)

// newWebSearchTool re-skins the teacher's WebFetchTool as PageSpace's
// web_search group: same execution engine, PageSpace-facing id/schema.
func newWebSearchTool() tool.Tool {
	inner := tool.NewWebFetchTool("")
	return tool.NewBaseTool("web_search",
		"Fetches the content of the given http(s) URL; it does not run a search query. Unavailable unless the chat request enables web search.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"url": {"type": "string", "description": "A fully-formed http(s) URL to fetch"}
			},
			"required": ["url"]
		}`),
		func(ctx context.Context, input json.RawMessage, toolCtx *tool.Context) (*tool.Result, error) {
			return inner.Execute(ctx, input, toolCtx)
		})
}
