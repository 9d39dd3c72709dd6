package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pagespace/gateway/internal/orchestrator"
)

// chatWriter relays orchestrator.Event values to the client as an SSE
// stream, grounded on the teacher's internal/server/sse.go sseWriter:
// "event: <kind>\ndata: <json>\n\n" framing flushed after every write, with
// a ResponseController.Flush() fallback when the underlying writer isn't
// an http.Flusher.
type chatWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newChatWriter(w http.ResponseWriter) *chatWriter {
	flusher, _ := w.(http.Flusher)
	return &chatWriter{w: w, flusher: flusher}
}

// wirePart is the JSON shape relayed for each ordered part (spec §6): one
// of text, tool-call, tool-result, or finish.
type wirePart struct {
	Type         string `json:"type"`
	StreamID     string `json:"streamId,omitempty"`
	Text         string `json:"text,omitempty"`
	ToolCallID   string `json:"toolCallId,omitempty"`
	ToolName     string `json:"toolName,omitempty"`
	Arguments    string `json:"arguments,omitempty"`
	Result       string `json:"result,omitempty"`
	IsError      bool   `json:"isError,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
}

func (c *chatWriter) emit(ev orchestrator.Event) {
	part := wirePart{StreamID: ev.StreamID}
	switch ev.Kind {
	case orchestrator.EventStreamStart:
		// X-Stream-Id must be visible before the first chunk (spec §6); this
		// is the first event Run ever emits, so the header is still safe to
		// set here.
		c.w.Header().Set("X-Stream-Id", ev.StreamID)
		c.w.WriteHeader(http.StatusOK)
		if c.flusher != nil {
			c.flusher.Flush()
		}
		return
	case orchestrator.EventTextDelta:
		part.Type, part.Text = "text", ev.Text
	case orchestrator.EventToolCall:
		part.Type, part.ToolCallID, part.ToolName, part.Arguments = "tool-call", ev.ToolCallID, ev.ToolName, ev.Arguments
	case orchestrator.EventToolResult:
		part.Type, part.ToolCallID, part.Result, part.IsError = "tool-result", ev.ToolCallID, ev.Result, ev.IsError
	case orchestrator.EventFinish:
		part.Type, part.FinishReason = "finish", ev.FinishReason
	default:
		return
	}
	c.write(part)
}

func (c *chatWriter) write(part wirePart) {
	data, err := json.Marshal(part)
	if err != nil {
		return
	}
	fmt.Fprintf(c.w, "event: %s\ndata: %s\n\n", part.Type, data)
	if c.flusher != nil {
		c.flusher.Flush()
	}
}
