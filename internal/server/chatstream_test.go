package server

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagespace/gateway/internal/orchestrator"
)

func TestChatWriter_StreamStartSetsHeaderBeforeFirstChunk(t *testing.T) {
	w := httptest.NewRecorder()
	cw := newChatWriter(w)

	cw.emit(orchestrator.Event{Kind: orchestrator.EventStreamStart, StreamID: "s1"})
	assert.Equal(t, "s1", w.Header().Get("X-Stream-Id"))
	assert.Empty(t, w.Body.String())

	cw.emit(orchestrator.Event{Kind: orchestrator.EventTextDelta, StreamID: "s1", Text: "hello"})
	body := w.Body.String()
	assert.Contains(t, body, "event: text")
	assert.Contains(t, body, `"text":"hello"`)
}

func TestChatWriter_EmitsToolCallAndResultAndFinish(t *testing.T) {
	w := httptest.NewRecorder()
	cw := newChatWriter(w)

	cw.emit(orchestrator.Event{Kind: orchestrator.EventToolCall, ToolCallID: "t1", ToolName: "page_create", Arguments: `{}`})
	cw.emit(orchestrator.Event{Kind: orchestrator.EventToolResult, ToolCallID: "t1", Result: "ok"})
	cw.emit(orchestrator.Event{Kind: orchestrator.EventFinish, FinishReason: "stop"})

	body := w.Body.String()
	assert.True(t, strings.Index(body, "event: tool-call") < strings.Index(body, "event: tool-result"))
	assert.True(t, strings.Index(body, "event: tool-result") < strings.Index(body, "event: finish"))
	assert.Contains(t, body, `"finishReason":"stop"`)
}
