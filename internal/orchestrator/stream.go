package orchestrator

import (
	"context"
	"io"

	"github.com/cloudwego/eino/schema"

	"github.com/pagespace/gateway/internal/provider"
)

// EventKind discriminates the events Run emits to its Sink, mirroring the
// teacher's StreamEvent variants (stream.go) collapsed into one struct for
// transport over SSE.
type EventKind string

const (
	EventStreamStart EventKind = "stream_start"
	EventTextDelta   EventKind = "text_delta"
	EventToolCall    EventKind = "tool_call"
	EventToolResult  EventKind = "tool_result"
	EventFinish      EventKind = "finish"
)

// Event is one unit relayed to the client, in the exact order the provider
// emitted it (spec §5 ordering guarantee).
type Event struct {
	Kind       EventKind
	StreamID   string
	Text       string
	ToolCallID string
	ToolName   string
	Arguments  string
	Result     string
	IsError    bool
	FinishReason string
	Err        error
}

// Sink receives Events as the loop produces them.
type Sink func(Event)

// processStream drains one provider stream, relaying text/tool-call chunks
// to emit and folding them into acc, until EOF or an error. It returns the
// provider's finish reason, the accumulated completion turn appended as a
// schema.Message for the next request's history, and any stream-level
// error (which the caller retries, per the teacher's processStream).
func (o *Orchestrator) processStream(ctx context.Context, stream *provider.CompletionStream, acc *accumulator, emit Sink, streamID string) (finishReason string, messages []*schema.Message, err error) {
	for {
		select {
		case <-ctx.Done():
			return "error", nil, ctx.Err()
		default:
		}

		msg, recvErr := stream.Recv()
		if recvErr == io.EOF {
			break
		}
		if recvErr != nil {
			return "error", nil, recvErr
		}

		if msg.Content != "" {
			acc.appendText(msg.Content)
			emit(Event{Kind: EventTextDelta, StreamID: streamID, Text: msg.Content})
		}

		for _, tc := range msg.ToolCalls {
			complete := acc.accumulateToolCall(tc)
			if complete != nil {
				emit(Event{
					Kind:       EventToolCall,
					StreamID:   streamID,
					ToolCallID: complete.ID,
					ToolName:   complete.Name,
					Arguments:  complete.Arguments,
				})
			}
		}

		if msg.ResponseMeta != nil && msg.ResponseMeta.FinishReason != "" {
			finishReason = msg.ResponseMeta.FinishReason
		}
	}

	if finishReason == "" {
		if acc.hasPendingToolCalls() {
			finishReason = "tool_calls"
		} else {
			finishReason = "stop"
		}
	}

	return finishReason, []*schema.Message{acc.assistantTurn()}, nil
}
