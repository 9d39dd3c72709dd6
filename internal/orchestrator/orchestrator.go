// Package orchestrator drives a single streaming chat turn: it calls the
// provider, relays chunks to the caller in order, dispatches tool calls the
// model emits, and persists the resulting assistant message on finish. It is
// built on the teacher's session.Processor/runLoop/processStream trio,
// adapted to PageSpace's ChatMessage envelope and abort-registry wiring in
// place of the teacher's bare context.Context cancellation.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/pagespace/gateway/internal/abort"
	"github.com/pagespace/gateway/internal/provider"
	"github.com/pagespace/gateway/internal/tool"
	"github.com/pagespace/gateway/pkg/types"
)

const (
	// MaxSteps bounds the number of model-call/tool-dispatch iterations.
	MaxSteps = 50
	// MaxRetries bounds the number of API-error retries per step.
	MaxRetries = 3
	// RetryInitialInterval is the first backoff interval.
	RetryInitialInterval = time.Second
	// RetryMaxInterval caps a single backoff interval.
	RetryMaxInterval = 30 * time.Second
	// RetryMaxElapsedTime caps total time spent retrying a single step.
	RetryMaxElapsedTime = 2 * time.Minute
	// MaxContextTokens is the rough token budget before trimming history.
	MaxContextTokens = 150000
)

func newRetryBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = RetryInitialInterval
	b.MaxInterval = RetryMaxInterval
	b.MaxElapsedTime = RetryMaxElapsedTime
	b.RandomizationFactor = 0.5
	b.Multiplier = 2.0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, MaxRetries), ctx)
}

// MessageStore persists the turns an Orchestrator produces. The concrete
// implementation is the Postgres chat_messages repository.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *types.ChatMessage) error
}

// Request is everything one streaming turn needs. Tools is the effective
// tool map the caller has already built: internal catalog entries merged
// with MCP wrappers, filtered by isReadOnly/webSearchEnabled, and name
// sanitized for Provider (spec §4.9 step 4).
type Request struct {
	StreamID    string
	UserID      string
	PageID      string
	Provider    provider.Provider
	Model       string
	SystemPrompt string
	History     []*types.ChatMessage
	UserMessage *types.ChatMessage
	Tools       map[string]tool.Tool
	MaxTokens   int
	Temperature float64
}

// Orchestrator runs streaming chat turns.
type Orchestrator struct {
	Aborts   *abort.Registry
	Messages MessageStore
}

// New constructs an Orchestrator.
func New(aborts *abort.Registry, messages MessageStore) *Orchestrator {
	return &Orchestrator{Aborts: aborts, Messages: messages}
}

// Run allocates a stream entry, drives the agentic loop to completion (or
// abort), and returns the stream id it allocated. emit is called for every
// event in provider order; it must not block for long since the loop
// persists as it goes.
func (o *Orchestrator) Run(ctx context.Context, req *Request, emit Sink) (string, error) {
	streamID, cctx, err := o.Aborts.Create(ctx, req.UserID, req.StreamID)
	if err != nil {
		return "", fmt.Errorf("allocate stream: %w", err)
	}
	emit(Event{Kind: EventStreamStart, StreamID: streamID})
	defer o.Aborts.Remove(streamID)

	acc := newAccumulator()
	messages := buildInitialMessages(req)
	tools := resolveTools(cctx, req.Tools)

	step := 0
	retryBackoff := newRetryBackoff(cctx)

	for {
		select {
		case <-cctx.Done():
			o.persist(ctx, req, acc, "aborted")
			emit(Event{Kind: EventFinish, StreamID: streamID, FinishReason: "aborted"})
			return streamID, cctx.Err()
		default:
		}

		if step >= MaxSteps {
			o.persist(ctx, req, acc, "max_steps")
			emit(Event{Kind: EventFinish, StreamID: streamID, FinishReason: "max_steps"})
			return streamID, fmt.Errorf("max steps exceeded")
		}

		if shouldCompact(messages) {
			messages = compact(req.SystemPrompt, messages)
		}

		creq := &provider.CompletionRequest{
			Model:       req.Model,
			Messages:    messages,
			Tools:       tools,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		}

		stream, err := req.Provider.CreateCompletion(cctx, creq)
		if err != nil {
			if !o.retryOrFail(cctx, retryBackoff, req, acc, emit, streamID, err) {
				return streamID, err
			}
			continue
		}

		finishReason, turnMessages, toolErr := o.processStream(cctx, stream, acc, emit, streamID)
		stream.Close()

		if toolErr != nil {
			if !o.retryOrFail(cctx, retryBackoff, req, acc, emit, streamID, toolErr) {
				return streamID, toolErr
			}
			continue
		}
		retryBackoff.Reset()
		messages = append(messages, turnMessages...)

		switch finishReason {
		case "stop", "end_turn":
			o.persist(ctx, req, acc, "stop")
			emit(Event{Kind: EventFinish, StreamID: streamID, FinishReason: "stop"})
			return streamID, nil

		case "tool_use", "tool_calls":
			results := o.dispatchToolCalls(cctx, req, acc, emit, streamID)
			messages = append(messages, results...)
			step++
			continue

		case "max_tokens", "length":
			o.persist(ctx, req, acc, "max_tokens")
			emit(Event{Kind: EventFinish, StreamID: streamID, FinishReason: "max_tokens"})
			return streamID, nil

		case "error":
			if !o.retryOrFail(cctx, retryBackoff, req, acc, emit, streamID, fmt.Errorf("stream reported finish reason \"error\"")) {
				return streamID, fmt.Errorf("stream error: max retries exceeded")
			}
			continue

		default:
			o.persist(ctx, req, acc, finishReason)
			emit(Event{Kind: EventFinish, StreamID: streamID, FinishReason: finishReason})
			return streamID, nil
		}
	}
}

// retryOrFail advances retryBackoff; it returns false (caller should give
// up) once the backoff is exhausted, after persisting and emitting a
// terminal error event.
func (o *Orchestrator) retryOrFail(ctx context.Context, b backoff.BackOff, req *Request, acc *accumulator, emit Sink, streamID string, cause error) bool {
	next := b.NextBackOff()
	if next == backoff.Stop {
		log.Error().Err(cause).Str("streamId", streamID).Msg("orchestrator giving up after retries")
		o.persist(ctx, req, acc, "error")
		emit(Event{Kind: EventFinish, StreamID: streamID, FinishReason: "error", Err: cause})
		return false
	}
	log.Warn().Err(cause).Dur("backoff", next).Str("streamId", streamID).Msg("orchestrator retrying")
	time.Sleep(next)
	return true
}

func (o *Orchestrator) persist(ctx context.Context, req *Request, acc *accumulator, finishReason string) {
	if o.Messages == nil {
		return
	}
	msg := acc.toChatMessage(req.PageID)
	if err := o.Messages.SaveMessage(ctx, msg); err != nil {
		log.Error().Err(err).Str("pageId", req.PageID).Msg("failed to persist assistant message")
	}
}

func buildInitialMessages(req *Request) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, &schema.Message{Role: schema.System, Content: req.SystemPrompt})
	}
	msgs = append(msgs, provider.ConvertToEinoMessages(req.History)...)
	if req.UserMessage != nil {
		msgs = append(msgs, provider.ConvertToEinoMessages([]*types.ChatMessage{req.UserMessage})...)
	}
	return msgs
}

func resolveTools(ctx context.Context, tools map[string]tool.Tool) []*schema.ToolInfo {
	if len(tools) == 0 {
		return nil
	}
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.EinoTool().Info(ctx)
		if err != nil {
			log.Warn().Err(err).Str("tool", t.ID()).Msg("dropping tool with unresolvable schema")
			continue
		}
		infos = append(infos, info)
	}
	return infos
}

// shouldCompact is a rough proxy for the teacher's token-accounted version:
// without per-message usage metadata available pre-call, it estimates one
// token per four characters of content.
func shouldCompact(messages []*schema.Message) bool {
	total := 0
	for _, m := range messages {
		total += len(m.Content) / 4
	}
	return total > MaxContextTokens
}

// compact keeps the system prompt plus the most recent half of the
// conversation, dropping the oldest turns first.
func compact(systemPrompt string, messages []*schema.Message) []*schema.Message {
	var system *schema.Message
	rest := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == schema.System {
			system = m
			continue
		}
		rest = append(rest, m)
	}
	keep := len(rest) / 2
	if keep < 1 {
		keep = len(rest)
	}
	trimmed := rest[len(rest)-keep:]

	out := make([]*schema.Message, 0, len(trimmed)+1)
	if system != nil {
		out = append(out, system)
	} else if systemPrompt != "" {
		out = append(out, &schema.Message{Role: schema.System, Content: systemPrompt})
	}
	return append(out, trimmed...)
}

// dispatchToolCalls executes every tool call the last step accumulated,
// folding results back as schema.Message tool turns for the next request.
// Unknown tool names are surfaced as a tool error without terminating the
// stream (spec §4.9).
func (o *Orchestrator) dispatchToolCalls(ctx context.Context, req *Request, acc *accumulator, emit Sink, streamID string) []*schema.Message {
	calls := acc.pendingToolCalls()
	results := make([]*schema.Message, 0, len(calls))

	for _, call := range calls {
		output, isError := o.executeOne(ctx, req, call)
		acc.recordToolResult(call.ID, output, isError)
		emit(Event{
			Kind:       EventToolResult,
			StreamID:   streamID,
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Result:     output,
			IsError:    isError,
		})
		results = append(results, &schema.Message{
			Role:       schema.Tool,
			Content:    output,
			ToolCallID: call.ID,
		})
	}
	return results
}

func (o *Orchestrator) executeOne(ctx context.Context, req *Request, call toolCall) (output string, isError bool) {
	t, ok := req.Tools[call.Name]
	if !ok {
		return fmt.Sprintf("unknown tool: %s", call.Name), true
	}

	abortCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(abortCh)
	}()

	toolCtx := &tool.Context{
		SessionID: req.PageID,
		MessageID: req.PageID,
		CallID:    call.ID,
		AbortCh:   abortCh,
	}

	res, err := t.Execute(ctx, json.RawMessage(call.Arguments), toolCtx)
	if err != nil {
		return err.Error(), true
	}
	if res.Error != nil {
		return res.Error.Error(), true
	}
	return res.Output, false
}
