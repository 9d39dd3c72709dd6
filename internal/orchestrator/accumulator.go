package orchestrator

import (
	"github.com/cloudwego/eino/schema"

	"github.com/pagespace/gateway/pkg/types"
)

// toolCall is one tool invocation accumulated from streamed deltas, indexed
// by the provider's tool_call index the way the teacher's processMessageChunk
// tracks eino's Index-keyed deltas.
type toolCall struct {
	ID        string
	Name      string
	Arguments string
	resultSet bool
	result    string
	isError   bool
}

// accumulator collects one assistant turn: every text delta concatenated
// into a single text part, plus tool calls and their results in first-seen
// order. It does not record where text fell relative to the tool calls.
type accumulator struct {
	text       string
	callOrder  []string // tool call IDs in first-seen order
	calls      map[string]*toolCall
	indexToID  map[int]string
}

func newAccumulator() *accumulator {
	return &accumulator{
		calls:     make(map[string]*toolCall),
		indexToID: make(map[int]string),
	}
}

func (a *accumulator) appendText(delta string) {
	a.text += delta
}

// accumulateToolCall folds one schema.ToolCall delta chunk into the
// in-progress call tracked by tc.Index (eino's streaming convention: the
// start chunk carries ID+Name, delta chunks carry only Arguments). It
// returns the completed toolCall once arguments parse as valid JSON, so the
// caller can emit exactly one tool_call event per call; nil otherwise.
func (a *accumulator) accumulateToolCall(tc schema.ToolCall) *toolCall {
	var id string
	if tc.Index != nil {
		if existing, ok := a.indexToID[*tc.Index]; ok {
			id = existing
		} else if tc.ID != "" {
			id = tc.ID
			a.indexToID[*tc.Index] = id
		}
	} else {
		id = tc.ID
	}
	if id == "" {
		return nil
	}

	call, exists := a.calls[id]
	if !exists {
		call = &toolCall{ID: id, Name: tc.Function.Name}
		a.calls[id] = call
		a.callOrder = append(a.callOrder, id)
	}
	if tc.Function.Name != "" {
		call.Name = tc.Function.Name
	}
	if tc.Function.Arguments != "" {
		call.Arguments += tc.Function.Arguments
	}

	if call.Arguments != "" && isCompleteJSON(call.Arguments) {
		return call
	}
	return nil
}

func isCompleteJSON(s string) bool {
	depth := 0
	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		}
	}
	return depth == 0 && !inString
}

func (a *accumulator) hasPendingToolCalls() bool {
	for _, c := range a.calls {
		if !c.resultSet {
			return true
		}
	}
	return false
}

// pendingToolCalls returns every accumulated call that has not yet had a
// result recorded, in first-seen order.
func (a *accumulator) pendingToolCalls() []toolCall {
	out := make([]toolCall, 0, len(a.callOrder))
	for _, id := range a.callOrder {
		c := a.calls[id]
		if !c.resultSet {
			out = append(out, *c)
		}
	}
	return out
}

func (a *accumulator) recordToolResult(id, output string, isError bool) {
	if c, ok := a.calls[id]; ok {
		c.result = output
		c.isError = isError
		c.resultSet = true
	}
}

// assistantTurn renders the accumulated text and any completed tool calls
// as a single schema.Message, for inclusion in the next request's history.
func (a *accumulator) assistantTurn() *schema.Message {
	msg := &schema.Message{Role: schema.Assistant, Content: a.text}
	for _, id := range a.callOrder {
		c := a.calls[id]
		msg.ToolCalls = append(msg.ToolCalls, schema.ToolCall{
			ID: c.ID,
			Function: schema.FunctionCall{
				Name:      c.Name,
				Arguments: c.Arguments,
			},
		})
	}
	return msg
}

// toChatMessage renders the full accumulated turn (text, tool calls, tool
// results) as a persisted ChatMessage. Its partsOrder lists the text part
// first (when there is text), then one tool part per call in first-seen
// order.
func (a *accumulator) toChatMessage(pageID string) *types.ChatMessage {
	msg := &types.ChatMessage{
		PageID: pageID,
		Role:   types.RoleAssistantMsg,
	}

	env := types.Envelope{}
	index := 0

	if a.text != "" {
		env.TextParts = append(env.TextParts, a.text)
		env.PartsOrder = append(env.PartsOrder, types.PartRef{Index: index, Type: types.PartKindText})
		index++
	}

	for _, id := range a.callOrder {
		c := a.calls[id]
		msg.ToolCalls = append(msg.ToolCalls, types.ToolCall{
			ToolCallID: c.ID,
			Name:       c.Name,
			Arguments:  []byte(c.Arguments),
		})
		if c.resultSet {
			msg.ToolResults = append(msg.ToolResults, types.ToolResult{
				ToolCallID: c.ID,
				Output:     c.result,
				IsError:    c.isError,
			})
		}
		env.PartsOrder = append(env.PartsOrder, types.PartRef{
			Index:      index,
			Type:       types.ToolPartKind(c.Name),
			ToolCallID: c.ID,
		})
		index++
	}

	encoded, err := env.Encode()
	if err != nil {
		msg.Content = a.text
		return msg
	}
	msg.Content = encoded
	return msg
}
