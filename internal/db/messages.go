package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/pagespace/gateway/pkg/types"
)

// MessageStore implements orchestrator.MessageStore: every persisted turn
// of a streaming run (assistant text, tool calls, tool results, and the
// terminal status message) is a single upsert against chat_messages.
type MessageStore struct{ db *sql.DB }

func NewMessageStore(db *sql.DB) *MessageStore { return &MessageStore{db: db} }

func (s *MessageStore) SaveMessage(ctx context.Context, msg *types.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	toolCalls, err := json.Marshal(msg.ToolCalls)
	if err != nil {
		return fmt.Errorf("marshal tool calls: %w", err)
	}
	toolResults, err := json.Marshal(msg.ToolResults)
	if err != nil {
		return fmt.Errorf("marshal tool results: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, page_id, role, content, tool_calls, tool_results,
		                            created_at, is_active, message_type, source_agent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			tool_calls = EXCLUDED.tool_calls,
			tool_results = EXCLUDED.tool_results,
			is_active = EXCLUDED.is_active`,
		msg.ID, msg.PageID, msg.Role, msg.Content, toolCalls, toolResults,
		msg.CreatedAt, msg.IsActive, nullIfEmpty(msg.MessageType), msg.SourceAgentID)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// History loads a page's active chat turns in creation order, the shape
// orchestrator.Request.History expects when resuming a conversation.
func (s *MessageStore) History(ctx context.Context, pageID string) ([]*types.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_id, role, content, tool_calls, tool_results, created_at,
		       is_active, COALESCE(message_type, ''), source_agent_id
		FROM chat_messages
		WHERE page_id = $1 AND is_active
		ORDER BY created_at ASC`, pageID)
	if err != nil {
		return nil, fmt.Errorf("load message history: %w", err)
	}
	defer rows.Close()

	var history []*types.ChatMessage
	for rows.Next() {
		msg := &types.ChatMessage{}
		var toolCalls, toolResults []byte
		var sourceAgent sql.NullString
		if err := rows.Scan(&msg.ID, &msg.PageID, &msg.Role, &msg.Content, &toolCalls, &toolResults,
			&msg.CreatedAt, &msg.IsActive, &msg.MessageType, &sourceAgent); err != nil {
			return nil, err
		}
		if len(toolCalls) > 0 {
			if err := json.Unmarshal(toolCalls, &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("unmarshal tool calls: %w", err)
			}
		}
		if len(toolResults) > 0 {
			if err := json.Unmarshal(toolResults, &msg.ToolResults); err != nil {
				return nil, fmt.Errorf("unmarshal tool results: %w", err)
			}
		}
		if sourceAgent.Valid {
			msg.SourceAgentID = &sourceAgent.String
		}
		history = append(history, msg)
	}
	return history, rows.Err()
}
