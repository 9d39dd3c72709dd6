package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pagespace/gateway/internal/tool"
)

func jsonErr(format string, args ...any) (*tool.Result, error) {
	err := fmt.Errorf(format, args...)
	return &tool.Result{Error: err, Output: err.Error()}, err
}

func newPageCreateTool(store PageStore) tool.Tool {
	return tool.NewBaseTool("page_create",
		"Creates a new page within a drive. FILE-type pages cannot be created this way.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"driveId": {"type": "string", "description": "Target drive id"},
				"parentId": {"type": "string", "description": "Parent page id, or empty for the drive root"},
				"title": {"type": "string", "description": "Page title"},
				"type": {"type": "string", "description": "One of the eight page types"},
				"content": {"type": "string", "description": "Initial page content"}
			},
			"required": ["driveId", "title", "type"]
		}`),
		func(ctx context.Context, input json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			var in struct {
				DriveID  string `json:"driveId"`
				ParentID string `json:"parentId"`
				Title    string `json:"title"`
				Type     string `json:"type"`
				Content  string `json:"content"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return jsonErr("page_create: invalid input: %w", err)
			}
			if in.Type == "FILE" {
				return jsonErr("page_create: FILE-type pages cannot be created this way")
			}
			ref, err := store.Create(ctx, in.DriveID, in.ParentID, in.Title, in.Type, in.Content)
			if err != nil {
				return jsonErr("page_create: %w", err)
			}
			return &tool.Result{Title: "Page created", Output: fmt.Sprintf("created page %s (%s)", ref.ID, ref.Title)}, nil
		})
}

func newPageUpdateTool(store PageStore) tool.Tool {
	return tool.NewBaseTool("page_update",
		"Updates an existing page's content. FILE-type pages are read-only and reject updates.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"pageId": {"type": "string", "description": "Page id to update"},
				"content": {"type": "string", "description": "Replacement content"}
			},
			"required": ["pageId", "content"]
		}`),
		func(ctx context.Context, input json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			var in struct {
				PageID  string `json:"pageId"`
				Content string `json:"content"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return jsonErr("page_update: invalid input: %w", err)
			}
			ref, err := store.Update(ctx, in.PageID, in.Content)
			if err != nil {
				return jsonErr("page_update: %w", err)
			}
			return &tool.Result{Title: "Page updated", Output: fmt.Sprintf("updated page %s", ref.ID)}, nil
		})
}

func newPageMoveTool(store PageStore) tool.Tool {
	return tool.NewBaseTool("page_move",
		"Moves a page to a new parent within the same drive.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"pageId": {"type": "string", "description": "Page id to move"},
				"newParentId": {"type": "string", "description": "Destination parent page id"}
			},
			"required": ["pageId", "newParentId"]
		}`),
		func(ctx context.Context, input json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			var in struct {
				PageID      string `json:"pageId"`
				NewParentID string `json:"newParentId"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return jsonErr("page_move: invalid input: %w", err)
			}
			ref, err := store.Move(ctx, in.PageID, in.NewParentID)
			if err != nil {
				return jsonErr("page_move: %w", err)
			}
			return &tool.Result{Title: "Page moved", Output: fmt.Sprintf("moved page %s under %s", ref.ID, in.NewParentID)}, nil
		})
}

func newPageTrashTool(store PageStore) tool.Tool {
	return tool.NewBaseTool("page_trash",
		"Moves a page to the drive's trash. The page can be restored until the drive is purged.",
		json.RawMessage(`{
			"type": "object",
			"properties": {"pageId": {"type": "string", "description": "Page id to trash"}},
			"required": ["pageId"]
		}`),
		func(ctx context.Context, input json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			var in struct {
				PageID string `json:"pageId"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return jsonErr("page_trash: invalid input: %w", err)
			}
			if err := store.Trash(ctx, in.PageID); err != nil {
				return jsonErr("page_trash: %w", err)
			}
			return &tool.Result{Title: "Page trashed", Output: fmt.Sprintf("trashed page %s", in.PageID)}, nil
		})
}

func newPageRestoreTool(store PageStore) tool.Tool {
	return tool.NewBaseTool("page_restore",
		"Restores a previously trashed page.",
		json.RawMessage(`{
			"type": "object",
			"properties": {"pageId": {"type": "string", "description": "Page id to restore"}},
			"required": ["pageId"]
		}`),
		func(ctx context.Context, input json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			var in struct {
				PageID string `json:"pageId"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return jsonErr("page_restore: invalid input: %w", err)
			}
			if err := store.Restore(ctx, in.PageID); err != nil {
				return jsonErr("page_restore: %w", err)
			}
			return &tool.Result{Title: "Page restored", Output: fmt.Sprintf("restored page %s", in.PageID)}, nil
		})
}

func newPageListTool(store PageStore) tool.Tool {
	return tool.NewBaseTool("page_list",
		"Lists the immediate children of a page, or a drive's root pages when parentId is omitted.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"driveId": {"type": "string", "description": "Drive to list within"},
				"parentId": {"type": "string", "description": "Parent page id, or empty for the drive root"}
			},
			"required": ["driveId"]
		}`),
		func(ctx context.Context, input json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			var in struct {
				DriveID  string `json:"driveId"`
				ParentID string `json:"parentId"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return jsonErr("page_list: invalid input: %w", err)
			}
			refs, err := store.List(ctx, in.DriveID, in.ParentID)
			if err != nil {
				return jsonErr("page_list: %w", err)
			}
			out, _ := json.Marshal(refs)
			return &tool.Result{Title: "Pages listed", Output: string(out)}, nil
		})
}

func newSearchTool(engine SearchEngine) tool.Tool {
	return tool.NewBaseTool("search",
		"Searches page titles and content within a drive.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"driveId": {"type": "string", "description": "Drive to search within"},
				"query": {"type": "string", "description": "Search query"},
				"limit": {"type": "integer", "description": "Maximum results (default 20)"}
			},
			"required": ["driveId", "query"]
		}`),
		func(ctx context.Context, input json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			var in struct {
				DriveID string `json:"driveId"`
				Query   string `json:"query"`
				Limit   int    `json:"limit"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return jsonErr("search: invalid input: %w", err)
			}
			if in.Limit <= 0 {
				in.Limit = 20
			}
			refs, err := engine.Search(ctx, in.DriveID, in.Query, in.Limit)
			if err != nil {
				return jsonErr("search: %w", err)
			}
			out, _ := json.Marshal(refs)
			return &tool.Result{Title: "Search results", Output: string(out)}, nil
		})
}

func newActivityLogReadTool(store ActivityStore) tool.Tool {
	return tool.NewBaseTool("activity_log_read",
		"Reads recent activity log entries for a drive.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"driveId": {"type": "string", "description": "Drive to read activity for"},
				"limit": {"type": "integer", "description": "Maximum entries (default 20)"}
			},
			"required": ["driveId"]
		}`),
		func(ctx context.Context, input json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			var in struct {
				DriveID string `json:"driveId"`
				Limit   int    `json:"limit"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return jsonErr("activity_log_read: invalid input: %w", err)
			}
			if in.Limit <= 0 {
				in.Limit = 20
			}
			entries, err := store.RecentActivity(ctx, in.DriveID, in.Limit)
			if err != nil {
				return jsonErr("activity_log_read: %w", err)
			}
			out, _ := json.Marshal(entries)
			return &tool.Result{Title: "Activity log", Output: string(out)}, nil
		})
}

func newDriveReadTool(store DriveStore) tool.Tool {
	return tool.NewBaseTool("drive_read",
		"Reads a drive's metadata (name, slug, id).",
		json.RawMessage(`{
			"type": "object",
			"properties": {"driveId": {"type": "string", "description": "Drive id"}},
			"required": ["driveId"]
		}`),
		func(ctx context.Context, input json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			var in struct {
				DriveID string `json:"driveId"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return jsonErr("drive_read: invalid input: %w", err)
			}
			info, err := store.Describe(ctx, in.DriveID)
			if err != nil {
				return jsonErr("drive_read: %w", err)
			}
			out, _ := json.Marshal(info)
			return &tool.Result{Title: "Drive info", Output: string(out)}, nil
		})
}

func newAgentListTool(store AgentStore) tool.Tool {
	return tool.NewBaseTool("agent_list",
		"Lists AI_CHAT agent pages visible to the current user within a drive.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"driveId": {"type": "string", "description": "Drive to list agents within"},
				"userId": {"type": "string", "description": "Requesting user id"}
			},
			"required": ["driveId", "userId"]
		}`),
		func(ctx context.Context, input json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			var in struct {
				DriveID string `json:"driveId"`
				UserID  string `json:"userId"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return jsonErr("agent_list: invalid input: %w", err)
			}
			agents, err := store.VisibleAgents(ctx, in.DriveID, in.UserID)
			if err != nil {
				return jsonErr("agent_list: %w", err)
			}
			out, _ := json.Marshal(agents)
			return &tool.Result{Title: "Visible agents", Output: string(out)}, nil
		})
}

func newAttachmentReadTool(store AttachmentStore) tool.Tool {
	return tool.NewBaseTool("attachment_read",
		"Reads an uploaded attachment's content by id.",
		json.RawMessage(`{
			"type": "object",
			"properties": {"attachmentId": {"type": "string", "description": "Attachment id"}},
			"required": ["attachmentId"]
		}`),
		func(ctx context.Context, input json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			var in struct {
				AttachmentID string `json:"attachmentId"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return jsonErr("attachment_read: invalid input: %w", err)
			}
			name, mediaType, data, err := store.ReadAttachment(ctx, in.AttachmentID)
			if err != nil {
				return jsonErr("attachment_read: %w", err)
			}
			return &tool.Result{
				Title:  "Attachment read",
				Output: fmt.Sprintf("%s (%s, %d bytes)", name, mediaType, len(data)),
				Attachments: []tool.Attachment{{
					Filename:  name,
					MediaType: mediaType,
				}},
			}, nil
		})
}

func newDescribeSchemaTool(describer SchemaDescriber) tool.Tool {
	return tool.NewBaseTool("describe_schema",
		"Diagnostic tool: describes the current data model (page types, drive structure) for the assistant's own reference.",
		json.RawMessage(`{"type": "object", "properties": {}}`),
		func(ctx context.Context, _ json.RawMessage, _ *tool.Context) (*tool.Result, error) {
			desc, err := describer.DescribeSchema(ctx)
			if err != nil {
				return jsonErr("describe_schema: %w", err)
			}
			return &tool.Result{Title: "Schema", Output: desc}, nil
		})
}
