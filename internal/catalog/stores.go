// Package catalog aggregates the gateway's internal tools into the flat
// name -> tool map the AI orchestrator exposes to a model, grounded on the
// teacher's internal/tool registry. Catalog tools delegate domain
// operations to small store interfaces backed by internal/db.
package catalog

import "context"

// PageRef is the minimal page identity a catalog tool operates on.
type PageRef struct {
	ID       string
	DriveID  string
	Path     string
	Title    string
	Type     string
	ParentID string
}

// PageStore backs the page-CRUD tool group.
type PageStore interface {
	Create(ctx context.Context, driveID, parentID, title, pageType, content string) (*PageRef, error)
	Update(ctx context.Context, pageID, content string) (*PageRef, error)
	Move(ctx context.Context, pageID, newParentID string) (*PageRef, error)
	Trash(ctx context.Context, pageID string) error
	Restore(ctx context.Context, pageID string) error
	List(ctx context.Context, driveID, parentID string) ([]PageRef, error)
}

// SearchEngine backs the search tool.
type SearchEngine interface {
	Search(ctx context.Context, driveID, query string, limit int) ([]PageRef, error)
}

// ActivityStore backs the activity-log-read tool.
type ActivityStore interface {
	RecentActivity(ctx context.Context, driveID string, limit int) ([]ActivityEntry, error)
}

// ActivityEntry is a single activity-log row surfaced to the model.
type ActivityEntry struct {
	ID        string
	Actor     string
	Action    string
	PageID    string
	Timestamp string
}

// DriveStore backs the drive-read tool.
type DriveStore interface {
	Describe(ctx context.Context, driveID string) (DriveInfo, error)
}

// DriveInfo is the drive metadata surfaced to the model.
type DriveInfo struct {
	ID   string
	Name string
	Slug string
}

// AgentStore backs the agent-list tool.
type AgentStore interface {
	VisibleAgents(ctx context.Context, driveID, userID string) ([]AgentInfo, error)
}

// AgentInfo describes a visible AI_CHAT-agent page.
type AgentInfo struct {
	ID         string
	Title      string
	Definition string
}

// AttachmentStore backs the attachment-read tool.
type AttachmentStore interface {
	ReadAttachment(ctx context.Context, attachmentID string) (name string, mediaType string, data []byte, err error)
}

// SchemaDescriber backs the diagnostic describe_schema tool.
type SchemaDescriber interface {
	DescribeSchema(ctx context.Context) (string, error)
}
