package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// AttachmentStore implements catalog.AttachmentStore: it resolves an
// attachment id to its uploaded FILE page row, then reads the underlying
// bytes off disk from root/<contentHash>, mirroring the layout
// internal/upload's Processor writes to (the content-addressed path it
// returns as Page.FilePath).
type AttachmentStore struct {
	db   *sql.DB
	root string
}

func NewAttachmentStore(db *sql.DB) *AttachmentStore { return &AttachmentStore{db: db} }

// WithRoot sets the file-storage root directory (AppConfig.FileStoragePath).
func (s *AttachmentStore) WithRoot(root string) *AttachmentStore {
	s.root = root
	return s
}

func (s *AttachmentStore) ReadAttachment(ctx context.Context, attachmentID string) (string, string, []byte, error) {
	var name, mediaType, contentHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(original_file_name, title), COALESCE(mime_type, ''), COALESCE(file_path, '')
		FROM pages WHERE id = $1 AND type = 'FILE' AND NOT is_trashed`, attachmentID,
	).Scan(&name, &mediaType, &contentHash)
	if err == sql.ErrNoRows {
		return "", "", nil, fmt.Errorf("attachment %s not found", attachmentID)
	}
	if err != nil {
		return "", "", nil, fmt.Errorf("lookup attachment: %w", err)
	}
	if contentHash == "" {
		return "", "", nil, fmt.Errorf("attachment %s has no stored content", attachmentID)
	}

	data, err := os.ReadFile(filepath.Join(s.root, contentHash))
	if err != nil {
		return "", "", nil, fmt.Errorf("read attachment content: %w", err)
	}
	return name, mediaType, data, nil
}
