// Package db backs every store interface the rest of the gateway defines
// (auth.SessionStore/UserStore/MCPStore, provider.KeyStore, catalog's store
// group, orchestrator.MessageStore, upload.QuotaService/Pages, and
// cache.PageTreeLoader/AgentAwarenessLoader) with Postgres. Grounded on
// vanducng-goclaw's internal/store/pg package: a plain *sql.DB handed to
// each store constructor, dollar-placeholder queries, and a
// golang-migrate-driven migration runner, applied to the gateway's
// relational page/drive/message schema.
package db

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pagespace/gateway/internal/catalog"
)

// Open connects to dsn using the pgx stdlib driver and verifies the
// connection with a ping.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies every pending migration under migrationsDir to the
// database at dsn.
func Migrate(dsn, migrationsDir string) error {
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "pgx", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Stores is the top-level container the HTTP gateway (C15) wires up and
// hands to every component that needs persistence.
type Stores struct {
	Users        *UserStore
	Keys         *KeyStore
	Sessions     *SessionStore
	MCP          *MCPStore
	Drives       *DriveStore
	Pages        *PageStore
	Messages     *MessageStore
	Activity     *ActivityStore
	Attachments  *AttachmentStore
	PageTree     *PageTreeStore
	Schema       *SchemaStore
}

// NewStores constructs every repository over a single shared connection.
// authSecret keys the session/MCP token lookup hash (internal/auth.HashToken);
// fileStorageRoot is the directory uploaded file content is addressed under
// (AppConfig.FileStoragePath).
func NewStores(conn *sql.DB, authSecret, fileStorageRoot string) *Stores {
	return &Stores{
		Users:       NewUserStore(conn),
		Keys:        NewKeyStore(conn),
		Sessions:    NewSessionStore(conn, authSecret),
		MCP:         NewMCPStore(conn),
		Drives:      NewDriveStore(conn),
		Pages:       NewPageStore(conn),
		Messages:    NewMessageStore(conn),
		Activity:    NewActivityStore(conn),
		Attachments: NewAttachmentStore(conn).WithRoot(fileStorageRoot),
		PageTree:    NewPageTreeStore(conn),
		Schema:      NewSchemaStore(conn),
	}
}

// CatalogDependencies adapts Stores into the Dependencies shape
// internal/catalog.New expects.
func (s *Stores) CatalogDependencies() catalog.Dependencies {
	return catalog.Dependencies{
		Pages:       s.Pages,
		Search:      s.Pages,
		Activity:    s.Activity,
		Drives:      s.Drives,
		Agents:      s.Drives,
		Attachments: s.Attachments,
		Schema:      s.Schema,
	}
}
