package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

// JSONL file names in the data directory.
const (
	optionsJSONL  = "options.jsonl"
	postsJSONL    = "posts.jsonl"
	postMetaJSONL = "postmeta.jsonl"

	dbFileName = "site.db"
)

var _ types.Site = (*Backend)(nil)

// Backend implements types.Site using SQLite as the query engine and JSONL
// files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	syncStrategy string
	// dirty holds tables written since the last persist under on_close.
	dirty map[string]bool

	now func() time.Time
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		dirty: make(map[string]bool),
		now:   time.Now,
	}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, rebuilds the SQLite database, and
// loads the JSONL files into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	config.DataDir = dataDir

	// The database is a cache of the JSONL files; start fresh every time.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating index: %w", err)
		}
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}

	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.syncStrategy = config.SQLiteConfig.GetSyncStrategy()
	b.dirty = make(map[string]bool)
	b.attached = true

	return nil
}

// Detach releases all resources held by the backend.
// Under the on_close sync strategy, dirty tables are persisted first.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if err := b.flushDirtyLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// Export writes a JSONL snapshot of every table to dir.
func (b *Backend) Export(ctx context.Context, dir string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrSiteDetached
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, m := range jsonlTableMapping {
		if err := persistTableJSONL(ctx, b.db, m.table, filepath.Join(dir, m.file)); err != nil {
			return err
		}
	}
	return nil
}

// persist writes table to its JSONL file, or marks it dirty under on_close.
// The caller must hold b.mu.
func (b *Backend) persist(ctx context.Context, table string) error {
	if b.syncStrategy == types.SyncOnClose {
		b.dirty[table] = true
		return nil
	}
	return b.persistTable(ctx, table)
}

func (b *Backend) persistTable(ctx context.Context, table string) error {
	for _, m := range jsonlTableMapping {
		if m.table == table {
			return persistTableJSONL(ctx, b.db, table, filepath.Join(b.config.DataDir, m.file))
		}
	}
	return fmt.Errorf("no JSONL mapping for table %s", table)
}

// flushDirtyLocked persists every dirty table. The caller must hold b.mu.
func (b *Backend) flushDirtyLocked() error {
	for table := range b.dirty {
		if err := b.persistTable(context.Background(), table); err != nil {
			return fmt.Errorf("flush %s: %w", table, err)
		}
		delete(b.dirty, table)
	}
	return nil
}
