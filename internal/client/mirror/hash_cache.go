package mirror

import (
	"fmt"
	"sync"

	"diskmirror/internal/utils"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS hash_cache (
    path TEXT PRIMARY KEY,
    size INTEGER NOT NULL,
    mtime_ns INTEGER NOT NULL,
    md5 TEXT NOT NULL
);
`

type cacheRow struct {
	Path    string `db:"path"`
	Size    int64  `db:"size"`
	MtimeNS int64  `db:"mtime_ns"`
	MD5     string `db:"md5"`
}

// HashCache memoizes path → (size, mtime) → md5 in SQLite so
// unchanged files are not re-read on every cycle. It is purely an
// optimization: a cold cache produces an identical snapshot, so the
// diff never depends on cached state.
type HashCache struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// NewHashCache creates or opens a cache database at dbPath
func NewHashCache(dbPath string) (*HashCache, error) {
	if err := utils.EnsureParent(dbPath); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db at %s: %w", dbPath, err)
	}

	// SQLite best practice for WAL mode
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &HashCache{db: db}, nil
}

func (c *HashCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the cached fingerprint for path if size and mtime still
// match what was hashed
func (c *HashCache) Get(path string, size, mtimeNS int64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// a miss and a read error are the same to the caller: hash again
	var row cacheRow
	if err := c.db.Get(&row, "SELECT path, size, mtime_ns, md5 FROM hash_cache WHERE path = ?", path); err != nil {
		return "", false
	}

	if row.Size != size || row.MtimeNS != mtimeNS {
		return "", false
	}
	return row.MD5, true
}

// Put records the fingerprint computed for path at (size, mtime)
func (c *HashCache) Put(path string, size, mtimeNS int64, md5 string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`INSERT INTO hash_cache (path, size, mtime_ns, md5) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET size = excluded.size, mtime_ns = excluded.mtime_ns, md5 = excluded.md5`,
		path, size, mtimeNS, md5,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cache row %s: %w", path, err)
	}
	return nil
}

// Forget drops a cached fingerprint
func (c *HashCache) Forget(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec("DELETE FROM hash_cache WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to delete cache row %s: %w", path, err)
	}
	return nil
}
