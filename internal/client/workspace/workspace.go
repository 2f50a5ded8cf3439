package workspace

import (
	"errors"
	"fmt"
	"path/filepath"

	"diskmirror/internal/utils"

	"github.com/gofrs/flock"
)

const (
	metadataDir = ".diskmirror"
	lockFile    = "diskmirror.lock"
	cacheFile   = "hashcache.db"
)

var (
	ErrWorkspaceLocked = errors.New("workspace locked by another process")
	ErrNotADirectory   = errors.New("workspace root is not a directory")
)

// Workspace is a handle on the local sync root. Internal state (the
// instance lock, the fingerprint cache) lives under a dot-directory
// inside the root so the snapshot walk never picks it up.
type Workspace struct {
	Root        string
	MetadataDir string

	flock *flock.Flock
}

func NewWorkspace(rootDir string) (*Workspace, error) {
	root, err := utils.ResolvePath(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", rootDir, err)
	}

	if !utils.DirExists(root) {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}

	metadata := filepath.Join(root, metadataDir)

	return &Workspace{
		Root:        root,
		MetadataDir: metadata,
		flock:       flock.New(filepath.Join(metadata, lockFile)),
	}, nil
}

// Lock takes the single-instance lock so two daemons never mirror the
// same root concurrently
func (w *Workspace) Lock() error {
	if err := utils.EnsureDir(w.MetadataDir); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", w.MetadataDir, err)
	}

	locked, err := w.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock workspace: %w", err)
	}
	if !locked {
		return ErrWorkspaceLocked
	}

	return nil
}

func (w *Workspace) Unlock() error {
	return w.flock.Unlock()
}

// AbsPath maps a root-relative slash path to an absolute local path
func (w *Workspace) AbsPath(relPath string) string {
	return filepath.Join(w.Root, filepath.FromSlash(relPath))
}

// CachePath is where the fingerprint cache database lives
func (w *Workspace) CachePath() string {
	return filepath.Join(w.MetadataDir, cacheFile)
}
