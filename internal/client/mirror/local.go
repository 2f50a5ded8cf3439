package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"diskmirror/internal/utils"
)

var ErrLocalRootMissing = errors.New("mirror: local sync root missing")

// LocalBuilder produces a snapshot of the local tree. Per-file read
// errors are logged and the entry omitted; the diff then sees the
// file as absent, which at worst re-uploads or deletes it on a later
// cycle. Only a missing root is fatal.
type LocalBuilder struct {
	root   string
	ignore *IgnoreList
	cache  *HashCache // optional
}

func NewLocalBuilder(root string, ignore *IgnoreList, cache *HashCache) *LocalBuilder {
	return &LocalBuilder{
		root:   root,
		ignore: ignore,
		cache:  cache,
	}
}

func (b *LocalBuilder) Build(ctx context.Context) (Snapshot, error) {
	if !utils.DirExists(b.root) {
		return nil, fmt.Errorf("%w: %s", ErrLocalRootMissing, b.root)
	}

	snap := Snapshot{}

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// an unreadable subtree is omitted, not fatal
			slog.Warn("local scan", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == b.root {
			return nil
		}

		relPath, err := filepath.Rel(b.root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if b.ignore.ShouldIgnore(relPath) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			snap.Add(&Entry{Path: relPath, Kind: KindDir})
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("local scan", "path", relPath, "error", err)
			return nil
		}

		fingerprint, err := b.fingerprint(path, relPath, info)
		if err != nil {
			slog.Warn("local scan", "path", relPath, "error", err)
			return nil
		}

		snap.Add(&Entry{
			Path:        relPath,
			Kind:        KindFile,
			Fingerprint: fingerprint,
			Size:        info.Size(),
		})
		return nil
	}

	if err := filepath.WalkDir(b.root, walkFn); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLocalRootMissing, b.root)
		}
		return nil, err
	}

	return snap, nil
}

func (b *LocalBuilder) fingerprint(absPath, relPath string, info fs.FileInfo) (string, error) {
	size := info.Size()
	mtimeNS := info.ModTime().UnixNano()

	if b.cache != nil {
		if md5, ok := b.cache.Get(relPath, size, mtimeNS); ok {
			return md5, nil
		}
	}

	md5, err := utils.FileHash(absPath)
	if err != nil {
		return "", err
	}

	if b.cache != nil {
		if err := b.cache.Put(relPath, size, mtimeNS, md5); err != nil {
			slog.Warn("hash cache", "path", relPath, "error", err)
		}
	}
	return md5, nil
}
