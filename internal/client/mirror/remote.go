package mirror

import (
	"context"
	"errors"

	"diskmirror/internal/disksdk"
)

// RemoteAPI is the operation surface of the Disk client the engine
// drives. Each call is one remote operation with a single attempt;
// operations on distinct paths are safe to issue concurrently. Tests
// substitute a scripted fake.
type RemoteAPI interface {
	ListRecursive(ctx context.Context, relPath string) ([]*disksdk.RemoteEntry, error)
	CreateFolder(ctx context.Context, relPath string) error
	Upload(ctx context.Context, localPath, relPath string) error
	Delete(ctx context.Context, relPath string) error
}

// RemoteBuilder produces a snapshot of the remote tree via the
// listing capability
type RemoteBuilder struct {
	api    RemoteAPI
	ignore *IgnoreList
}

func NewRemoteBuilder(api RemoteAPI, ignore *IgnoreList) *RemoteBuilder {
	return &RemoteBuilder{
		api:    api,
		ignore: ignore,
	}
}

// Build lists the remote root recursively. A missing root is the
// first-cycle bootstrap case and yields an empty snapshot with
// exists=false rather than an error.
func (b *RemoteBuilder) Build(ctx context.Context) (Snapshot, bool, error) {
	entries, err := b.api.ListRecursive(ctx, "")
	if err != nil {
		if errors.Is(err, disksdk.ErrNotFound) {
			return Snapshot{}, false, nil
		}
		return nil, false, err
	}

	snap := Snapshot{}
	for _, re := range entries {
		if re.Path == "" || b.ignore.ShouldIgnore(re.Path) {
			continue
		}

		kind := KindFile
		if re.Dir {
			kind = KindDir
		}
		snap.Add(&Entry{
			Path:        re.Path,
			Kind:        kind,
			Fingerprint: re.MD5,
			Size:        re.Size,
		})
	}

	return snap, true, nil
}
