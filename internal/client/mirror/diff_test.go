package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(path, md5 string) *Entry {
	return &Entry{Path: path, Kind: KindFile, Fingerprint: md5, Size: int64(len(md5))}
}

func dir(path string) *Entry {
	return &Entry{Path: path, Kind: KindDir}
}

func snapshot(entries ...*Entry) Snapshot {
	s := Snapshot{}
	for _, e := range entries {
		s.Add(e)
	}
	return s
}

func TestDiffEqualFingerprintsNoAction(t *testing.T) {
	local := snapshot(file("a.txt", "h1"))
	remote := snapshot(file("a.txt", "h1"))

	assert.Empty(t, Diff(local, remote))
}

func TestDiffLocalOnlyFileUploads(t *testing.T) {
	local := snapshot(file("b.txt", "h1"))
	remote := snapshot()

	actions := Diff(local, remote)
	require.Len(t, actions, 1)
	assert.Equal(t, OpUpload, actions[0].Op)
	assert.Equal(t, "b.txt", actions[0].Path)
}

func TestDiffChangedFingerprintUploads(t *testing.T) {
	local := snapshot(file("a.txt", "h2"))
	remote := snapshot(file("a.txt", "h1"))

	actions := Diff(local, remote)
	require.Len(t, actions, 1)
	assert.Equal(t, OpUpload, actions[0].Op)
}

func TestDiffRemoteOnlyDeletes(t *testing.T) {
	local := snapshot()
	remote := snapshot(file("c.txt", "h2"))

	actions := Diff(local, remote)
	require.Len(t, actions, 1)
	assert.Equal(t, OpDelete, actions[0].Op)
	assert.Equal(t, "c.txt", actions[0].Path)
}

func TestDiffDirectoryDepthOrdering(t *testing.T) {
	local := snapshot(dir("x"), dir("x/y"), dir("x/y/z"), dir("a"))
	remote := snapshot()

	actions := Diff(local, remote)
	require.Len(t, actions, 4)

	var paths []string
	for _, act := range actions {
		require.Equal(t, OpCreateDir, act.Op)
		paths = append(paths, act.Path)
	}
	assert.Equal(t, []string{"a", "x", "x/y", "x/y/z"}, paths)
}

func TestDiffUnchangedDirectoryNoAction(t *testing.T) {
	local := snapshot(dir("x"), file("x/a.txt", "h1"))
	remote := snapshot(dir("x"), file("x/a.txt", "h1"))

	assert.Empty(t, Diff(local, remote))
}

func TestDiffRecursiveDeleteSuppressesDescendants(t *testing.T) {
	local := snapshot()
	remote := snapshot(dir("gone"), file("gone/a.txt", "h1"), dir("gone/sub"), file("gone/sub/b.txt", "h2"))

	actions := Diff(local, remote)
	require.Len(t, actions, 1)
	assert.Equal(t, OpDelete, actions[0].Op)
	assert.Equal(t, "gone", actions[0].Path)
}

func TestDiffKindMismatchDeletesAndRecreates(t *testing.T) {
	t.Run("local dir, remote file", func(t *testing.T) {
		local := snapshot(dir("x"), file("x/a.txt", "h1"))
		remote := snapshot(file("x", "h9"))

		actions := Diff(local, remote)
		require.Len(t, actions, 3)
		assert.Equal(t, OpCreateDir, actions[0].Op)
		assert.Equal(t, "x", actions[0].Path)
		assert.Equal(t, OpUpload, actions[1].Op)
		assert.Equal(t, "x/a.txt", actions[1].Path)
		assert.Equal(t, OpDelete, actions[2].Op)
		assert.Equal(t, "x", actions[2].Path)
	})

	t.Run("local file, remote dir", func(t *testing.T) {
		local := snapshot(file("x", "h1"))
		remote := snapshot(dir("x"), file("x/old.txt", "h2"))

		actions := Diff(local, remote)
		require.Len(t, actions, 2)
		assert.Equal(t, OpUpload, actions[0].Op)
		assert.Equal(t, "x", actions[0].Path)
		assert.Equal(t, OpDelete, actions[1].Op)
		assert.Equal(t, "x", actions[1].Path)
	})
}

// applying the action set to a model of the remote must converge: the
// second diff is empty
func TestDiffIdempotentAfterApply(t *testing.T) {
	local := snapshot(
		dir("docs"),
		file("docs/readme.md", "h1"),
		file("notes.txt", "h2"),
	)
	remote := snapshot(
		file("notes.txt", "stale"),
		file("trash.bin", "h9"),
	)

	next := Snapshot{}
	for p, e := range remote {
		next[p] = e
	}
	for _, act := range Diff(local, remote) {
		switch act.Op {
		case OpCreateDir:
			next.Add(dir(act.Path))
		case OpUpload:
			next.Add(file(act.Path, local[act.Path].Fingerprint))
		case OpDelete:
			for p := range next {
				if p == act.Path || len(p) > len(act.Path) && p[:len(act.Path)+1] == act.Path+"/" {
					delete(next, p)
				}
			}
		}
	}

	assert.Empty(t, Diff(local, next))
}

func TestDiffDeterministic(t *testing.T) {
	local := snapshot(dir("a"), dir("b"), file("a/1", "x"), file("b/2", "y"), file("c", "z"))
	remote := snapshot(file("d", "w"), dir("e"), file("e/3", "v"))

	first := Diff(local, remote)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Diff(local, remote))
	}
}
