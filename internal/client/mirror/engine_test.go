package mirror

import (
	"context"
	"fmt"
	"testing"
	"time"

	"diskmirror/internal/client/workspace"
	"diskmirror/internal/disksdk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, root string, remote *fakeRemote) *Engine {
	t.Helper()
	ws, err := workspace.NewWorkspace(root)
	require.NoError(t, err)
	return NewEngine(ws, remote, nil, time.Second, 4)
}

func TestEngineFirstCycleBootstrapsAndUploads(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "a.txt", "hello")
	writeFile(t, tmp, "docs/b.txt", "world")

	remote := newFakeRemote()
	remote.rootExists = false
	engine := newTestEngine(t, tmp, remote)

	summary, err := engine.RunCycle(context.Background())
	require.NoError(t, err)

	assert.True(t, remote.rootExists)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 2, summary.Uploaded)
	assert.Equal(t, 0, summary.Deleted)
	assert.Equal(t, 0, summary.Failed)

	require.Contains(t, remote.entries, "docs")
	assert.True(t, remote.entries["docs"].Dir)
	require.Contains(t, remote.entries, "a.txt")
	assert.Equal(t, contentMD5("hello"), remote.entries["a.txt"].MD5)
	require.Contains(t, remote.entries, "docs/b.txt")
	assert.Equal(t, contentMD5("world"), remote.entries["docs/b.txt"].MD5)
}

// uploaded files re-scanned on the next cycle yield equal
// fingerprints, so the second cycle is a no-op
func TestEngineRoundTripConverges(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "a.txt", "hello")
	writeFile(t, tmp, "docs/b.txt", "world")

	remote := newFakeRemote()
	engine := newTestEngine(t, tmp, remote)

	_, err := engine.RunCycle(context.Background())
	require.NoError(t, err)

	opsAfterFirst := len(remote.started)

	summary, err := engine.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 0, summary.Uploaded)
	assert.Equal(t, 0, summary.Deleted)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, summary.Unchanged)
	assert.Len(t, remote.started, opsAfterFirst)
}

func TestEngineDeletesRemoteOnly(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "keep.txt", "hello")

	remote := newFakeRemote()
	remote.entries["keep.txt"] = &disksdk.RemoteEntry{Path: "keep.txt", MD5: contentMD5("hello")}
	remote.entries["trash.bin"] = &disksdk.RemoteEntry{Path: "trash.bin", MD5: "h9"}

	engine := newTestEngine(t, tmp, remote)
	summary, err := engine.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, 0, summary.Uploaded)
	assert.NotContains(t, remote.entries, "trash.bin")
	assert.Contains(t, remote.entries, "keep.txt")
}

func TestEngineFailedActionDoesNotAbortCycle(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "good.txt", "fine")
	writeFile(t, tmp, "bad.txt", "broken")

	remote := newFakeRemote()
	remote.fail(OpUpload, "bad.txt", fmt.Errorf("simulated remote failure"))

	engine := newTestEngine(t, tmp, remote)
	summary, err := engine.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Uploaded)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, remote.entries, "good.txt")
	assert.NotContains(t, remote.entries, "bad.txt")

	// divergence persists into the next diff, so the upload is simply
	// attempted again next cycle
	remote.failOps = map[string]error{}
	summary, err = engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Uploaded)
	assert.Equal(t, 0, summary.Failed)
	assert.Contains(t, remote.entries, "bad.txt")
}

func TestEngineIgnoredRemoteEntriesUntouched(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "a.txt", "hello")

	remote := newFakeRemote()
	remote.entries["a.txt"] = &disksdk.RemoteEntry{Path: "a.txt", MD5: contentMD5("hello")}
	remote.entries[".trashed"] = &disksdk.RemoteEntry{Path: ".trashed", MD5: "h1"}

	engine := newTestEngine(t, tmp, remote)
	summary, err := engine.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Deleted)
	assert.Contains(t, remote.entries, ".trashed")
}
