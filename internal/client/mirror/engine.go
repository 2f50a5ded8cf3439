package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"diskmirror/internal/client/workspace"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

var ErrSyncAlreadyRunning = errors.New("sync already running")

// CycleSummary counts what one reconciliation pass did
type CycleSummary struct {
	ID        string
	Created   int
	Uploaded  int
	Deleted   int
	Failed    int
	Unchanged int
	Bytes     int64
	Took      time.Duration
}

// Engine runs one full reconciliation cycle: build both snapshots,
// diff, execute the action set, log a summary. It owns the snapshots
// and the action set for the duration of a cycle; nothing carries
// over to the next one.
type Engine struct {
	ws       *workspace.Workspace
	api      RemoteAPI
	local    *LocalBuilder
	remote   *RemoteBuilder
	sched    *Scheduler
	interval time.Duration
	muSync   sync.Mutex
}

func NewEngine(ws *workspace.Workspace, api RemoteAPI, cache *HashCache, interval time.Duration, maxConcurrent int) *Engine {
	ignore := NewIgnoreList()
	return &Engine{
		ws:       ws,
		api:      api,
		local:    NewLocalBuilder(ws.Root, ignore, cache),
		remote:   NewRemoteBuilder(api, ignore),
		sched:    NewScheduler(api, maxConcurrent),
		interval: interval,
	}
}

// Run executes cycles until the context is cancelled. The next cycle
// is armed a fixed delay after the previous one finishes, so cycles
// never overlap and slow cycles don't queue ticks. A missing local
// root is fatal; anything else is logged and retried on the next
// interval because the divergence persists in the next diff.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.runOnce(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(e.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			if err := e.runOnce(ctx); err != nil {
				return err
			}
			timer.Reset(e.interval)
		}
	}
}

func (e *Engine) runOnce(ctx context.Context) error {
	_, err := e.RunCycle(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, ErrLocalRootMissing):
		return err
	default:
		slog.Error("cycle aborted", "error", err)
		return nil
	}
}

// RunCycle performs a single reconciliation pass
func (e *Engine) RunCycle(ctx context.Context) (*CycleSummary, error) {
	if !e.muSync.TryLock() {
		return nil, ErrSyncAlreadyRunning
	}
	defer e.muSync.Unlock()

	tstart := time.Now()
	cycleID := uuid.NewString()[:8]

	localSnap, err := e.local.Build(ctx)
	if err != nil {
		return nil, err
	}

	remoteSnap, exists, err := e.remote.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("remote snapshot: %w", err)
	}

	if !exists {
		slog.Info("bootstrapping remote root", "cycle", cycleID)
		if err := e.api.CreateFolder(ctx, ""); err != nil {
			return nil, fmt.Errorf("create remote root: %w", err)
		}
	}

	actions := Diff(localSnap, remoteSnap)
	for _, act := range actions {
		if act.Op == OpUpload {
			act.LocalPath = e.ws.AbsPath(act.Path)
		}
	}

	outcomes := e.sched.Execute(ctx, actions)
	summary := summarize(cycleID, localSnap, actions, outcomes, time.Since(tstart))

	slog.Info("cycle",
		"id", summary.ID,
		"created", summary.Created,
		"uploaded", summary.Uploaded,
		"deleted", summary.Deleted,
		"failed", summary.Failed,
		"unchanged", summary.Unchanged,
		"bytes", humanize.Bytes(uint64(summary.Bytes)),
		"took", summary.Took,
	)

	return summary, nil
}

func summarize(id string, local Snapshot, actions []*Action, outcomes []*Outcome, took time.Duration) *CycleSummary {
	summary := &CycleSummary{ID: id, Took: took}

	files := 0
	for _, e := range local {
		if e.Kind == KindFile {
			files++
		}
	}
	uploadsPlanned := 0
	for _, act := range actions {
		if act.Op == OpUpload {
			uploadsPlanned++
		}
	}
	summary.Unchanged = files - uploadsPlanned

	for _, o := range outcomes {
		if !o.Success() {
			summary.Failed++
			continue
		}
		switch o.Action.Op {
		case OpCreateDir:
			summary.Created++
		case OpUpload:
			summary.Uploaded++
			summary.Bytes += o.Action.Size
		case OpDelete:
			summary.Deleted++
		}
	}

	return summary
}
