package mirror

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Scheduler executes an action set against the remote API with at
// most limit operations in flight. Three phases, each fully drained
// before the next starts:
//
//  1. deletes, so a path whose kind changed is cleared before it is
//     recreated;
//  2. directory creations, one depth level at a time so parents are
//     in place before children;
//  3. uploads.
//
// A failed action becomes a logged Outcome and never cancels or
// blocks its siblings. Execute returns only once every action has
// produced an Outcome.
type Scheduler struct {
	api RemoteAPI
	sem *semaphore.Weighted
}

func NewScheduler(api RemoteAPI, limit int) *Scheduler {
	return &Scheduler{
		api: api,
		sem: semaphore.NewWeighted(int64(limit)),
	}
}

func (s *Scheduler) Execute(ctx context.Context, actions []*Action) []*Outcome {
	var deletes, creates, uploads []*Action
	for _, act := range actions {
		switch act.Op {
		case OpDelete:
			deletes = append(deletes, act)
		case OpCreateDir:
			creates = append(creates, act)
		case OpUpload:
			uploads = append(uploads, act)
		}
	}

	outcomes := make([]*Outcome, 0, len(actions))
	outcomes = append(outcomes, s.runBatch(ctx, deletes)...)
	for _, level := range byDepth(creates) {
		outcomes = append(outcomes, s.runBatch(ctx, level)...)
	}
	outcomes = append(outcomes, s.runBatch(ctx, uploads)...)
	return outcomes
}

func (s *Scheduler) runBatch(ctx context.Context, batch []*Action) []*Outcome {
	if len(batch) == 0 {
		return nil
	}

	out := make([]*Outcome, len(batch))

	var wg sync.WaitGroup
	wg.Add(len(batch))

	for i, act := range batch {
		go func(i int, act *Action) {
			defer wg.Done()

			if err := s.sem.Acquire(ctx, 1); err != nil {
				out[i] = &Outcome{Action: act, Err: err, Category: CategoryRemote}
				return
			}
			defer s.sem.Release(1)

			tstart := time.Now()
			err := s.run(ctx, act)
			outcome := &Outcome{
				Action:   act,
				Err:      err,
				Category: Categorize(err),
				Took:     time.Since(tstart),
			}
			out[i] = outcome

			if outcome.Success() {
				slog.Info("sync", "op", act.Op, "path", act.Path)
			} else {
				slog.Error("sync", "op", act.Op, "path", act.Path, "category", outcome.Category, "error", err)
			}
		}(i, act)
	}

	wg.Wait()
	return out
}

func (s *Scheduler) run(ctx context.Context, act *Action) error {
	switch act.Op {
	case OpCreateDir:
		return s.api.CreateFolder(ctx, act.Path)
	case OpUpload:
		return s.api.Upload(ctx, act.LocalPath, act.Path)
	default:
		return s.api.Delete(ctx, act.Path)
	}
}

// byDepth buckets already depth-sorted directory actions into drain
// levels
func byDepth(creates []*Action) [][]*Action {
	var levels [][]*Action
	lastDepth := -1
	for _, act := range creates {
		d := depth(act.Path)
		if d != lastDepth {
			levels = append(levels, nil)
			lastDepth = d
		}
		levels[len(levels)-1] = append(levels[len(levels)-1], act)
	}
	return levels
}
