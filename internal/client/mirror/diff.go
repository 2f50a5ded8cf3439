package mirror

import (
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Diff computes the ordered action set that makes remote match local.
// Pure: no I/O, deterministic for a given snapshot pair.
//
// Policy decisions baked in here:
//   - directory creations are ordered depth ascending (lexicographic
//     within a depth) so parents exist before children;
//   - the store deletes recursively, so one Delete per remote-only
//     subtree is emitted and descendants are suppressed;
//   - a path whose kind differs between the two sides is treated as
//     absent on both: delete the remote entry, recreate from local.
func Diff(local, remote Snapshot) []*Action {
	localPaths := mapset.NewThreadUnsafeSet[string]()
	for p := range local {
		localPaths.Add(p)
	}
	remotePaths := mapset.NewThreadUnsafeSet[string]()
	for p := range remote {
		remotePaths.Add(p)
	}

	deleteCandidates := remotePaths.Difference(localPaths)
	for p, e := range local {
		if r, ok := remote[p]; ok && r.Kind != e.Kind {
			deleteCandidates.Add(p)
		}
	}

	var creates, uploads []*Action
	for p, e := range local {
		r, exists := remote[p]
		sameKind := exists && r.Kind == e.Kind

		switch e.Kind {
		case KindDir:
			if !sameKind {
				creates = append(creates, &Action{Op: OpCreateDir, Path: p})
			}
		case KindFile:
			if !sameKind || r.Fingerprint != e.Fingerprint {
				uploads = append(uploads, &Action{Op: OpUpload, Path: p, Size: e.Size})
			}
		}
	}

	sort.Slice(creates, func(i, j int) bool {
		di, dj := depth(creates[i].Path), depth(creates[j].Path)
		if di != dj {
			return di < dj
		}
		return creates[i].Path < creates[j].Path
	})

	sort.Slice(uploads, func(i, j int) bool {
		return uploads[i].Path < uploads[j].Path
	})

	candidates := deleteCandidates.ToSlice()
	sort.Strings(candidates)

	var deletes []*Action
	covered := mapset.NewThreadUnsafeSet[string]()
	for _, p := range candidates {
		if ancestorIn(covered, p) {
			continue
		}
		deletes = append(deletes, &Action{Op: OpDelete, Path: p})
		if r, ok := remote[p]; ok && r.Kind == KindDir {
			covered.Add(p)
		}
	}

	actions := make([]*Action, 0, len(creates)+len(uploads)+len(deletes))
	actions = append(actions, creates...)
	actions = append(actions, uploads...)
	actions = append(actions, deletes...)
	return actions
}

func depth(p string) int {
	return strings.Count(p, "/")
}

func ancestorIn(covered mapset.Set[string], p string) bool {
	for {
		i := strings.LastIndexByte(p, '/')
		if i < 0 {
			return false
		}
		p = p[:i]
		if covered.Contains(p) {
			return true
		}
	}
}
