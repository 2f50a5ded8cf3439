package mirror

import (
	"errors"
	"time"

	"diskmirror/internal/disksdk"
)

type OpType uint8

const (
	OpCreateDir OpType = iota
	OpUpload
	OpDelete
)

var opTypeNames = []string{"CreateDir", "Upload", "Delete"}

func (op OpType) String() string {
	return opTypeNames[op]
}

// Action is one reconciliation operation derived from a snapshot
// diff. Path is remote-root relative; LocalPath is the absolute
// upload source and is set for OpUpload only.
type Action struct {
	Op        OpType
	Path      string
	LocalPath string
	Size      int64
}

// Category buckets an action failure per the error taxonomy
type Category string

const (
	CategoryNone        Category = ""
	CategoryRemote      Category = "remote"
	CategoryInvalidName Category = "invalid_name"
	CategoryLocalRead   Category = "local_read"
	CategoryNotFound    Category = "not_found"
)

// Categorize maps an sdk error to its failure category
func Categorize(err error) Category {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, disksdk.ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, disksdk.ErrInvalidName):
		return CategoryInvalidName
	case errors.Is(err, disksdk.ErrLocalRead):
		return CategoryLocalRead
	default:
		return CategoryRemote
	}
}

// Outcome records the result of executing one Action
type Outcome struct {
	Action   *Action
	Err      error
	Category Category
	Took     time.Duration
}

// Success reports whether the action left the remote in the desired
// state. Deleting something already absent counts.
func (o *Outcome) Success() bool {
	if o.Err == nil {
		return true
	}
	return o.Action.Op == OpDelete && o.Category == CategoryNotFound
}
