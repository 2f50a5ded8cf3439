package mirror

type Kind uint8

const (
	KindFile Kind = iota
	KindDir
)

var kindNames = []string{"file", "dir"}

func (k Kind) String() string {
	return kindNames[k]
}

// Entry is one filesystem or remote record. Path is the
// slash-separated path relative to the sync root and is the join key
// between the two snapshots. Directories carry no fingerprint and are
// matched by presence only.
type Entry struct {
	Path        string
	Kind        Kind
	Fingerprint string // md5 of the content, files only
	Size        int64
}

// Snapshot is a point-in-time path → entry mapping for one side.
// It is built once per cycle and never mutated afterwards.
type Snapshot map[string]*Entry

func (s Snapshot) Add(e *Entry) {
	s[e.Path] = e
}
