package mirror

import (
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Paths excluded from sync on both sides. Matching remote entries are
// dropped from the remote snapshot too, so an ignored path that shows
// up in the cloud is left alone rather than deleted.
var defaultIgnoreLines = []string{
	".*",
	"_*",
	"venv*",
	"__pycache__",
	"*.swp",
	"*.tmp",
}

type IgnoreList struct {
	ignore *gitignore.GitIgnore
}

func NewIgnoreList(extraLines ...string) *IgnoreList {
	lines := append([]string{}, defaultIgnoreLines...)
	lines = append(lines, extraLines...)
	return &IgnoreList{ignore: gitignore.CompileIgnoreLines(lines...)}
}

// ShouldIgnore reports whether a root-relative slash path is excluded
// from sync
func (l *IgnoreList) ShouldIgnore(relPath string) bool {
	// the remote API cannot address paths containing '&'
	if strings.Contains(relPath, "&") {
		return true
	}
	return l.ignore.MatchesPath(relPath)
}
