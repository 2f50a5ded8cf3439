package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnoreList(t *testing.T) {
	ignore := NewIgnoreList()

	tests := []struct {
		path    string
		ignored bool
	}{
		{"a.txt", false},
		{"docs/readme.md", false},
		{".env", true},
		{".diskmirror/hashcache.db", true},
		{"docs/.hidden", true},
		{"_draft/a.txt", true},
		{"venv/lib/mod.py", true},
		{"project/__pycache__/mod.pyc", true},
		{"weird&name.txt", true},
		{"notes.tmp", true},
		{"editor.swp", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignored, ignore.ShouldIgnore(tt.path))
		})
	}
}

func TestIgnoreListExtraLines(t *testing.T) {
	ignore := NewIgnoreList("*.log")
	assert.True(t, ignore.ShouldIgnore("sync.log"))
	assert.False(t, ignore.ShouldIgnore("sync.txt"))
}
