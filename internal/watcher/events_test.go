package watcher

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventTypeOther, "other"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		op       fsnotify.Op
		expected EventType
		triggers bool
	}{
		{"create", fsnotify.Create, EventTypeCreated, true},
		{"write", fsnotify.Write, EventTypeModified, true},
		{"write with chmod", fsnotify.Write | fsnotify.Chmod, EventTypeModified, true},
		{"remove", fsnotify.Remove, EventTypeDeleted, true},
		{"rename", fsnotify.Rename, EventTypeRenamed, false},
		{"chmod", fsnotify.Chmod, EventTypeOther, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			change := classify(fsnotify.Event{Name: "src/main.c", Op: tc.op})
			assert.Equal(t, tc.expected, change.Type)
			assert.Equal(t, "src/main.c", change.Path)
			assert.Equal(t, tc.triggers, change.Type.Triggers())
		})
	}
}

func TestNoHiddenFilter(t *testing.T) {
	assert.True(t, NoHiddenFilter("src/main.c"))
	assert.True(t, NoHiddenFilter(filepath.Join("src", ".cache", "util.c")))
	assert.False(t, NoHiddenFilter("src/.main.c.swp"))
	assert.False(t, NoHiddenFilter(".#main.c"))
}

func TestIgnoreFilter(t *testing.T) {
	filter, err := IgnoreFilter("src", []string{"*~", "gen/**", "**/*.o"})
	require.NoError(t, err)

	assert.True(t, filter(filepath.Join("src", "main.c")))
	assert.False(t, filter(filepath.Join("src", "main.c~")))
	assert.False(t, filter(filepath.Join("src", "gen", "table.c")))
	assert.False(t, filter(filepath.Join("src", "util.o")))
}

func TestIgnoreFilterEmpty(t *testing.T) {
	filter, err := IgnoreFilter("src", nil)
	require.NoError(t, err)
	assert.True(t, filter("src/anything"))
}

func TestIgnoreFilterRejectsInvalidPattern(t *testing.T) {
	_, err := IgnoreFilter("src", []string{"[unclosed"})
	assert.Error(t, err)
}
