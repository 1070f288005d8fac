package watcher

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type EventType
	Path string
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
	EventTypeOther
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "other"
	}
}

// Triggers reports whether an event of this type causes a rebuild.
func (e EventType) Triggers() bool {
	return e == EventTypeCreated || e == EventTypeModified || e == EventTypeDeleted
}

func classify(event fsnotify.Event) ChangeEvent {
	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventTypeCreated
	case event.Has(fsnotify.Write):
		eventType = EventTypeModified
	case event.Has(fsnotify.Remove):
		eventType = EventTypeDeleted
	case event.Has(fsnotify.Rename):
		eventType = EventTypeRenamed
	default:
		eventType = EventTypeOther
	}

	return ChangeEvent{Type: eventType, Path: event.Name}
}

// FileFilter determines if a changed path should trigger a rebuild
type FileFilter func(path string) bool

// NoHiddenFilter rejects names beginning with a dot, which covers editor swap
// and backup files.
func NoHiddenFilter(path string) bool {
	return !strings.HasPrefix(filepath.Base(path), ".")
}

// IgnoreFilter returns a filter rejecting paths that match any of the
// doublestar patterns, evaluated relative to root. A pattern also rejects a
// path when it matches the bare file name.
func IgnoreFilter(root string, patterns []string) (FileFilter, error) {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid watch_ignore pattern %q", pat)
		}
	}

	return func(path string) bool {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		base := filepath.Base(path)

		for _, pat := range patterns {
			if matched, _ := doublestar.Match(pat, rel); matched {
				return false
			}
			if matched, _ := doublestar.Match(pat, base); matched {
				return false
			}
		}
		return true
	}, nil
}

// EventSource delivers raw file system notifications for added paths.
type EventSource interface {
	Add(path string) error
	Remove(path string) error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	Close() error
}

// SourceFactory creates the event source once the initial build succeeded.
type SourceFactory func() (EventSource, error)

type fsnotifySource struct {
	w *fsnotify.Watcher
}

// NewFsnotifySource creates an EventSource backed by fsnotify. Watches are
// not recursive.
func NewFsnotifySource() (EventSource, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsnotifySource{w: w}, nil
}

func (s *fsnotifySource) Add(path string) error         { return s.w.Add(path) }
func (s *fsnotifySource) Remove(path string) error      { return s.w.Remove(path) }
func (s *fsnotifySource) Events() <-chan fsnotify.Event { return s.w.Events }
func (s *fsnotifySource) Errors() <-chan error          { return s.w.Errors }
func (s *fsnotifySource) Close() error                  { return s.w.Close() }
