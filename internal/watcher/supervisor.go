// Package watcher rebuilds the project whenever a file in the watch
// directory changes.
package watcher

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/conneroisu/coda/internal/build"
	"github.com/conneroisu/coda/internal/config"
	codaerrors "github.com/conneroisu/coda/internal/errors"
	"github.com/conneroisu/coda/internal/logging"
)

// State is the lifecycle position of a Supervisor.
type State int32

const (
	StateIdle State = iota
	StateInitialBuilding
	StateAborted
	StateWatching
	StateRebuilding
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitialBuilding:
		return "initial-building"
	case StateAborted:
		return "aborted"
	case StateWatching:
		return "watching"
	case StateRebuilding:
		return "rebuilding"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Builder runs one complete build. *build.Orchestrator implements it.
type Builder interface {
	Build(ctx context.Context, cfg *config.ProjectConfig) *build.BuildResult
}

// Supervisor performs an initial build and, if it succeeds, one synchronous
// rebuild per qualifying change in the watch directory. Events are neither
// debounced nor batched, and builds never overlap.
type Supervisor struct {
	builder   Builder
	cfg       *config.ProjectConfig
	logger    logging.Logger
	newSource SourceFactory
	filters   []FileFilter
	state     atomic.Int32

	source       EventSource
	watchDir     string
	teardownOnce sync.Once
}

// NewSupervisor creates a supervisor for cfg.WatchDir. Hidden files are
// always ignored; cfg.WatchIgnore adds further patterns.
func NewSupervisor(builder Builder, cfg *config.ProjectConfig, logger logging.Logger) (*Supervisor, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	ignore, err := IgnoreFilter(cfg.WatchDir, cfg.WatchIgnore)
	if err != nil {
		return nil, codaerrors.NewConfigError(codaerrors.CodeConfigInvalid, "invalid watch_ignore", err)
	}

	return &Supervisor{
		builder:   builder,
		cfg:       cfg,
		logger:    logger.WithComponent("watch"),
		newSource: NewFsnotifySource,
		filters:   []FileFilter{NoHiddenFilter, ignore},
		watchDir:  cfg.WatchDir,
	}, nil
}

// SetSourceFactory replaces the fsnotify event source. It must be called
// before Run.
func (s *Supervisor) SetSourceFactory(factory SourceFactory) {
	s.newSource = factory
}

// AddFilter adds a filter every changed path must pass.
func (s *Supervisor) AddFilter(filter FileFilter) {
	s.filters = append(s.filters, filter)
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

func (s *Supervisor) setState(state State) {
	s.state.Store(int32(state))
}

// Run blocks until ctx is cancelled or the supervisor fails. It returns the
// initial build's error when that build fails, a watch error when the event
// source cannot be set up or breaks, and nil on cancellation.
func (s *Supervisor) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateInitialBuilding)) {
		return codaerrors.NewInternalError(codaerrors.CodeInvalidState,
			"supervisor already started", nil).WithContext("state", s.State().String())
	}

	result := s.builder.Build(ctx, s.cfg)
	if !result.Succeeded() {
		if ctx.Err() != nil {
			s.setState(StateStopped)
			return nil
		}
		s.setState(StateAborted)
		return result.Err
	}

	if err := s.subscribe(); err != nil {
		s.setState(StateAborted)
		return err
	}
	defer s.teardown()

	s.setState(StateWatching)
	s.logger.Info(ctx, "Watching for changes", "dir", s.watchDir)

	return s.loop(ctx)
}

func (s *Supervisor) subscribe() error {
	source, err := s.newSource()
	if err != nil {
		return codaerrors.NewWatchError(codaerrors.CodeWatchInit,
			"cannot initialize file watcher", err)
	}
	s.source = source

	if err := source.Add(s.watchDir); err != nil {
		s.teardown()
		return codaerrors.NewWatchError(codaerrors.CodeWatchSubscribe,
			"cannot watch directory", err).WithFile(s.watchDir)
	}
	return nil
}

func (s *Supervisor) loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			s.setState(StateStopped)
			return nil
		}

		select {
		case <-ctx.Done():
			s.setState(StateStopped)
			return nil

		case event, ok := <-s.source.Events():
			if !ok {
				s.setState(StateStopped)
				return codaerrors.NewWatchError(codaerrors.CodeWatchFatal,
					"event stream closed unexpectedly", nil)
			}
			change := classify(event)
			if !s.qualifies(change) {
				continue
			}
			s.rebuild(ctx, change)

		case err, ok := <-s.source.Errors():
			if !ok {
				s.setState(StateStopped)
				return codaerrors.NewWatchError(codaerrors.CodeWatchFatal,
					"error stream closed unexpectedly", nil)
			}
			if isFatalSourceError(err) {
				s.setState(StateStopped)
				return codaerrors.NewWatchError(codaerrors.CodeWatchFatal,
					"file watcher can no longer deliver events", err)
			}
			s.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (s *Supervisor) qualifies(change ChangeEvent) bool {
	if !change.Type.Triggers() {
		return false
	}
	for _, filter := range s.filters {
		if !filter(change.Path) {
			return false
		}
	}
	return true
}

func (s *Supervisor) rebuild(ctx context.Context, change ChangeEvent) {
	s.setState(StateRebuilding)
	defer s.setState(StateWatching)

	s.logger.Info(ctx, "Change detected, rebuilding",
		"type", change.Type.String(),
		"path", change.Path)

	result := s.builder.Build(ctx, s.cfg)
	if !result.Succeeded() && ctx.Err() == nil {
		s.logger.Warn(ctx, result.Err, "Rebuild failed, waiting for further changes",
			"phase", string(result.Phase))
	}
}

// teardown removes the watch and closes the source exactly once.
func (s *Supervisor) teardown() {
	s.teardownOnce.Do(func() {
		if s.source == nil {
			return
		}
		if err := s.source.Remove(s.watchDir); err != nil {
			s.logger.Debug(context.Background(), "Watch already removed", "dir", s.watchDir, "error", err)
		}
		if err := s.source.Close(); err != nil {
			s.logger.Warn(context.Background(), err, "Closing file watcher failed")
		}
	})
}
