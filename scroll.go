package jobscope

import (
	"fmt"
	"sync"
)

// Granularity selects the logical unit a navigation count refers to.
type Granularity string

const (
	GranularityEvent Granularity = "event"
	GranularityTask  Granularity = "task"
	GranularityStage Granularity = "stage"
	GranularityJob   Granularity = "job"
)

// ParseGranularity validates a granularity token from the outside world.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityEvent, GranularityTask, GranularityStage, GranularityJob:
		return Granularity(s), nil
	case "":
		return GranularityEvent, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
}

// ScrollingSource is the per-application facade over an event log, a state
// manager and the progress computation. All navigation for one application
// is serialized under its mutex; the states it hands out are immutable
// snapshots, so readers never observe an in-progress mutation.
type ScrollingSource struct {
	mu   sync.Mutex
	meta AppMeta
	log  *EventLog
	mgr  StateManager
}

// NewScrollingSource wraps a log and a manager built over the same log.
func NewScrollingSource(meta AppMeta, log *EventLog, mgr StateManager) *ScrollingSource {
	return &ScrollingSource{meta: meta, log: log, mgr: mgr}
}

// NewSource builds a source with a checkpointed manager per cfg.
func NewSource(meta AppMeta, log *EventLog, cfg Config) *ScrollingSource {
	return NewScrollingSource(meta, log, NewCheckpointedManager(log, cfg.CheckpointInterval))
}

// Meta returns the registration metadata.
func (s *ScrollingSource) Meta() AppMeta { return s.meta }

// Log returns the underlying immutable event log.
func (s *ScrollingSource) Log() *EventLog { return s.log }

// Forward moves the cursor forward by n units of granularity g and returns
// the resulting snapshot. Counts clamp silently at the end of the log.
func (s *ScrollingSource) Forward(n int, g Granularity) (*State, error) {
	if _, err := ParseGranularity(string(g)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mgr.Advance(s.forwardDistance(n, g)), nil
}

// Rewind moves the cursor backward by n units of granularity g and returns
// the resulting snapshot. Counts clamp silently at the start of the log.
func (s *ScrollingSource) Rewind(n int, g Granularity) (*State, error) {
	if _, err := ParseGranularity(string(g)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mgr.Retreat(s.rewindDistance(n, g)), nil
}

// ToStart rewinds everything.
func (s *ScrollingSource) ToStart() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mgr.ToStart()
}

// ToEnd applies the whole remaining log.
func (s *ScrollingSource) ToEnd() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mgr.ToEnd()
}

// Snapshot returns the current state without moving the cursor.
func (s *ScrollingSource) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mgr.Current()
}

// Cursor returns the current cursor position.
func (s *ScrollingSource) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mgr.Cursor()
}

// Progress reports the current position.
func (s *ScrollingSource) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ProgressAt(s.mgr.Cursor(), s.log.Len(), len(s.mgr.Current().RunningTasks))
}

// forwardDistance translates n units of g into a raw event count, counting
// boundary events from the cursor onward. Exhausting the log clamps to its
// end. Callers hold the mutex.
func (s *ScrollingSource) forwardDistance(n int, g Granularity) int {
	if g == GranularityEvent || n <= 0 {
		return n
	}
	crossed := 0
	for i := s.mgr.Cursor(); i < s.log.Len(); i++ {
		if forwardBoundary(s.log.At(i), g) {
			crossed++
			if crossed == n {
				return i + 1 - s.mgr.Cursor()
			}
		}
	}
	return s.log.Len() - s.mgr.Cursor()
}

// rewindDistance is the backward counterpart, counting the start-side
// boundary events so rewinding a unit undoes its beginning.
func (s *ScrollingSource) rewindDistance(n int, g Granularity) int {
	if g == GranularityEvent || n <= 0 {
		return n
	}
	crossed := 0
	for i := s.mgr.Cursor() - 1; i >= 0; i-- {
		if rewindBoundary(s.log.At(i), g) {
			crossed++
			if crossed == n {
				return s.mgr.Cursor() - i
			}
		}
	}
	return s.mgr.Cursor()
}

func forwardBoundary(ev Event, g Granularity) bool {
	switch g {
	case GranularityTask:
		_, ok := ev.(TaskEnd)
		return ok
	case GranularityStage:
		_, ok := ev.(StageCompleted)
		return ok
	case GranularityJob:
		_, ok := ev.(JobEnd)
		return ok
	}
	return true
}

func rewindBoundary(ev Event, g Granularity) bool {
	switch g {
	case GranularityTask:
		_, ok := ev.(TaskStart)
		return ok
	case GranularityStage:
		_, ok := ev.(StageSubmitted)
		return ok
	case GranularityJob:
		_, ok := ev.(JobStart)
		return ok
	}
	return true
}
