package jobscope

import (
	"fmt"
	"time"
)

// GroupStats accumulates one statistic per metric column for a single
// (locality, task type) group within a stage.
type GroupStats map[string]Accumulator

// StageStats holds the accumulated statistics of one stage, keyed by
// sub-group.
type StageStats map[TaskGroup]GroupStats

// State is the cumulative fold result at some cursor position. States are
// immutable values: Apply returns a new State and never touches its input, so
// a snapshot handed to a reader stays consistent while navigation continues.
// Callers must treat all fields as read-only.
type State struct {
	AppID         string
	AppName       string
	AppLaunchedAt time.Time
	AppEndedAt    time.Time
	FirstTaskAt   time.Time
	LastUpdatedAt time.Time

	// Executors holds every executor ever observed, live or removed.
	Executors map[string]ExecutorInfo
	// RunningTasks holds exactly the tasks with a TaskStart applied and no
	// matching TaskEnd yet.
	RunningTasks map[int64]TaskInfo
	// CompletedTasks holds finished tasks in completion order.
	CompletedTasks []TaskInfo
	// StageStats holds aggregated metrics of completed tasks per stage.
	StageStats map[StageIdentifier]StageStats

	// stageIDs maps scheduler stage ids to their reporting identifier,
	// built up from JobStart and StageSubmitted events.
	stageIDs map[int]StageIdentifier
	// jobGroups is the set of job group names seen so far.
	jobGroups map[string]struct{}
}

// NewState returns the empty state, the fold result at cursor 0.
func NewState() *State {
	return &State{
		Executors:    map[string]ExecutorInfo{},
		RunningTasks: map[int64]TaskInfo{},
		StageStats:   map[StageIdentifier]StageStats{},
		stageIDs:     map[int]StageIdentifier{},
		jobGroups:    map[string]struct{}{},
	}
}

// StageIdentifierFor resolves a scheduler stage id to its reporting
// identifier. Stages never announced via JobStart/StageSubmitted fall back to
// a synthetic name so their tasks still aggregate somewhere.
func (s *State) StageIdentifierFor(stageID int) StageIdentifier {
	if ident, ok := s.stageIDs[stageID]; ok {
		return ident
	}
	return StageIdentifier{StageName: fmt.Sprintf("stage-%d", stageID)}
}

// JobGroups returns the job group names observed so far, unordered.
func (s *State) JobGroups() []string {
	out := make([]string, 0, len(s.jobGroups))
	for g := range s.jobGroups {
		out = append(out, g)
	}
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	cp := make(map[K]V, len(m)+1)
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
