package jobscope

import (
	"fmt"
	"time"
)

// Event is one recorded scheduler occurrence. The concrete types below form a
// closed set; the fold in Apply switches over all of them.
type Event interface {
	// When returns the timestamp carried by the event.
	When() time.Time
	event()
}

// ApplicationStart marks the launch of the monitored application.
type ApplicationStart struct {
	At      time.Time
	AppID   string
	AppName string
	User    string
}

// ApplicationEnd marks the end of the monitored application.
type ApplicationEnd struct {
	At time.Time
}

// ExecutorAdded records a new executor joining with a fixed core count.
type ExecutorAdded struct {
	At         time.Time
	ExecutorID string
	Host       string
	Cores      int
}

// ExecutorRemoved records an executor leaving the application.
type ExecutorRemoved struct {
	At         time.Time
	ExecutorID string
	Reason     string
}

// JobStart records a scheduler job beginning, with the stages it owns.
type JobStart struct {
	At             time.Time
	JobID          int
	JobGroup       string
	JobDescription string
	StageIDs       []int
}

// JobEnd records a scheduler job finishing.
type JobEnd struct {
	At        time.Time
	JobID     int
	Succeeded bool
}

// StageSubmitted records a stage becoming runnable.
type StageSubmitted struct {
	At        time.Time
	StageID   int
	StageName string
	TaskCount int
}

// StageCompleted records a stage finishing.
type StageCompleted struct {
	At        time.Time
	StageID   int
	StageName string
}

// TaskStart records a task launching on an executor. Task carries no finish
// time or metrics yet.
type TaskStart struct {
	At   time.Time
	Task TaskInfo
}

// TaskEnd records a task finishing. Task carries the finish time and the full
// metrics bundle.
type TaskEnd struct {
	At       time.Time
	TaskType string
	Task     TaskInfo
}

func (e ApplicationStart) When() time.Time { return e.At }
func (e ApplicationEnd) When() time.Time   { return e.At }
func (e ExecutorAdded) When() time.Time    { return e.At }
func (e ExecutorRemoved) When() time.Time  { return e.At }
func (e JobStart) When() time.Time         { return e.At }
func (e JobEnd) When() time.Time           { return e.At }
func (e StageSubmitted) When() time.Time   { return e.At }
func (e StageCompleted) When() time.Time   { return e.At }
func (e TaskStart) When() time.Time        { return e.At }
func (e TaskEnd) When() time.Time          { return e.At }

func (ApplicationStart) event() {}
func (ApplicationEnd) event()   {}
func (ExecutorAdded) event()    {}
func (ExecutorRemoved) event()  {}
func (JobStart) event()         {}
func (JobEnd) event()           {}
func (StageSubmitted) event()   {}
func (StageCompleted) event()   {}
func (TaskStart) event()        {}
func (TaskEnd) event()          {}

// Locality classifies where a task's input data resided relative to the
// executor that ran it.
type Locality string

const (
	LocalityProcessLocal Locality = "PROCESS_LOCAL"
	LocalityNodeLocal    Locality = "NODE_LOCAL"
	LocalityRackLocal    Locality = "RACK_LOCAL"
	LocalityAny          Locality = "ANY"
	LocalityNoPref       Locality = "NO_PREF"
)

// Localities lists all locality classes in display order.
func Localities() []Locality {
	return []Locality{
		LocalityProcessLocal,
		LocalityNodeLocal,
		LocalityRackLocal,
		LocalityAny,
		LocalityNoPref,
	}
}

// ExecutorInfo describes one executor observed by the fold. RemovedAt stays
// zero until a matching ExecutorRemoved has been applied.
type ExecutorInfo struct {
	ID        string    `json:"id"`
	Host      string    `json:"host,omitempty"`
	Cores     int       `json:"cores"`
	AddedAt   time.Time `json:"addedAt"`
	RemovedAt time.Time `json:"removedAt,omitempty"`
}

// Live reports whether the executor has not been removed yet.
func (e ExecutorInfo) Live() bool { return e.RemovedAt.IsZero() }

// TaskInfo describes one task attempt. FinishedAt, TaskType and Metrics are
// populated only once the matching TaskEnd has been applied.
type TaskInfo struct {
	TaskID      int64       `json:"taskId"`
	ExecutorID  string      `json:"executorId"`
	StageID     int         `json:"stageId"`
	Partition   int         `json:"partition"`
	Attempt     int         `json:"attempt"`
	LaunchedAt  time.Time   `json:"launchedAt"`
	FinishedAt  time.Time   `json:"finishedAt,omitempty"`
	Locality    Locality    `json:"locality"`
	Speculative bool        `json:"speculative"`
	TaskType    string      `json:"taskType,omitempty"`
	Metrics     TaskMetrics `json:"metrics"`
}

// Finished reports whether the task's TaskEnd has been applied.
func (t TaskInfo) Finished() bool { return !t.FinishedAt.IsZero() }

// TaskMetrics is the numeric bundle reported when a task finishes. Durations
// are milliseconds, sizes are bytes.
type TaskMetrics struct {
	DeserializeTime     int64 `json:"deserializeTime"`
	RunTime             int64 `json:"runTime"`
	GCTime              int64 `json:"gcTime"`
	SerializeTime       int64 `json:"serializeTime"`
	ResultSize          int64 `json:"resultSize"`
	InputBytes          int64 `json:"inputBytes"`
	InputRecords        int64 `json:"inputRecords"`
	OutputBytes         int64 `json:"outputBytes"`
	OutputRecords       int64 `json:"outputRecords"`
	ShuffleReadBytes    int64 `json:"shuffleReadBytes"`
	ShuffleReadRecords  int64 `json:"shuffleReadRecords"`
	ShuffleReadWaitTime int64 `json:"shuffleReadWaitTime"`
	ShuffleWriteBytes   int64 `json:"shuffleWriteBytes"`
	ShuffleWriteRecords int64 `json:"shuffleWriteRecords"`
	ShuffleWriteTime    int64 `json:"shuffleWriteTime"`
	MemorySpilledBytes  int64 `json:"memorySpilledBytes"`
	DiskSpilledBytes    int64 `json:"diskSpilledBytes"`
}

// MetricColumn is one named value out of a TaskMetrics bundle.
type MetricColumn struct {
	Name  string
	Value float64
}

// Columns returns every metric as a named column, in a fixed order. Stage
// statistics aggregate over these.
func (m TaskMetrics) Columns() []MetricColumn {
	return []MetricColumn{
		{"deserializeTime", float64(m.DeserializeTime)},
		{"runTime", float64(m.RunTime)},
		{"gcTime", float64(m.GCTime)},
		{"serializeTime", float64(m.SerializeTime)},
		{"resultSize", float64(m.ResultSize)},
		{"inputBytes", float64(m.InputBytes)},
		{"inputRecords", float64(m.InputRecords)},
		{"outputBytes", float64(m.OutputBytes)},
		{"outputRecords", float64(m.OutputRecords)},
		{"shuffleReadBytes", float64(m.ShuffleReadBytes)},
		{"shuffleReadRecords", float64(m.ShuffleReadRecords)},
		{"shuffleReadWaitTime", float64(m.ShuffleReadWaitTime)},
		{"shuffleWriteBytes", float64(m.ShuffleWriteBytes)},
		{"shuffleWriteRecords", float64(m.ShuffleWriteRecords)},
		{"shuffleWriteTime", float64(m.ShuffleWriteTime)},
		{"memorySpilledBytes", float64(m.MemorySpilledBytes)},
		{"diskSpilledBytes", float64(m.DiskSpilledBytes)},
	}
}

// StageIdentifier groups tasks for reporting. Distinct scheduler stages that
// share the same triple aggregate together on purpose.
type StageIdentifier struct {
	JobGroup       string `json:"jobGroup"`
	JobDescription string `json:"jobDescription"`
	StageName      string `json:"stageName"`
}

// Key returns a stable display identifier for the stage.
func (s StageIdentifier) Key() string {
	return fmt.Sprintf("%s|%s|%s", s.JobGroup, s.JobDescription, s.StageName)
}

// TaskGroup is the sub-grouping key inside a stage: tasks with the same
// locality and task type are summarized together.
type TaskGroup struct {
	Locality Locality `json:"locality"`
	TaskType string   `json:"taskType"`
}
