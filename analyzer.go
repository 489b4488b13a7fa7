package jobscope

import (
	"sort"
	"time"
)

// The analyzer is a stateless query layer: every function takes an immutable
// State snapshot and derives a value. Nothing here mutates anything, so these
// are safe to call concurrently and repeatedly against the same snapshot.
// Maxima are recomputed by scanning the snapshot's task and executor
// intervals rather than cached incrementally.

// CurrentCores returns the cores in use right now: one per running task.
// This is the authoritative definition, distinct from allocated cores.
func CurrentCores(st *State) int { return len(st.RunningTasks) }

// AllocatedCores sums the cores of every executor ever observed, live or
// removed. It is monotonically non-decreasing along the event log.
func AllocatedCores(st *State) int {
	total := 0
	for _, e := range st.Executors {
		total += e.Cores
	}
	return total
}

// TimeUntilFirstTask returns the delay between application launch and the
// first observed task. The second return is false until both are known.
func TimeUntilFirstTask(st *State) (time.Duration, bool) {
	if st.AppLaunchedAt.IsZero() || st.FirstTaskAt.IsZero() {
		return 0, false
	}
	return st.FirstTaskAt.Sub(st.AppLaunchedAt), true
}

// interval is a half-open [start, end) time range in unix milliseconds.
type interval struct {
	start int64
	end   int64
}

func ms(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// timelineBounds returns the observed wall-clock span of the snapshot.
func timelineBounds(st *State) (int64, int64) {
	start := ms(st.AppLaunchedAt)
	if start == 0 {
		start = ms(st.FirstTaskAt)
	}
	end := ms(st.LastUpdatedAt)
	if start == 0 || end < start {
		start = end
	}
	return start, end
}

// taskIntervals returns the run interval of every task visible in the
// snapshot. Still-running tasks are clamped at the last event timestamp.
func taskIntervals(st *State) []interval {
	out := make([]interval, 0, len(st.CompletedTasks)+len(st.RunningTasks))
	for _, t := range st.CompletedTasks {
		out = append(out, interval{ms(t.LaunchedAt), ms(t.FinishedAt)})
	}
	now := ms(st.LastUpdatedAt)
	for _, t := range st.RunningTasks {
		out = append(out, interval{ms(t.LaunchedAt), now})
	}
	return out
}

// executorIntervals returns each executor's lifetime weighted by its cores.
func executorIntervals(st *State) ([]interval, []int) {
	spans := make([]interval, 0, len(st.Executors))
	weights := make([]int, 0, len(st.Executors))
	now := ms(st.LastUpdatedAt)
	for _, e := range st.Executors {
		end := ms(e.RemovedAt)
		if end == 0 {
			end = now
		}
		spans = append(spans, interval{ms(e.AddedAt), end})
		weights = append(weights, e.Cores)
	}
	return spans, weights
}

// concurrencyDurations computes, for the window [from, to), how long exactly
// k weighted intervals were active, for every observed k (including 0).
func concurrencyDurations(spans []interval, weights []int, from, to int64) map[int]int64 {
	out := map[int]int64{}
	if to <= from {
		return out
	}
	type edge struct {
		at    int64
		delta int
	}
	edges := make([]edge, 0, 2*len(spans))
	for i, s := range spans {
		w := 1
		if weights != nil {
			w = weights[i]
		}
		start, end := s.start, s.end
		if start < from {
			start = from
		}
		if end > to {
			end = to
		}
		if end <= start {
			continue
		}
		edges = append(edges, edge{start, w}, edge{end, -w})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].at < edges[j].at })

	level, prev := 0, from
	for _, e := range edges {
		if e.at > prev {
			out[level] += e.at - prev
			prev = e.at
		}
		level += e.delta
	}
	if to > prev {
		out[level] += to - prev
	}
	return out
}

// CoreUsageDuration is one row of the cumulative usage histogram: the total
// time during which exactly Cores cores were concurrently in use.
type CoreUsageDuration struct {
	Cores    int   `json:"cores"`
	Duration int64 `json:"durationMs"`
}

// CumulativeCoreUsage computes the usage histogram over the whole timeline.
// The durations sum exactly to the elapsed wall-clock span.
func CumulativeCoreUsage(st *State) []CoreUsageDuration {
	from, to := timelineBounds(st)
	byCount := concurrencyDurations(taskIntervals(st), nil, from, to)
	counts := make([]int, 0, len(byCount))
	for k := range byCount {
		counts = append(counts, k)
	}
	sort.Ints(counts)
	out := make([]CoreUsageDuration, 0, len(counts))
	for _, k := range counts {
		out = append(out, CoreUsageDuration{Cores: k, Duration: byCount[k]})
	}
	return out
}

// IdleTime returns the total time with zero running tasks over the whole
// timeline.
func IdleTime(st *State) time.Duration {
	from, to := timelineBounds(st)
	return time.Duration(concurrencyDurations(taskIntervals(st), nil, from, to)[0]) * time.Millisecond
}

// IdleTimeSinceFirstTask is IdleTime restricted to the span after the first
// task launched.
func IdleTimeSinceFirstTask(st *State) time.Duration {
	if st.FirstTaskAt.IsZero() {
		return 0
	}
	_, to := timelineBounds(st)
	from := ms(st.FirstTaskAt)
	return time.Duration(concurrencyDurations(taskIntervals(st), nil, from, to)[0]) * time.Millisecond
}

// MaxConcurrentTasks scans the snapshot's task intervals for the highest
// number of tasks ever running at once.
func MaxConcurrentTasks(st *State) int {
	from, to := timelineBounds(st)
	return maxLevel(concurrencyDurations(taskIntervals(st), nil, from, to))
}

// MaxCoreUsage is the highest number of cores ever simultaneously consumed
// by tasks. With one core per task it coincides with MaxConcurrentTasks but
// is reported separately.
func MaxCoreUsage(st *State) int {
	return MaxConcurrentTasks(st)
}

// MaxAllocatedCores scans executor lifetimes for the peak provisioned core
// count.
func MaxAllocatedCores(st *State) int {
	from, to := timelineBounds(st)
	spans, weights := executorIntervals(st)
	return maxLevel(concurrencyDurations(spans, weights, from, to))
}

func maxLevel(byCount map[int]int64) int {
	max := 0
	for k, d := range byCount {
		if d > 0 && k > max {
			max = k
		}
	}
	return max
}

// CoreUtilization returns the percentage of available core-time actually
// consumed by tasks: task core-milliseconds over allocated cores times the
// elapsed wall span. Values above 100 are possible and not clamped.
func CoreUtilization(st *State) float64 {
	from, to := timelineBounds(st)
	allocated := AllocatedCores(st)
	if to <= from || allocated == 0 {
		return 0
	}
	var used int64
	for _, s := range taskIntervals(st) {
		start, end := s.start, s.end
		if start < from {
			start = from
		}
		if end > to {
			end = to
		}
		if end > start {
			used += end - start
		}
	}
	return float64(used) / float64(int64(allocated)*(to-from)) * 100
}

// StageFilter restricts stage metrics to exact matches on the optional
// fields. A nil field passes everything.
type StageFilter struct {
	JobGroup       *string
	JobDescription *string
}

// Match reports whether a stage identifier passes the filter.
func (f StageFilter) Match(id StageIdentifier) bool {
	if f.JobGroup != nil && *f.JobGroup != id.JobGroup {
		return false
	}
	if f.JobDescription != nil && *f.JobDescription != id.JobDescription {
		return false
	}
	return true
}

// TaskGroupSummary is the statistical digest of one (locality, task type)
// group within a stage.
type TaskGroupSummary struct {
	Locality  Locality           `json:"locality"`
	TaskType  string             `json:"taskType"`
	TaskCount int64              `json:"taskCount"`
	Metrics   map[string]Summary `json:"metrics"`
}

// StageMetricsEntry reports one stage with all its sub-groups.
type StageMetricsEntry struct {
	Stage  StageIdentifier    `json:"stage"`
	Groups []TaskGroupSummary `json:"groups"`
}

// StageMetricsReport is the full per-stage statistics report.
type StageMetricsReport struct {
	Stages []StageMetricsEntry `json:"stages"`
}

// StageMetrics summarizes the snapshot's accumulated stage statistics,
// filtered and deterministically ordered.
func StageMetrics(st *State, filter StageFilter) StageMetricsReport {
	report := StageMetricsReport{Stages: []StageMetricsEntry{}}
	for ident, stage := range st.StageStats {
		if !filter.Match(ident) {
			continue
		}
		entry := StageMetricsEntry{Stage: ident}
		for group, stats := range stage {
			summary := TaskGroupSummary{
				Locality: group.Locality,
				TaskType: group.TaskType,
				Metrics:  make(map[string]Summary, len(stats)),
			}
			for name, acc := range stats {
				summary.Metrics[name] = acc.Summary()
				summary.TaskCount = acc.Count
			}
			entry.Groups = append(entry.Groups, summary)
		}
		sort.Slice(entry.Groups, func(i, j int) bool {
			a, b := entry.Groups[i], entry.Groups[j]
			if a.Locality != b.Locality {
				return a.Locality < b.Locality
			}
			return a.TaskType < b.TaskType
		})
		report.Stages = append(report.Stages, entry)
	}
	sort.Slice(report.Stages, func(i, j int) bool {
		return report.Stages[i].Stage.Key() < report.Stages[j].Stage.Key()
	})
	return report
}
