package jobscope

import (
	"math"
	"testing"
	"time"
)

func TestCoreCounts(t *testing.T) {
	log := fixtureLog()

	st := foldTo(t, log, 7)
	if CurrentCores(st) != 2 {
		t.Fatalf("current cores = %d", CurrentCores(st))
	}
	if AllocatedCores(st) != 4 {
		t.Fatalf("allocated cores = %d", AllocatedCores(st))
	}

	st = foldTo(t, log, log.Len())
	if CurrentCores(st) != 0 {
		t.Fatalf("current cores at end = %d", CurrentCores(st))
	}
	// Removed executors still count toward ever-allocated cores.
	if AllocatedCores(st) != 4 {
		t.Fatalf("allocated cores at end = %d", AllocatedCores(st))
	}
}

func TestTimeUntilFirstTask(t *testing.T) {
	log := fixtureLog()

	if _, ok := TimeUntilFirstTask(foldTo(t, log, 5)); ok {
		t.Fatalf("defined before any task started")
	}
	d, ok := TimeUntilFirstTask(foldTo(t, log, 6))
	if !ok || d != 4*time.Second {
		t.Fatalf("time until first task = %v ok=%v", d, ok)
	}
}

func TestCumulativeCoreUsageSumsToSpan(t *testing.T) {
	st := foldTo(t, fixtureLog(), fixtureLog().Len())
	hist := CumulativeCoreUsage(st)

	want := map[int]int64{0: 8000, 1: 3000, 2: 2000}
	if len(hist) != len(want) {
		t.Fatalf("histogram %+v", hist)
	}
	var total int64
	prev := -1
	for _, row := range hist {
		if row.Cores <= prev {
			t.Fatalf("histogram not ascending: %+v", hist)
		}
		prev = row.Cores
		if want[row.Cores] != row.Duration {
			t.Fatalf("duration for %d cores = %d, want %d", row.Cores, row.Duration, want[row.Cores])
		}
		total += row.Duration
	}
	if total != 13000 {
		t.Fatalf("durations sum to %d, want the 13000ms span", total)
	}
}

func TestIdleTimes(t *testing.T) {
	st := foldTo(t, fixtureLog(), fixtureLog().Len())
	if got := IdleTime(st); got != 8*time.Second {
		t.Fatalf("idle = %v", got)
	}
	if got := IdleTimeSinceFirstTask(st); got != 4*time.Second {
		t.Fatalf("idle since first task = %v", got)
	}
}

func TestMaxima(t *testing.T) {
	st := foldTo(t, fixtureLog(), fixtureLog().Len())
	if MaxConcurrentTasks(st) != 2 || MaxCoreUsage(st) != 2 {
		t.Fatalf("max concurrency %d / %d", MaxConcurrentTasks(st), MaxCoreUsage(st))
	}
	if MaxAllocatedCores(st) != 4 {
		t.Fatalf("max allocated = %d", MaxAllocatedCores(st))
	}
}

func TestCoreUtilization(t *testing.T) {
	st := foldTo(t, fixtureLog(), fixtureLog().Len())
	// 7000 task core-ms over 4 cores * 13000 ms.
	want := 7000.0 / 52000.0 * 100
	if got := CoreUtilization(st); math.Abs(got-want) > 1e-9 {
		t.Fatalf("utilization = %v, want %v", got, want)
	}
	if got := CoreUtilization(NewState()); got != 0 {
		t.Fatalf("utilization of empty state = %v", got)
	}
}

func TestCoreUtilizationCanExceedHundred(t *testing.T) {
	st := NewState()
	st = Apply(st, ApplicationStart{At: at(0), AppID: "x"})
	st = Apply(st, ExecutorAdded{At: at(0), ExecutorID: "e", Cores: 1})
	// Three overlapping tasks on a one-core executor.
	for i := int64(1); i <= 3; i++ {
		st = Apply(st, TaskStart{At: at(0), Task: fixtureTask(i, "e", 1, LocalityAny, 0)})
	}
	for i := int64(1); i <= 3; i++ {
		st = Apply(st, fixtureTaskEnd(i, "e", 1, LocalityAny, 0, 10, 10000))
	}
	if got := CoreUtilization(st); got <= 100 {
		t.Fatalf("oversubscribed utilization = %v, want > 100", got)
	}
}

func TestStageMetrics(t *testing.T) {
	st := foldTo(t, fixtureLog(), fixtureLog().Len())

	report := StageMetrics(st, StageFilter{})
	if len(report.Stages) != 2 {
		t.Fatalf("stages = %+v", report.Stages)
	}

	first := report.Stages[0]
	if first.Stage != (StageIdentifier{JobGroup: "g1", JobDescription: "d1", StageName: "count at foo"}) {
		t.Fatalf("first stage = %+v", first.Stage)
	}
	if len(first.Groups) != 2 {
		t.Fatalf("groups = %+v", first.Groups)
	}
	for _, g := range first.Groups {
		if g.TaskCount != 1 {
			t.Fatalf("group %v task count = %d", g, g.TaskCount)
		}
		if g.Metrics["runTime"].Count != 1 || g.Metrics["runTime"].Stdev != 0 {
			t.Fatalf("singleton stdev = %v", g.Metrics["runTime"])
		}
	}

	var node TaskGroupSummary
	for _, g := range first.Groups {
		if g.Locality == LocalityNodeLocal {
			node = g
		}
	}
	if node.Metrics["runTime"].Mean != 3000 {
		t.Fatalf("node-local runTime mean = %v", node.Metrics["runTime"].Mean)
	}
}

func TestStageMetricsFilters(t *testing.T) {
	st := foldTo(t, fixtureLog(), fixtureLog().Len())

	group := "g1"
	report := StageMetrics(st, StageFilter{JobGroup: &group})
	if len(report.Stages) != 1 || report.Stages[0].Stage.JobGroup != "g1" {
		t.Fatalf("filtered stages = %+v", report.Stages)
	}

	desc := "nope"
	report = StageMetrics(st, StageFilter{JobDescription: &desc})
	if len(report.Stages) != 0 {
		t.Fatalf("filter should exclude everything, got %+v", report.Stages)
	}

	empty := ""
	report = StageMetrics(st, StageFilter{JobGroup: &empty})
	if len(report.Stages) != 0 {
		t.Fatalf("empty-string filter is an exact match, got %+v", report.Stages)
	}
}

func TestStageMetricsAggregatesSameIdentifier(t *testing.T) {
	// Two scheduler stages with identical triples collapse into one entry.
	st := NewState()
	st = Apply(st, JobStart{At: at(0), JobID: 0, JobGroup: "g", JobDescription: "d", StageIDs: []int{1, 2}})
	st = Apply(st, StageSubmitted{At: at(0), StageID: 1, StageName: "same"})
	st = Apply(st, StageSubmitted{At: at(0), StageID: 2, StageName: "same"})
	st = Apply(st, fixtureTaskEnd(1, "e", 1, LocalityAny, 0, 1, 1000))
	st = Apply(st, fixtureTaskEnd(2, "e", 2, LocalityAny, 1, 2, 3000))

	report := StageMetrics(st, StageFilter{})
	if len(report.Stages) != 1 {
		t.Fatalf("stages = %+v", report.Stages)
	}
	rt := report.Stages[0].Groups[0].Metrics["runTime"]
	if rt.Count != 2 || rt.Mean != 2000 {
		t.Fatalf("collapsed runTime = %+v", rt)
	}
}

func TestBuildStateReportOmissions(t *testing.T) {
	meta := AppMeta{ID: "app-1", Name: "fixture"}
	empty := BuildStateReport(meta, NewState(), ProgressAt(0, 20, 0))
	if empty.AppID != "app-1" {
		t.Fatalf("appId fallback = %q", empty.AppID)
	}
	if empty.AllocatedCores != 0 || empty.Executors != nil || empty.TimeUntilFirstTask != 0 {
		t.Fatalf("pre-observation fields leaked: %+v", empty)
	}
	if empty.Progress.Percent != 0 || empty.Progress.HasPrevious {
		t.Fatalf("progress %+v", empty.Progress)
	}

	st := foldTo(t, fixtureLog(), fixtureLog().Len())
	full := BuildStateReport(meta, st, ProgressAt(20, 20, 0))
	if full.AppName != "fixture" || full.AllocatedCores != 4 || len(full.Executors) != 2 {
		t.Fatalf("report %+v", full)
	}
	if full.TimeUntilFirstTask != 4000 {
		t.Fatalf("timeUntilFirstTask = %d", full.TimeUntilFirstTask)
	}
	if full.ApplicationEndedAt == 0 || full.LastUpdatedAt == 0 {
		t.Fatalf("timestamps missing: %+v", full)
	}
	if full.Progress.Percent != 100 || full.Progress.HasNext {
		t.Fatalf("progress %+v", full.Progress)
	}
}

func TestBuildStateReportTaskByExecutor(t *testing.T) {
	st := foldTo(t, fixtureLog(), 7)
	report := BuildStateReport(AppMeta{ID: "app-1"}, st, ProgressAt(7, 20, 2))
	if len(report.CurrentTaskByExecutor) != 2 {
		t.Fatalf("by-executor = %+v", report.CurrentTaskByExecutor)
	}
	if report.CurrentTaskByExecutor[0].ExecutorID != "exec-1" ||
		report.CurrentTaskByExecutor[0].TaskIDs[0] != 1 {
		t.Fatalf("by-executor = %+v", report.CurrentTaskByExecutor)
	}
}
