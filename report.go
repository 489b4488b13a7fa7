package jobscope

import "sort"

// ExecutorTasks lists the tasks currently running on one executor.
type ExecutorTasks struct {
	ExecutorID string  `json:"executorId"`
	TaskIDs    []int64 `json:"taskIds"`
}

// StateReport is the JSON-able view of a state snapshot plus its derived
// metrics. Fields that are meaningless before any task or executor has been
// observed are omitted instead of emitted as zeroes.
type StateReport struct {
	AppName                   string              `json:"appName,omitempty"`
	AppID                     string              `json:"appId"`
	AllocatedCores            int                 `json:"allocatedCores,omitempty"`
	Executors                 []ExecutorInfo      `json:"executors,omitempty"`
	CurrentCores              int                 `json:"currentCores"`
	RunningTasks              int                 `json:"runningTasks"`
	CurrentTaskByExecutor     []ExecutorTasks     `json:"currentTaskByExecutor,omitempty"`
	TimeUntilFirstTask        int64               `json:"timeUntilFirstTask,omitempty"`
	TimeSeriesCoreUsage       []CoreUsageBucket   `json:"timeSeriesCoreUsage,omitempty"`
	CumulativeCoreUsage       []CoreUsageDuration `json:"cumulativeCoreUsage,omitempty"`
	IdleTime                  int64               `json:"idleTime"`
	IdleTimeSinceFirstTask    int64               `json:"idleTimeSinceFirstTask"`
	MaxConcurrentTasks        int                 `json:"maxConcurrentTasks"`
	MaxAllocatedCores         int                 `json:"maxAllocatedCores"`
	MaxCoreUsage              int                 `json:"maxCoreUsage"`
	CoreUtilizationPercentage float64             `json:"coreUtilizationPercentage"`
	JobGroups                 []string            `json:"jobGroups,omitempty"`
	LastUpdatedAt             int64               `json:"lastUpdatedAt"`
	ApplicationLaunchedAt     int64               `json:"applicationLaunchedAt,omitempty"`
	ApplicationEndedAt        int64               `json:"applicationEndedAt,omitempty"`
	Progress                  Progress            `json:"progress"`
}

// BuildStateReport assembles the full report for one snapshot.
func BuildStateReport(meta AppMeta, st *State, progress Progress) StateReport {
	report := StateReport{
		AppName:                   st.AppName,
		AppID:                     st.AppID,
		AllocatedCores:            AllocatedCores(st),
		CurrentCores:              CurrentCores(st),
		RunningTasks:              len(st.RunningTasks),
		TimeSeriesCoreUsage:       TimeSeriesCoreUsage(st),
		CumulativeCoreUsage:       CumulativeCoreUsage(st),
		IdleTime:                  IdleTime(st).Milliseconds(),
		IdleTimeSinceFirstTask:    IdleTimeSinceFirstTask(st).Milliseconds(),
		MaxConcurrentTasks:        MaxConcurrentTasks(st),
		MaxAllocatedCores:         MaxAllocatedCores(st),
		MaxCoreUsage:              MaxCoreUsage(st),
		CoreUtilizationPercentage: CoreUtilization(st),
		LastUpdatedAt:             ms(st.LastUpdatedAt),
		ApplicationLaunchedAt:     ms(st.AppLaunchedAt),
		ApplicationEndedAt:        ms(st.AppEndedAt),
		Progress:                  progress,
	}
	if report.AppID == "" {
		report.AppID = meta.ID
	}
	if report.AppName == "" {
		report.AppName = meta.Name
	}
	if d, ok := TimeUntilFirstTask(st); ok {
		report.TimeUntilFirstTask = d.Milliseconds()
	}
	if len(st.Executors) > 0 {
		execs := make([]ExecutorInfo, 0, len(st.Executors))
		for _, e := range st.Executors {
			execs = append(execs, e)
		}
		sort.Slice(execs, func(i, j int) bool { return execs[i].ID < execs[j].ID })
		report.Executors = execs
	}
	if len(st.RunningTasks) > 0 {
		byExec := map[string][]int64{}
		for id, t := range st.RunningTasks {
			byExec[t.ExecutorID] = append(byExec[t.ExecutorID], id)
		}
		for _, ids := range byExec {
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		}
		execIDs := make([]string, 0, len(byExec))
		for id := range byExec {
			execIDs = append(execIDs, id)
		}
		sort.Strings(execIDs)
		for _, id := range execIDs {
			report.CurrentTaskByExecutor = append(report.CurrentTaskByExecutor, ExecutorTasks{ExecutorID: id, TaskIDs: byExec[id]})
		}
	}
	if groups := st.JobGroups(); len(groups) > 0 {
		sort.Strings(groups)
		report.JobGroups = groups
	}
	return report
}
