package jobscope

// Apply folds one event into a state and returns the resulting state. It is
// pure and total: every event kind is handled, the input state is never
// mutated, and well-formed index-ordered input cannot make it fail. Applying
// a batch of events one at a time equals applying them in any grouping, which
// is what lets the checkpoint/replay machinery restore and re-fold freely.
func Apply(s *State, ev Event) *State {
	next := *s
	next.LastUpdatedAt = ev.When()

	switch e := ev.(type) {
	case ApplicationStart:
		next.AppID = e.AppID
		next.AppName = e.AppName
		next.AppLaunchedAt = e.At

	case ApplicationEnd:
		next.AppEndedAt = e.At

	case ExecutorAdded:
		execs := cloneMap(s.Executors)
		execs[e.ExecutorID] = ExecutorInfo{
			ID:      e.ExecutorID,
			Host:    e.Host,
			Cores:   e.Cores,
			AddedAt: e.At,
		}
		next.Executors = execs

	case ExecutorRemoved:
		if info, ok := s.Executors[e.ExecutorID]; ok {
			execs := cloneMap(s.Executors)
			info.RemovedAt = e.At
			execs[e.ExecutorID] = info
			next.Executors = execs
		}

	case JobStart:
		ids := cloneMap(s.stageIDs)
		for _, stageID := range e.StageIDs {
			ident := ids[stageID]
			ident.JobGroup = e.JobGroup
			ident.JobDescription = e.JobDescription
			ids[stageID] = ident
		}
		next.stageIDs = ids
		if e.JobGroup != "" {
			groups := cloneMap(s.jobGroups)
			groups[e.JobGroup] = struct{}{}
			next.jobGroups = groups
		}

	case JobEnd:
		// Only moves LastUpdatedAt; job bookkeeping lives on the stages.

	case StageSubmitted:
		ids := cloneMap(s.stageIDs)
		ident := ids[e.StageID]
		ident.StageName = e.StageName
		ids[e.StageID] = ident
		next.stageIDs = ids

	case StageCompleted:
		// Only moves LastUpdatedAt; completed-task stats accumulate per task.

	case TaskStart:
		task := e.Task
		if task.LaunchedAt.IsZero() {
			task.LaunchedAt = e.At
		}
		running := cloneMap(s.RunningTasks)
		running[task.TaskID] = task
		next.RunningTasks = running
		if s.FirstTaskAt.IsZero() {
			next.FirstTaskAt = task.LaunchedAt
		}

	case TaskEnd:
		task := e.Task
		task.TaskType = e.TaskType
		if task.FinishedAt.IsZero() {
			task.FinishedAt = e.At
		}
		if prev, ok := s.RunningTasks[task.TaskID]; ok {
			if task.LaunchedAt.IsZero() {
				task.LaunchedAt = prev.LaunchedAt
			}
			if task.Locality == "" {
				task.Locality = prev.Locality
			}
			running := cloneMap(s.RunningTasks)
			delete(running, task.TaskID)
			next.RunningTasks = running
		}

		// Full copy, not append on the shared backing array: a replay from a
		// checkpoint must never clobber a later snapshot's slice.
		completed := make([]TaskInfo, len(s.CompletedTasks), len(s.CompletedTasks)+1)
		copy(completed, s.CompletedTasks)
		next.CompletedTasks = append(completed, task)

		ident := next.StageIdentifierFor(task.StageID)
		group := TaskGroup{Locality: task.Locality, TaskType: task.TaskType}
		stats := cloneMap(s.StageStats)
		stage := cloneMap(stats[ident])
		gs := cloneMap(stage[group])
		for _, col := range task.Metrics.Columns() {
			gs[col.Name] = gs[col.Name].Add(col.Value)
		}
		stage[group] = gs
		stats[ident] = stage
		next.StageStats = stats
	}

	return &next
}
