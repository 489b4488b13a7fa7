package jobscope

import (
	"fmt"
	"time"
)

var fixtureBase = time.UnixMilli(1_500_000_000_000)

func at(sec float64) time.Time {
	return fixtureBase.Add(time.Duration(sec * float64(time.Second)))
}

func fixtureTask(id int64, exec string, stage int, loc Locality, launch float64) TaskInfo {
	return TaskInfo{
		TaskID:     id,
		ExecutorID: exec,
		StageID:    stage,
		Partition:  int(id),
		LaunchedAt: at(launch),
		Locality:   loc,
	}
}

func fixtureTaskEnd(id int64, exec string, stage int, loc Locality, launch, finish float64, runTime int64) TaskEnd {
	task := fixtureTask(id, exec, stage, loc, launch)
	task.FinishedAt = at(finish)
	task.Metrics = TaskMetrics{RunTime: runTime, GCTime: runTime / 10, ResultSize: 100 * id}
	return TaskEnd{At: at(finish), TaskType: "ResultTask", Task: task}
}

// fixtureLog is a 20-event application: two executors of two cores each, two
// jobs with one stage each, three tasks, both executors removed before the
// application ends. Timeline spans 13 seconds.
func fixtureLog() *EventLog {
	return NewEventLog([]Event{
		ApplicationStart{At: at(0), AppID: "app-1", AppName: "fixture", User: "tester"}, // 0
		ExecutorAdded{At: at(1), ExecutorID: "exec-1", Host: "host-a", Cores: 2},        // 1
		ExecutorAdded{At: at(2), ExecutorID: "exec-2", Host: "host-b", Cores: 2},        // 2
		JobStart{At: at(3), JobID: 0, JobGroup: "g1", JobDescription: "d1", StageIDs: []int{1}}, // 3
		StageSubmitted{At: at(3), StageID: 1, StageName: "count at foo", TaskCount: 2},          // 4
		TaskStart{At: at(4), Task: fixtureTask(1, "exec-1", 1, LocalityProcessLocal, 4)},        // 5
		TaskStart{At: at(4), Task: fixtureTask(2, "exec-2", 1, LocalityNodeLocal, 4)},           // 6
		fixtureTaskEnd(1, "exec-1", 1, LocalityProcessLocal, 4, 6, 2000),                        // 7
		fixtureTaskEnd(2, "exec-2", 1, LocalityNodeLocal, 4, 7, 3000),                           // 8
		StageCompleted{At: at(7), StageID: 1, StageName: "count at foo"},                        // 9
		JobEnd{At: at(7), JobID: 0, Succeeded: true},                                            // 10
		JobStart{At: at(8), JobID: 1, JobGroup: "g2", JobDescription: "d2", StageIDs: []int{2}}, // 11
		StageSubmitted{At: at(8), StageID: 2, StageName: "save at bar", TaskCount: 1},           // 12
		TaskStart{At: at(9), Task: fixtureTask(3, "exec-1", 2, LocalityAny, 9)},                 // 13
		fixtureTaskEnd(3, "exec-1", 2, LocalityAny, 9, 11, 2000),                                // 14
		StageCompleted{At: at(11), StageID: 2, StageName: "save at bar"},                        // 15
		JobEnd{At: at(11), JobID: 1, Succeeded: true},                                           // 16
		ExecutorRemoved{At: at(12), ExecutorID: "exec-2", Reason: "idle"},                       // 17
		ExecutorRemoved{At: at(12.5), ExecutorID: "exec-1", Reason: "shutdown"},                 // 18
		ApplicationEnd{At: at(13)},                                                             // 19
	})
}

// generatedLog builds a longer log of back-to-back single-task stages, useful
// for exercising checkpoint boundaries.
func generatedLog(tasks int) *EventLog {
	evs := []Event{
		ApplicationStart{At: at(0), AppID: "app-gen", AppName: "generated"},
		ExecutorAdded{At: at(0), ExecutorID: "exec-1", Cores: 4},
	}
	for i := 0; i < tasks; i++ {
		stage := i + 1
		base := float64(i + 1)
		evs = append(evs,
			JobStart{At: at(base), JobID: i, JobGroup: "gen", JobDescription: "loop", StageIDs: []int{stage}},
			StageSubmitted{At: at(base), StageID: stage, StageName: fmt.Sprintf("step %d", i%3)},
			TaskStart{At: at(base + 0.1), Task: fixtureTask(int64(i+1), "exec-1", stage, LocalityNodeLocal, base+0.1)},
			fixtureTaskEnd(int64(i+1), "exec-1", stage, LocalityNodeLocal, base+0.1, base+0.8, 700),
			StageCompleted{At: at(base + 0.9), StageID: stage, StageName: fmt.Sprintf("step %d", i%3)},
			JobEnd{At: at(base + 0.9), JobID: i, Succeeded: true},
		)
	}
	evs = append(evs, ApplicationEnd{At: at(float64(tasks) + 1)})
	return NewEventLog(evs)
}
