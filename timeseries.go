package jobscope

import "time"

// timeSeriesTargetBuckets bounds the number of rows in the core-usage time
// series regardless of how long the application ran.
const timeSeriesTargetBuckets = 24

// bucketLadder holds the allowed bucket widths, ascending. The chosen width
// is the smallest one keeping the bucket count at or below the target; spans
// beyond the ladder fall back to whole multiples of a day.
var bucketLadder = []time.Duration{
	time.Second,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
	time.Minute,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
	30 * time.Minute,
	time.Hour,
	2 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
}

// BucketWidth picks the time-series bucket width for a span.
func BucketWidth(span time.Duration) time.Duration {
	for _, w := range bucketLadder {
		if span <= w*timeSeriesTargetBuckets {
			return w
		}
	}
	day := 24 * time.Hour
	w := day
	for span > w*timeSeriesTargetBuckets {
		w += day
	}
	return w
}

// CoreUsageBucket is one time-series row: core-seconds consumed per locality
// class during the bucket, plus the unused capacity. Idle may be negative
// when overlapping tasks exceed the estimated capacity; that is accepted
// behavior, not an error to clamp away.
type CoreUsageBucket struct {
	Start int64                `json:"start"`
	Width int64                `json:"widthMs"`
	Usage map[Locality]float64 `json:"usage"`
	Idle  float64              `json:"idle"`
}

// TimeSeriesCoreUsage partitions the span from the first task to the last
// event into adaptively sized buckets and attributes each task's run time to
// its locality column, weighted by overlap.
func TimeSeriesCoreUsage(st *State) []CoreUsageBucket {
	if st.FirstTaskAt.IsZero() {
		return nil
	}
	from := ms(st.FirstTaskAt)
	to := ms(st.LastUpdatedAt)
	if to <= from {
		to = from + 1
	}
	width := BucketWidth(time.Duration(to-from) * time.Millisecond).Milliseconds()

	type taskSpan struct {
		interval
		locality Locality
	}
	tasks := make([]taskSpan, 0, len(st.CompletedTasks)+len(st.RunningTasks))
	for _, t := range st.CompletedTasks {
		tasks = append(tasks, taskSpan{interval{ms(t.LaunchedAt), ms(t.FinishedAt)}, t.Locality})
	}
	for _, t := range st.RunningTasks {
		tasks = append(tasks, taskSpan{interval{ms(t.LaunchedAt), to}, t.Locality})
	}
	execSpans, execCores := executorIntervals(st)

	buckets := make([]CoreUsageBucket, 0, int((to-from+width-1)/width))
	for start := from; start < to; start += width {
		end := start + width
		usage := make(map[Locality]float64, len(Localities()))
		for _, loc := range Localities() {
			usage[loc] = 0
		}
		var usedMs float64
		for _, t := range tasks {
			overlap := overlapMs(t.interval, start, end)
			if overlap <= 0 {
				continue
			}
			loc := t.locality
			if loc == "" {
				loc = LocalityNoPref
			}
			usage[loc] += float64(overlap) / 1000
			usedMs += float64(overlap)
		}
		// Capacity is the core-time provisioned during this bucket.
		var capacityMs float64
		for i, s := range execSpans {
			overlap := overlapMs(s, start, end)
			if overlap > 0 {
				capacityMs += float64(overlap) * float64(execCores[i])
			}
		}
		buckets = append(buckets, CoreUsageBucket{
			Start: start,
			Width: width,
			Usage: usage,
			Idle:  (capacityMs - usedMs) / 1000,
		})
	}
	return buckets
}

func overlapMs(s interval, from, to int64) int64 {
	start, end := s.start, s.end
	if start < from {
		start = from
	}
	if end > to {
		end = to
	}
	return end - start
}
