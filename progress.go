package jobscope

import (
	"fmt"
	"math"
)

// Progress describes the cursor position in human-readable form.
type Progress struct {
	Percent     int    `json:"percent"`
	Description string `json:"description"`
	HasNext     bool   `json:"hasNext"`
	HasPrevious bool   `json:"hasPrevious"`
}

// ProgressAt computes progress from a cursor, the log length and the number
// of currently running tasks. It is a pure function.
func ProgressAt(cursor, total, active int) Progress {
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(cursor) / float64(total) * 100))
	}
	return Progress{
		Percent:     percent,
		Description: fmt.Sprintf("Completed %d / %d (%d%%) with %d active.", cursor, total, percent, active),
		HasNext:     cursor < total,
		HasPrevious: cursor > 0,
	}
}
