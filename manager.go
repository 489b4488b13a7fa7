package jobscope

// StateManager owns the (cursor, state) pair for one application's event log
// and moves it at raw-event granularity. Implementations are not safe for
// concurrent use; ScrollingSource serializes access.
//
// Advance and Retreat clamp to [0, Len] and never fail: a zero count is a
// no-op and a negative count delegates to the opposite direction.
type StateManager interface {
	Advance(n int) *State
	Retreat(n int) *State
	ToStart() *State
	ToEnd() *State
	Cursor() int
	Current() *State
}

// CheckpointedManager bounds rewind cost by storing a snapshot every interval
// events while moving forward. A retreat restores the nearest checkpoint at
// or below the target and replays from there, so rewinding costs at most
// interval fold steps regardless of how far back the cursor travels. States
// are immutable, so checkpoints are stored pointers, not copies.
type CheckpointedManager struct {
	log         *EventLog
	interval    int
	cursor      int
	state       *State
	checkpoints map[int]*State
}

// NewCheckpointedManager builds a manager over log with the given checkpoint
// interval. Intervals below 1 fall back to DefaultCheckpointInterval.
func NewCheckpointedManager(log *EventLog, interval int) *CheckpointedManager {
	if interval < 1 {
		interval = DefaultCheckpointInterval
	}
	initial := NewState()
	return &CheckpointedManager{
		log:      log,
		interval: interval,
		state:    initial,
		// The empty state at cursor 0 always exists as the base case.
		checkpoints: map[int]*State{0: initial},
	}
}

// Cursor returns the current cursor in [0, Len].
func (m *CheckpointedManager) Cursor() int { return m.cursor }

// Current returns the state snapshot at the cursor.
func (m *CheckpointedManager) Current() *State { return m.state }

// Advance applies up to n events and returns the resulting state.
func (m *CheckpointedManager) Advance(n int) *State {
	if n < 0 {
		return m.Retreat(-n)
	}
	target := m.cursor + n
	if target > m.log.Len() {
		target = m.log.Len()
	}
	m.replayTo(target)
	return m.state
}

// Retreat moves the cursor back up to n events and returns the resulting
// state.
func (m *CheckpointedManager) Retreat(n int) *State {
	if n < 0 {
		return m.Advance(-n)
	}
	target := m.cursor - n
	if target < 0 {
		target = 0
	}
	if target >= m.cursor {
		return m.state
	}
	base := (target / m.interval) * m.interval
	cp := m.checkpoints[base]
	for cp == nil && base > 0 {
		base -= m.interval
		if base < 0 {
			base = 0
		}
		cp = m.checkpoints[base]
	}
	if cp == nil {
		base, cp = 0, m.checkpoints[0]
	}
	m.cursor, m.state = base, cp
	m.replayTo(target)
	return m.state
}

// ToStart jumps to cursor 0 without replaying anything.
func (m *CheckpointedManager) ToStart() *State {
	m.cursor = 0
	m.state = m.checkpoints[0]
	return m.state
}

// ToEnd applies every remaining event.
func (m *CheckpointedManager) ToEnd() *State {
	m.replayTo(m.log.Len())
	return m.state
}

func (m *CheckpointedManager) replayTo(target int) {
	for m.cursor < target {
		m.state = Apply(m.state, m.log.At(m.cursor))
		m.cursor++
		if m.cursor%m.interval == 0 {
			m.checkpoints[m.cursor] = m.state
		}
	}
}

// NaiveManager is the full-replay reference implementation: every rewind
// refolds from the empty state. It shares the fold with CheckpointedManager
// and exists as the equivalence oracle in tests and as the minimal-memory
// strategy.
type NaiveManager struct {
	log    *EventLog
	cursor int
	state  *State
}

// NewNaiveManager builds a full-replay manager over log.
func NewNaiveManager(log *EventLog) *NaiveManager {
	return &NaiveManager{log: log, state: NewState()}
}

// Cursor returns the current cursor in [0, Len].
func (m *NaiveManager) Cursor() int { return m.cursor }

// Current returns the state snapshot at the cursor.
func (m *NaiveManager) Current() *State { return m.state }

// Advance applies up to n events and returns the resulting state.
func (m *NaiveManager) Advance(n int) *State {
	if n < 0 {
		return m.Retreat(-n)
	}
	target := m.cursor + n
	if target > m.log.Len() {
		target = m.log.Len()
	}
	for m.cursor < target {
		m.state = Apply(m.state, m.log.At(m.cursor))
		m.cursor++
	}
	return m.state
}

// Retreat replays from the beginning up to cursor-n.
func (m *NaiveManager) Retreat(n int) *State {
	if n < 0 {
		return m.Advance(-n)
	}
	target := m.cursor - n
	if target < 0 {
		target = 0
	}
	if target >= m.cursor {
		return m.state
	}
	m.cursor = 0
	m.state = NewState()
	return m.Advance(target)
}

// ToStart jumps back to the empty state.
func (m *NaiveManager) ToStart() *State {
	m.cursor = 0
	m.state = NewState()
	return m.state
}

// ToEnd applies every remaining event.
func (m *NaiveManager) ToEnd() *State {
	return m.Advance(m.log.Len() - m.cursor)
}
