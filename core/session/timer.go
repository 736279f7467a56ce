package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type State int

// Timer states
const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Outcome int

// Run outcomes
const (
	Completed Outcome = iota + 1
	Abandoned
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Abandoned:
		return "abandoned"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result describes a finished run.
type Result struct {
	Outcome Outcome
	Seconds int
	Session *StudySession // set when Outcome is Completed
}

// Snapshot is a point-in-time copy of the timer.
type Snapshot struct {
	State     State
	ModuleID  string
	Minutes   int
	Remaining int // seconds
	Elapsed   int // seconds
}

// Timer counts down one study run and hands completed runs to a Recorder.
// Elapsed time is counted in ticks: one Tick is one second, whatever the wall clock says.
// A Timer is safe for concurrent use.
type Timer struct {
	mu        sync.Mutex
	rec       Recorder
	state     State
	moduleID  string
	minutes   int
	remaining int
	elapsed   int
	finished  chan Result
}

func NewTimer(rec Recorder) *Timer {
	return &Timer{
		rec:       rec,
		minutes:   DefaultMinutes,
		remaining: DefaultMinutes * 60,
	}
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		State:     t.state,
		ModuleID:  t.moduleID,
		Minutes:   t.minutes,
		Remaining: t.remaining,
		Elapsed:   t.elapsed,
	}
}

func (t *Timer) SelectModule(moduleID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Idle {
		return ErrTimerBusy
	}
	t.moduleID = moduleID
	return nil
}

// SetDuration changes the countdown length. Only allowed while Idle.
func (t *Timer) SetDuration(minutes int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Idle {
		return ErrTimerBusy
	}
	if !IsValidDuration(minutes) {
		return ErrInvalidDuration
	}
	t.minutes = minutes
	t.remaining = minutes * 60
	return nil
}

func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Idle {
		return ErrTimerBusy
	}
	if t.moduleID == "" {
		return ErrNoModuleSelected
	}
	t.state = Running
	t.finished = make(chan Result, 1)
	return nil
}

func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Running {
		return ErrTimerIdle
	}
	t.state = Paused
	return nil
}

func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Paused {
		return ErrTimerIdle
	}
	t.state = Running
	return nil
}

// Tick accounts for one elapsed second. Ticks are ignored unless the timer is Running.
// The returned Result is non-nil when the countdown reached zero and the run finished.
func (t *Timer) Tick(ctx context.Context) (*Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Running {
		return nil, nil
	}
	if t.remaining > 0 {
		t.remaining--
		t.elapsed++
	}
	if t.remaining > 0 {
		return nil, nil
	}
	res, err := t.complete(ctx)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Done finishes the current run before the countdown ends.
func (t *Timer) Done(ctx context.Context) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Idle {
		return Result{}, ErrTimerIdle
	}
	return t.complete(ctx)
}

// Reset drops the current run without recording it.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset()
}

// Run ticks the timer on every value received from ticks until the run finishes,
// either by running out or through Done, or ctx is cancelled.
// A run finished through Done before Run was called is still returned.
// When recording fails at the end of the countdown, Run returns the error and the run stays Paused:
// calling Run again resumes waiting for it.
func (t *Timer) Run(ctx context.Context, ticks <-chan time.Time) (Result, error) {
	t.mu.Lock()
	finished := t.finished
	idle := t.state == Idle && len(finished) == 0
	t.mu.Unlock()
	if finished == nil || idle {
		return Result{}, ErrTimerIdle
	}

	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case res := <-finished:
			return res, nil
		case <-ticks:
			if _, err := t.Tick(ctx); err != nil {
				return Result{}, err
			}
		}
	}
}

// complete must be called with t.mu held.
// On a persistence failure the run is kept, Paused, so it can be resumed or completed again.
func (t *Timer) complete(ctx context.Context) (Result, error) {
	res := Result{Outcome: Abandoned, Seconds: t.elapsed}
	if t.elapsed > MinSeconds {
		sess, err := t.rec.Record(ctx, t.moduleID, t.elapsed)
		if err != nil {
			t.state = Paused
			return Result{}, err
		}
		res.Outcome = Completed
		res.Session = &sess
	}

	if t.finished != nil {
		select {
		case t.finished <- res:
		default:
		}
	}
	t.reset()
	return res, nil
}

// reset must be called with t.mu held.
// The finished channel is kept so a pending Result can still be collected by Run.
func (t *Timer) reset() {
	t.state = Idle
	t.remaining = t.minutes * 60
	t.elapsed = 0
}

// FormatClock renders seconds as MM:SS.
func FormatClock(totalSeconds int) string {
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
