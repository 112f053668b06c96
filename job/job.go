// Package job runs OCR pipelines as observable, cancellable jobs.
//
// A runner executes one job at a time; starting a second while one is
// running is rejected, not queued. Progress and the terminal outcome are
// published on a per-job event channel for a single consumer. Progress
// events are dropped rather than block a slow consumer; State and Result
// are always authoritative.
package job

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Djnihaal/EasyDocOCR/aggregate"
	"github.com/Djnihaal/EasyDocOCR/lang"
)

var (
	// ErrBusy is returned by Start while another job is running.
	ErrBusy = errors.New("another job is already running")
	// ErrCancelled is the result error of a cancelled job. Partial page
	// results are discarded.
	ErrCancelled = errors.New("job cancelled")
	// ErrNotFinished is returned by Result while the job is still running.
	ErrNotFinished = errors.New("job has not finished")
)

// State is a job's lifecycle position.
type State int32

const (
	// StatePending means the job was accepted but has not started work.
	StatePending State = iota
	// StateRunning means pages are being processed.
	StateRunning
	// StateCompleted means the job produced a result.
	StateCompleted
	// StateFailed means a fatal error stopped the job.
	StateFailed
	// StateCancelled means the job was cancelled before finishing.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// EventType classifies job events.
type EventType int

const (
	// EventProgress reports a page finishing.
	EventProgress EventType = iota
	// EventCompleted reports successful completion.
	EventCompleted
	// EventFailed reports a fatal error; Err carries it.
	EventFailed
	// EventCancelled reports cancellation.
	EventCancelled
)

// Event is one notification from a running job.
type Event struct {
	Type  EventType
	JobID string
	// Page is the page that just finished; Completed counts finished
	// pages. Set on progress events only.
	Page      int
	Completed int
	Total     int
	// Err is set on failure events.
	Err error
}

// Fraction returns completion as a value in [0, 1].
func (e Event) Fraction() float64 {
	if e.Total == 0 {
		return 0
	}
	return float64(e.Completed) / float64(e.Total)
}

// Request describes one OCR job. Its fields are snapshotted when the
// job starts; later mutation by the caller has no effect.
type Request struct {
	// Path is the input document.
	Path string
	// Languages holds engine codes to use verbatim. Empty means detect,
	// then fall back to the configured default.
	Languages []string
}

// Result is the outcome of a completed job.
type Result struct {
	JobID string
	Path  string
	// Text is the assembled document text, page markers and failure
	// placeholders included.
	Text string
	// Summary is empty when every page succeeded.
	Summary string
	// Languages is the resolved language set; Source says how it was
	// chosen.
	Languages lang.Set
	Source    lang.Source
	// Pages is the total processed; Failed lists the pages that did not
	// recognize, in page order.
	Pages    int
	Failed   []aggregate.PageResult
	Duration time.Duration
}

// Job is a single OCR run. Values are created by a Runner.
type Job struct {
	id     string
	req    Request
	state  atomic.Int32
	events chan Event
	done   chan struct{}
	cancel context.CancelFunc

	mu     sync.Mutex
	result *Result
	err    error
}

func newJob(req Request, cancel context.CancelFunc) *Job {
	req.Languages = append([]string(nil), req.Languages...)
	return &Job{
		id:     uuid.NewString(),
		req:    req,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// ID returns the job's unique identifier.
func (j *Job) ID() string {
	return j.id
}

// Request returns the snapshotted request.
func (j *Job) Request() Request {
	return j.req
}

// State returns the current lifecycle state.
func (j *Job) State() State {
	return State(j.state.Load())
}

// Events returns the job's event channel. It is closed after the
// terminal event. Intended for a single consumer.
func (j *Job) Events() <-chan Event {
	return j.events
}

// Done returns a channel closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Cancel requests cancellation. It is cooperative: the page being
// processed finishes, remaining pages are skipped, and partial results
// are discarded. Cancel is safe to call at any time, from any goroutine.
func (j *Job) Cancel() {
	j.cancel()
}

// Result returns the job's outcome. While the job is still running it
// returns ErrNotFinished; after cancellation it returns ErrCancelled.
func (j *Job) Result() (*Result, error) {
	if !j.State().Terminal() {
		return nil, ErrNotFinished
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.err
}

// Wait blocks until the job finishes or ctx expires, then returns the
// outcome. Waiting does not cancel the job when ctx expires.
func (j *Job) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-j.done:
		return j.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// emitProgress publishes a page completion without ever blocking.
func (j *Job) emitProgress(page, completed, total int) {
	ev := Event{
		Type:      EventProgress,
		JobID:     j.id,
		Page:      page,
		Completed: completed,
		Total:     total,
	}
	select {
	case j.events <- ev:
	default:
	}
}

// finish records the terminal outcome, publishes the terminal event, and
// closes the event channel. It must be called exactly once.
func (j *Job) finish(state State, result *Result, err error) {
	j.mu.Lock()
	j.result = result
	j.err = err
	j.mu.Unlock()
	j.state.Store(int32(state))

	ev := Event{JobID: j.id}
	switch state {
	case StateCompleted:
		ev.Type = EventCompleted
	case StateCancelled:
		ev.Type = EventCancelled
	default:
		ev.Type = EventFailed
		ev.Err = err
	}
	select {
	case j.events <- ev:
	default:
	}
	close(j.events)
	close(j.done)
}
