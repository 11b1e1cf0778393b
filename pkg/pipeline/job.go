package pipeline

import "context"

// BatchFunc is the body of a batch. It receives the job's context and
// progress record.
type BatchFunc func(ctx context.Context, p *Progress) (*Result, error)

// Job is a batch running on its own goroutine.
type Job struct {
	ID       string
	Progress *Progress

	cancel context.CancelFunc
	done   chan struct{}
	result *Result
	err    error
}

// Start runs fn on a dedicated goroutine and returns immediately.
func (r *Runner) Start(ctx context.Context, fn BatchFunc) *Job {
	ctx, cancel := context.WithCancel(ctx)
	p := NewProgress()
	j := &Job{
		ID:       p.ID,
		Progress: p,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	r.Logger.Debug("batch started", "job", j.ID)

	go func() {
		defer close(j.done)
		defer cancel()
		j.result, j.err = fn(ctx, p)
		p.Finish()
	}()
	return j
}

// Done is closed when the batch returns.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the batch returns.
func (j *Job) Wait() (*Result, error) {
	<-j.done
	return j.result, j.err
}

// Cancel asks the batch to stop after the current badge. It does not wait.
func (j *Job) Cancel() {
	j.Progress.Cancel()
	j.cancel()
}
