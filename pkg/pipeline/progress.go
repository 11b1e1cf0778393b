package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Snapshot is a consistent copy of a Progress record.
type Snapshot struct {
	ID        string
	Text      string
	Percent   float64
	Done      bool
	Cancelled bool
}

// Progress is the shared record of a running batch. The worker updates it
// after each badge; readers may poll Snapshot from any goroutine or
// subscribe. Subscribers are called on the worker goroutine and must not
// block.
type Progress struct {
	ID string

	mu      sync.Mutex
	text    string
	percent float64
	subs    []func(Snapshot)

	cancelled atomic.Bool
	done      atomic.Bool
}

// NewProgress creates a record with a fresh batch ID.
func NewProgress() *Progress {
	return &Progress{ID: uuid.NewString()}
}

// Subscribe registers fn to receive every update.
func (p *Progress) Subscribe(fn func(Snapshot)) {
	p.mu.Lock()
	p.subs = append(p.subs, fn)
	p.mu.Unlock()
}

// Update sets the current item description and percent complete, then
// notifies subscribers.
func (p *Progress) Update(text string, percent float64) {
	p.mu.Lock()
	p.text = text
	p.percent = min(max(percent, 0), 100)
	subs := p.subs
	p.mu.Unlock()
	p.notify(subs)
}

// Cancel asks the batch to stop after the current badge.
func (p *Progress) Cancel() { p.cancelled.Store(true) }

// Cancelled reports whether Cancel was called.
func (p *Progress) Cancelled() bool { return p.cancelled.Load() }

// Finish marks the batch as done and notifies subscribers.
func (p *Progress) Finish() {
	p.done.Store(true)
	p.mu.Lock()
	subs := p.subs
	p.mu.Unlock()
	p.notify(subs)
}

// Done reports whether the batch has finished.
func (p *Progress) Done() bool { return p.done.Load() }

// Snapshot returns the current state.
func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		ID:        p.ID,
		Text:      p.text,
		Percent:   p.percent,
		Done:      p.done.Load(),
		Cancelled: p.cancelled.Load(),
	}
}

func (p *Progress) notify(subs []func(Snapshot)) {
	if len(subs) == 0 {
		return
	}
	s := p.Snapshot()
	for _, fn := range subs {
		fn(s)
	}
}
