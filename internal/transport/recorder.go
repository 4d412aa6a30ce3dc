package transport

import (
	"context"
	"sync"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/session"
)

// Recorder keeps everything it receives in memory.
type Recorder struct {
	mu           sync.Mutex
	instructions []session.Instructions
	events       []session.ProgressEvent
	summaries    []knowledge.SessionSummary
}

var _ session.Transport = (*Recorder)(nil)

func (r *Recorder) Present(_ context.Context, in session.Instructions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instructions = append(r.instructions, in)
	return nil
}

func (r *Recorder) Progress(_ context.Context, ev session.ProgressEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Complete(_ context.Context, s knowledge.SessionSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, s)
	return nil
}

// Instructions returns the payloads presented so far.
func (r *Recorder) Instructions() []session.Instructions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.Instructions(nil), r.instructions...)
}

// Events returns the progress events received so far.
func (r *Recorder) Events() []session.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.ProgressEvent(nil), r.events...)
}

// Summaries returns the summaries received so far.
func (r *Recorder) Summaries() []knowledge.SessionSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]knowledge.SessionSummary(nil), r.summaries...)
}
