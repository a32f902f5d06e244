package testhelpers

import (
	"context"
	"sync"

	"github.com/localnerve/videohost/internal/messaging"
)

// RecordedEvent is one call to Recorder.Publish
type RecordedEvent struct {
	Type    string
	Key     string
	Payload any
}

// Recorder is a Publisher that keeps every event
type Recorder struct {
	mu     sync.Mutex
	events []RecordedEvent
}

var _ messaging.Publisher = (*Recorder)(nil)

func (r *Recorder) Publish(_ context.Context, eventType, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{Type: eventType, Key: key, Payload: payload})
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types lists the recorded event types in publish order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Events returns a copy of every recorded event
func (r *Recorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedEvent(nil), r.events...)
}
