package authcore

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType names the audited account lifecycle actions.
type EventType string

const (
	// EventLoggedIn is recorded on every successful identity resolution.
	EventLoggedIn EventType = "LOGGED_IN"
	// EventLoggedOut is recorded on logout.
	EventLoggedOut EventType = "LOGGED_OUT"
)

// Event is the audit record handed to the host's event log. Fire-and-forget
// from the engine's perspective.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"event_type"`
	AccountID string    `json:"account_id,omitempty"`
	Login     string    `json:"login,omitempty"`
	Origin    string    `json:"origin,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// EventSink receives emitted audit events.
type EventSink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
