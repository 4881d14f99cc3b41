package timeline

import (
	"context"
	"slices"
)

// MemoryEvent is an in-memory Event for tests and small fixtures. It records
// how often Commit ran so exactly-once behavior stays observable.
type MemoryEvent struct {
	data      map[string]any
	tags      []string
	attrs     map[string]any
	commits   int
	commitErr error
}

func NewMemoryEvent(data map[string]any) *MemoryEvent {
	return &MemoryEvent{data: data, attrs: make(map[string]any)}
}

func (e *MemoryEvent) Source() map[string]any { return e.data }

func (e *MemoryEvent) AddTags(tags []string) {
	for _, tag := range tags {
		if !slices.Contains(e.tags, tag) {
			e.tags = append(e.tags, tag)
		}
	}
}

func (e *MemoryEvent) AddAttributes(attrs map[string]any) {
	for name, value := range attrs {
		e.attrs[name] = value
	}
}

func (e *MemoryEvent) Commit() error {
	if e.commitErr != nil {
		return e.commitErr
	}
	e.commits++
	return nil
}

// FailCommit makes every subsequent Commit return err.
func (e *MemoryEvent) FailCommit(err error) { e.commitErr = err }

func (e *MemoryEvent) Tags() []string             { return e.tags }
func (e *MemoryEvent) Attributes() map[string]any { return e.attrs }
func (e *MemoryEvent) Commits() int               { return e.commits }

// MemorySource serves a fixed list of events.
type MemorySource struct {
	events []*MemoryEvent
}

func NewMemorySource(events ...*MemoryEvent) *MemorySource {
	return &MemorySource{events: events}
}

func (s *MemorySource) Add(events ...*MemoryEvent) {
	s.events = append(s.events, events...)
}

func (s *MemorySource) Stream(_ context.Context, fields []string) (Cursor, error) {
	var selected []Event
	for _, ev := range s.events {
		for _, field := range fields {
			if _, ok := ev.data[field]; ok {
				selected = append(selected, ev)
				break
			}
		}
	}
	return &sliceCursor{events: selected}, nil
}

// sliceCursor is a one-shot cursor over a fixed slice.
type sliceCursor struct {
	events []Event
	pos    int
}

func (c *sliceCursor) Next() bool {
	if c.pos >= len(c.events) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Event() Event { return c.events[c.pos-1] }
func (c *sliceCursor) Err() error   { return nil }
func (c *sliceCursor) Close() error { return nil }
