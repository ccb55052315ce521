package events

// Buffer is the ordered outbox an aggregate records its events into. The
// orchestrating use case drains it after a successful save.
//
// The zero value is an empty buffer ready to use. A Buffer is not safe for
// concurrent use; it belongs to a single aggregate instance.
type Buffer struct {
	events []Event
}

// Record appends events in the order given.
func (b *Buffer) Record(events ...Event) {
	b.events = append(b.events, events...)
}

// Events returns a copy of the buffered events, oldest first.
func (b *Buffer) Events() []Event {
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Clear discards every buffered event.
func (b *Buffer) Clear() {
	b.events = nil
}

// Drain returns the buffered events and empties the buffer.
func (b *Buffer) Drain() []Event {
	out := b.events
	b.events = nil
	if out == nil {
		return []Event{}
	}
	return out
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	return len(b.events)
}
