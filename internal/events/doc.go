// Package events provides the domain events raised by the progression
// aggregates and the plumbing that carries them to consumers.
//
// Aggregates record events into a Buffer. After a successful save the use case
// drains the buffer and hands the events to a Publisher, which fans them out
// to every registered Handler (analytics logging, metrics, broadcasters).
//
// The primary components are:
// - Event: the envelope every domain event satisfies, built from Base
// - Buffer: an ordered per-aggregate outbox
// - Handler: interface for components that consume events
// - Publisher: interface for components that deliver drained events
package events
