// Package domain contains the value objects, identifiers and errors of the
// learning progression engine: XP, hearts, streaks and review intervals.
//
// Every value here is immutable. Operations return new values and report
// invariant violations as *ValidationError and illegal operations as
// *DomainError, both carrying a stable ErrorCode. Nothing in this package
// performs I/O or reads the clock; time-dependent operations take the current
// time as an argument.
package domain
