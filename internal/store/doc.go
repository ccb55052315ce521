// Package store defines the repository contracts the progression use cases
// depend on. Implementations hand back fully reconstituted aggregates and
// persist plain snapshots, so no persistence concept leaks into the domain.
//
// Writers must give at-most-one-writer semantics per aggregate. The contracts
// use optimistic versioning: Save fails with ErrConflict when the stored
// version moved on, and RetryOnConflict re-runs the load-mutate-save cycle.
package store
