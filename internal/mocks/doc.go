// Package mocks provides hand-written test doubles for the store and event
// interfaces.
//
// Each mock exposes an optional Fn field per method, default return values
// used when the Fn is nil, and call records guarded by a mutex. The progress
// store mock rebuilds a fresh aggregate from its Snapshot on every load, so a
// test can drive the service's retry loop without a real store:
//
//	ps := &mocks.MockProgressStore{
//	    Snapshot: &snapshot,
//	    SaveFn: func(context.Context, *progress.UserProgress) error {
//	        return store.ErrConflict
//	    },
//	}
//
// Prefer the in-memory stores in internal/platform/memory when a test needs
// real persistence semantics.
package mocks
