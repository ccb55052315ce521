// Package memory provides in-process implementations of the store
// interfaces. Every store is safe for concurrent use and copies values on the
// way in and out, so callers never share state with the store.
//
// The stores back the progressctl CLI and the service tests; they keep the
// same error contracts as any persistent implementation would.
package memory
