// Package depcache implements the dependency graph (§4.3): for each
// RefId, the set of other RefIds that subscribe to it (so that when a
// datum changes, dependents can be found), versioned by offset the same
// way the object cache versions object state, plus a breadth-first
// traversal answering "everything that transitively depends on these
// roots".
package depcache

import (
	"context"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// API is the dependency cache's public contract.
type API interface {
	// Apply folds one change log entry's dependency list into the
	// graph. Must be called exactly once per entry, in offset order,
	// per file — the same discipline as objectcache.API.Apply.
	Apply(ctx context.Context, file ids.FileId, offset ids.Offset, change wire.ChangeMsg) error

	// GetAllDeps returns the transitive closure of subscribers of roots
	// as of offset, as edges in breadth-first discovery order.
	GetAllDeps(ctx context.Context, file ids.FileId, offset ids.Offset, roots []ids.RefId) ([]ids.Reference, error)
}

// Store is the persistence boundary beneath the service: per-object
// dependency lists (for diffing) and per-RefId subscriber snapshots (for
// traversal).
type Store interface {
	// SetObjDeps replaces the stored positional dependency list for
	// (file, obj), used only to diff against the next Apply call.
	SetObjDeps(ctx context.Context, file ids.FileId, obj ids.ObjId, deps []*ids.Reference) error

	// GetObjDeps returns the previously stored dependency list, or nil
	// if obj has never been applied.
	GetObjDeps(ctx context.Context, file ids.FileId, obj ids.ObjId) ([]*ids.Reference, error)

	// PushSnapshot records subs as the new subscriber set of other as of
	// offset. Snapshots for a given (file, other) accumulate in offset
	// order; none is ever overwritten.
	PushSnapshot(ctx context.Context, file ids.FileId, other ids.RefId, offset ids.Offset, subs []ids.Reference) error

	// SnapshotAtOrBefore returns the subscriber set of other with the
	// greatest recorded offset <= q, or an empty slice if none exists.
	SnapshotAtOrBefore(ctx context.Context, file ids.FileId, other ids.RefId, q ids.Offset) ([]ids.Reference, error)
}
