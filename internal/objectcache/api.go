// Package objectcache implements the per-file object history and
// alive-set (§4.2): a point-in-time view answering "what was object x at
// offset ≤ Q" without replaying the whole log, built by applying each
// change log entry in order exactly once.
package objectcache

import (
	"context"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// Query asks for the state of Obj at the greatest offset <= Offset.
type Query struct {
	Offset ids.Offset
	Obj    ids.ObjId
}

// API is the object cache's public contract.
type API interface {
	// Apply folds one change log entry into the cache. Callers (the log
	// consumer driving C2) must call this exactly once per entry, in
	// offset order, per file.
	Apply(ctx context.Context, file ids.FileId, offset ids.Offset, change wire.ChangeMsg) error

	// GetObjects answers a batch of point-in-time queries. A nil result
	// at index i means "missing" or "deleted at or before that offset";
	// this call does not distinguish the two (Store.AtOrBefore returns
	// the Delete entry itself for a deleted object).
	GetObjects(ctx context.Context, file ids.FileId, queries []Query) ([]*wire.ChangeMsg, error)

	// LatestOffset returns the greatest offset this cache has observed
	// for file.
	LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error)

	// LatestAliveIDs streams every ObjId currently alive in file.
	LatestAliveIDs(ctx context.Context, file ids.FileId) (<-chan ids.ObjId, error)
}

// Store is the persistence boundary beneath the service.
type Store interface {
	// Append records one (file, obj, offset) -> change entry. Entries
	// for the same (file, obj) accumulate; nothing is ever overwritten
	// or deleted, since point-in-time reads must see every prior state.
	Append(ctx context.Context, file ids.FileId, obj ids.ObjId, offset ids.Offset, change wire.ChangeMsg) error

	// AtOrBefore returns the entry for (file, obj) with the greatest
	// offset <= q, or nil if none exists.
	AtOrBefore(ctx context.Context, file ids.FileId, obj ids.ObjId, q ids.Offset) (*wire.ChangeMsg, error)

	// SetAlive adds or removes obj from file's alive set.
	SetAlive(ctx context.Context, file ids.FileId, obj ids.ObjId, alive bool) error

	// AliveIDs lists file's current alive set.
	AliveIDs(ctx context.Context, file ids.FileId) ([]ids.ObjId, error)

	// Advance records the highest offset seen for file, if greater than
	// what is already stored.
	Advance(ctx context.Context, file ids.FileId, offset ids.Offset) error

	// LatestOffset returns the highest offset recorded via Advance, or 0.
	LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error)
}
