// Package submitpipe implements the submit pipeline (§4.6): the single
// entry point through which a user's batch of changes is widened to its
// full dependency closure, propagated through each affected object's
// update recipe, and committed to the change log as one atomic append.
// Grounded on original_source's operations-server/src/main.rs (the RPC
// entry point) and operations-lib/src/updates.rs (the propagation pass).
package submitpipe

import (
	"context"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objectcache"
	"github.com/weaveform/weave/internal/wire"
)

// API is the submit pipeline's public contract.
type API interface {
	// Submit widens batch to its dependency closure as of clientOffset,
	// propagates updates through it, and appends the result to the
	// change log in one atomic call. clientOffset bounds the snapshot
	// the caller read from; per §5, this is a staleness hint, not a
	// freshness guarantee.
	Submit(ctx context.Context, file ids.FileId, user ids.UserId, clientOffset ids.Offset, batch []wire.ChangeMsg) ([]ids.Offset, error)
}

// ChangeLog is the subset of changelog.API the pipeline depends on.
type ChangeLog interface {
	Append(ctx context.Context, file ids.FileId, batch []wire.ChangeMsg) ([]ids.Offset, error)
}

// ObjectCache is the subset of objectcache.API the pipeline depends on.
type ObjectCache interface {
	GetObjects(ctx context.Context, file ids.FileId, queries []objectcache.Query) ([]*wire.ChangeMsg, error)
}

// DepCache is the subset of depcache.API the pipeline depends on.
type DepCache interface {
	GetAllDeps(ctx context.Context, file ids.FileId, offset ids.Offset, roots []ids.RefId) ([]ids.Reference, error)
}
