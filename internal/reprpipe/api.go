// Package reprpipe implements the representation pipeline (§4.8): a
// best-effort consumer of the change log that computes each changed
// object's client-visible representation via C5 and republishes it on the
// representation topic keyed by file, independent of and downstream from
// the submit path.
package reprpipe

import (
	"context"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objdefs"
	"github.com/weaveform/weave/internal/wire"
)

// ChangeLog is the subset of changelog.API the pipeline depends on.
type ChangeLog interface {
	Subscribe(ctx context.Context, file ids.FileId, after ids.Offset) (<-chan wire.OffsetedChange, error)
}

// Publisher hands one computed UpdateChangeMsg off to whatever transport
// fans it out to clients (Kafka in production, an in-process channel in
// tests).
type Publisher interface {
	Publish(ctx context.Context, file ids.FileId, update wire.UpdateChangeMsg) error
}

// OffsetStore tracks, per (file, obj), the highest offset already
// published, so a consumer restarting mid-stream (or replaying for
// recovery) skips work it already did. Best-effort: a lost dedup record
// costs a redundant publish, never a missed one.
type OffsetStore interface {
	LastPublished(ctx context.Context, file ids.FileId, obj ids.ObjId) (ids.Offset, bool, error)
	SetLastPublished(ctx context.Context, file ids.FileId, obj ids.ObjId, offset ids.Offset) error
}

// GeomKernel is re-exported so callers wiring this package do not also
// need to import objdefs directly just to name the kernel type.
type GeomKernel = objdefs.GeomKernel
