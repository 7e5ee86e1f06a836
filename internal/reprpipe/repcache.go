package reprpipe

import (
	"context"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// RepCache stores the latest representation computed for each object so
// a client can fetch current representations directly, independent of
// whether it was listening to the live Publisher feed when they were
// computed.
type RepCache interface {
	Put(ctx context.Context, file ids.FileId, update wire.UpdateChangeMsg) error
	Get(ctx context.Context, file ids.FileId, objs []ids.ObjId) ([]wire.UpdateChangeMsg, error)
}

// CachingPublisher fans a computed representation out to a live
// Publisher and records it in a RepCache, so get_object_representations
// reads stay current without every caller needing to subscribe.
type CachingPublisher struct {
	inner Publisher
	cache RepCache
}

func NewCachingPublisher(inner Publisher, cache RepCache) *CachingPublisher {
	return &CachingPublisher{inner: inner, cache: cache}
}

func (p *CachingPublisher) Publish(ctx context.Context, file ids.FileId, update wire.UpdateChangeMsg) error {
	if err := p.inner.Publish(ctx, file, update); err != nil {
		return err
	}
	return p.cache.Put(ctx, file, update)
}
