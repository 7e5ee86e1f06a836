package submitpipe

import (
	"context"
	"fmt"

	"github.com/weaveform/weave/internal/apierr"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objdefs"
	"github.com/weaveform/weave/internal/objectcache"
	"github.com/weaveform/weave/internal/wire"
)

type Service struct {
	log     ChangeLog
	objects ObjectCache
	deps    DepCache
}

func NewService(log ChangeLog, objects ObjectCache, deps DepCache) *Service {
	return &Service{log: log, objects: objects, deps: deps}
}

// entry is one object carried through steps 4-7: the merged set, in
// insertion order (batch first, then fetched closure members), each
// tagged with the ChangeMsg shape it must materialize back into.
type entry struct {
	id      ids.ObjId
	deleted bool
	kind    wire.ChangeKind
	user    ids.UserId
	source  wire.Source
	obj     objdefs.Type // nil when deleted
	touched bool         // set once by this submit's own propagation pass
}

func (s *Service) Submit(ctx context.Context, file ids.FileId, user ids.UserId, clientOffset ids.Offset, batch []wire.ChangeMsg) ([]ids.Offset, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("submitpipe: empty batch: %w", apierr.ErrFailedPrecondition)
	}

	order := make([]*entry, 0, len(batch))
	byID := make(map[ids.ObjId]*entry, len(batch))
	var seeds []ids.RefId
	seenSeed := make(map[ids.RefId]bool)
	addSeedsFor := func(id ids.ObjId, t objdefs.Type) {
		for _, kind := range ids.AllRefTypes {
			for i := 0; i < t.NumResultsForKind(kind); i++ {
				rid := ids.RefId{Obj: id, Kind: kind, Index: uint64(i)}
				if !seenSeed[rid] {
					seenSeed[rid] = true
					seeds = append(seeds, rid)
				}
			}
		}
	}

	// Step 1: decode the batch and collect seed refs — every RefId each
	// Add/Modify object exposes results for, since any of those may have
	// just changed and must be checked against the dependency graph. A
	// Delete carries no object of its own, so its seeds come from the
	// prior state at clientOffset: whatever slots it used to expose are
	// exactly the ones a dependent could have bound to.
	var priorQueries []objectcache.Query
	var priorIDs []ids.ObjId
	for _, change := range batch {
		e := &entry{id: change.ObjId(), kind: change.Kind, user: change.User, source: change.Source, deleted: change.Kind == wire.KindDelete}
		if e.deleted {
			priorQueries = append(priorQueries, objectcache.Query{Offset: clientOffset, Obj: e.id})
			priorIDs = append(priorIDs, e.id)
		} else {
			if change.Object == nil {
				return nil, fmt.Errorf("submitpipe: %s change missing object: %w", change.Kind, apierr.ErrInvalidArgument)
			}
			t, err := objdefs.Decode(change.Object.ObjData)
			if err != nil {
				return nil, fmt.Errorf("submitpipe: decode %s: %w", e.id, err)
			}
			e.obj = t
			addSeedsFor(e.id, t)
		}
		order = append(order, e)
		byID[e.id] = e
	}

	if len(priorQueries) > 0 {
		prior, err := s.objects.GetObjects(ctx, file, priorQueries)
		if err != nil {
			return nil, fmt.Errorf("submitpipe: fetch prior state of deleted objects: %w", err)
		}
		for i, msg := range prior {
			if msg == nil || msg.Kind == wire.KindDelete || msg.Object == nil {
				continue
			}
			t, err := objdefs.Decode(msg.Object.ObjData)
			if err != nil {
				return nil, fmt.Errorf("submitpipe: decode prior state of %s: %w", priorIDs[i], err)
			}
			addSeedsFor(priorIDs[i], t)
		}
	}

	// Step 2: traverse dependents.
	edges, err := s.deps.GetAllDeps(ctx, file, clientOffset, seeds)
	if err != nil {
		return nil, fmt.Errorf("submitpipe: get all deps: %w", err)
	}

	// Step 3: fetch closure objects not already in the batch.
	var queries []objectcache.Query
	queryIDs := make([]ids.ObjId, 0)
	queued := make(map[ids.ObjId]bool)
	for _, edge := range edges {
		for _, rid := range [2]ids.RefId{edge.Owner, edge.Other} {
			if _, inBatch := byID[rid.Obj]; inBatch || queued[rid.Obj] {
				continue
			}
			queued[rid.Obj] = true
			queries = append(queries, objectcache.Query{Offset: clientOffset, Obj: rid.Obj})
			queryIDs = append(queryIDs, rid.Obj)
		}
	}

	if len(queries) > 0 {
		fetched, err := s.objects.GetObjects(ctx, file, queries)
		if err != nil {
			return nil, fmt.Errorf("submitpipe: fetch closure objects: %w", err)
		}
		for i, msg := range fetched {
			id := queryIDs[i]
			if msg == nil || msg.Kind == wire.KindDelete || msg.Object == nil {
				// Dangling or deleted: left out of byID entirely, so
				// PropagateOne's "other absent" branch prunes any edge
				// referencing it (§7, §8 invariant 7).
				continue
			}
			t, err := objdefs.Decode(msg.Object.ObjData)
			if err != nil {
				return nil, fmt.Errorf("submitpipe: decode closure object %s: %w", id, err)
			}
			// Step 4: merge — closure members join as Modify, tagged
			// with the submitting user.
			e := &entry{id: id, kind: wire.KindModify, user: user, source: wire.UserAction(), obj: t}
			order = append(order, e)
			byID[id] = e
		}
	}

	objects := make(map[ids.ObjId]objdefs.Type, len(byID))
	for id, e := range byID {
		if e.obj != nil {
			objects[id] = e.obj
		}
	}

	// Step 5: propagate, in the order C3 returned the edges.
	for _, edge := range edges {
		ownerEntry, ok := byID[edge.Owner.Obj]
		if !ok || ownerEntry.deleted {
			continue
		}
		objdefs.PropagateOne(objects, &edge)
		ownerEntry.touched = true
	}

	// Step 6: recalculate every mutated object.
	for _, e := range order {
		if e.touched && e.obj != nil {
			e.obj.Recalculate()
		}
	}

	// Step 7: materialize. Batch entries are always re-emitted (the user
	// asked for them); closure entries are re-emitted only if touched,
	// since an untouched closure member didn't actually change.
	materialized := make([]wire.ChangeMsg, 0, len(order))
	for i, e := range order {
		inBatch := i < len(batch)
		if !inBatch && !e.touched {
			continue
		}
		if e.deleted {
			materialized = append(materialized, wire.ChangeMsg{User: e.user, Kind: wire.KindDelete, Delete: e.id, Source: e.source})
			continue
		}
		data, err := objdefs.Encode(e.obj)
		if err != nil {
			return nil, fmt.Errorf("submitpipe: encode %s: %w", e.id, err)
		}
		materialized = append(materialized, wire.ChangeMsg{
			User: e.user,
			Kind: e.kind,
			Object: &wire.Object{
				ID:           e.id,
				Dependencies: e.obj.References(),
				ObjData:      data,
			},
			Source: e.source,
		})
	}

	// Step 8: append.
	offsets, err := s.log.Append(ctx, file, materialized)
	if err != nil {
		return nil, fmt.Errorf("submitpipe: append: %w", err)
	}
	return offsets, nil
}
