package changelog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/weaveform/weave/internal/changelog"
	"github.com/weaveform/weave/internal/changelog/memory"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

func newService() *changelog.Service {
	return changelog.NewService(memory.NewStore(), memory.NewBus())
}

func TestAppendAssignsContiguousOffsets(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	file := ids.NewFileId()

	batch := []wire.ChangeMsg{
		{Kind: wire.KindAdd, Object: &wire.Object{ID: ids.NewObjId()}, Source: wire.UserAction()},
		{Kind: wire.KindAdd, Object: &wire.Object{ID: ids.NewObjId()}, Source: wire.UserAction()},
		{Kind: wire.KindAdd, Object: &wire.Object{ID: ids.NewObjId()}, Source: wire.UserAction()},
	}

	offsets, err := svc.Append(ctx, file, batch)
	require.NoError(t, err)
	require.Equal(t, []ids.Offset{1, 2, 3}, offsets)

	latest, err := svc.LatestOffset(ctx, file)
	require.NoError(t, err)
	require.Equal(t, ids.Offset(3), latest)
}

func TestAppendEmptyBatchRejected(t *testing.T) {
	svc := newService()
	_, err := svc.Append(context.Background(), ids.NewFileId(), nil)
	require.ErrorIs(t, err, changelog.ErrEmptyBatch)
}

func TestOffsetsIndependentPerFile(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	a, b := ids.NewFileId(), ids.NewFileId()

	_, err := svc.Append(ctx, a, []wire.ChangeMsg{{Kind: wire.KindAdd, Object: &wire.Object{ID: ids.NewObjId()}}})
	require.NoError(t, err)

	offsets, err := svc.Append(ctx, b, []wire.ChangeMsg{{Kind: wire.KindAdd, Object: &wire.Object{ID: ids.NewObjId()}}})
	require.NoError(t, err)
	require.Equal(t, ids.Offset(1), offsets[0], "each file has its own offset sequence")
}

func TestSinceReplaysInOrder(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	file := ids.NewFileId()

	ids1, ids2 := ids.NewObjId(), ids.NewObjId()
	_, err := svc.Append(ctx, file, []wire.ChangeMsg{
		{Kind: wire.KindAdd, Object: &wire.Object{ID: ids1}},
		{Kind: wire.KindAdd, Object: &wire.Object{ID: ids2}},
	})
	require.NoError(t, err)

	entries, err := svc.Since(ctx, file, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, ids1, entries[0].Change.Object.ID)
	require.Equal(t, ids2, entries[1].Change.Object.ID)

	tail, err := svc.Since(ctx, file, 1, 0)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, ids2, tail[0].Change.Object.ID)
}

func TestSubscribeDeliversBacklogThenLive(t *testing.T) {
	svc := newService()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	file := ids.NewFileId()

	first := ids.NewObjId()
	_, err := svc.Append(ctx, file, []wire.ChangeMsg{{Kind: wire.KindAdd, Object: &wire.Object{ID: first}}})
	require.NoError(t, err)

	ch, err := svc.Subscribe(ctx, file, 0)
	require.NoError(t, err)

	backlogEntry := <-ch
	require.Equal(t, ids.Offset(1), backlogEntry.Offset)
	require.Equal(t, first, backlogEntry.Change.Object.ID)

	second := ids.NewObjId()
	_, err = svc.Append(ctx, file, []wire.ChangeMsg{{Kind: wire.KindAdd, Object: &wire.Object{ID: second}}})
	require.NoError(t, err)

	liveEntry := <-ch
	require.Equal(t, ids.Offset(2), liveEntry.Offset)
	require.Equal(t, second, liveEntry.Change.Object.ID)
}
