package reprpipe_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/weaveform/weave/internal/changelog"
	changelogmem "github.com/weaveform/weave/internal/changelog/memory"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objdefs"
	"github.com/weaveform/weave/internal/reprpipe"
	"github.com/weaveform/weave/internal/reprpipe/memory"
	"github.com/weaveform/weave/internal/wire"
)

type stubKernel struct{}

func (stubKernel) MakePrism(ctx context.Context, first, second wire.Point3, width, height float64) (wire.MeshData, error) {
	return wire.MeshData{Positions: []float64{first.X, second.X}}, nil
}

func TestRunPublishesMeshForWallAdd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	file := ids.NewFileId()
	log := changelog.NewService(changelogmem.NewStore(), changelogmem.NewBus())
	pub := memory.NewPublisher()
	offsets := memory.NewOffsetStore()
	svc := reprpipe.NewService(log, pub, offsets, stubKernel{}, nil)

	updates := pub.Subscribe(file)

	go svc.Run(ctx, file, 0)
	time.Sleep(10 * time.Millisecond) // let Subscribe register before Append

	w := objdefs.NewWall(ids.NewObjId(), wire.Point3{X: 0}, wire.Point3{X: 5}, 1, 2)
	data, err := objdefs.Encode(w)
	require.NoError(t, err)

	_, err = log.Append(ctx, file, []wire.ChangeMsg{{
		Kind:   wire.KindAdd,
		Object: &wire.Object{ID: w.ID(), ObjData: data},
		Source: wire.UserAction(),
	}})
	require.NoError(t, err)

	select {
	case update := <-updates:
		require.Equal(t, w.ID(), update.ObjID)
		require.Equal(t, wire.OutputMesh, update.Output.Kind)
		require.NotNil(t, update.Output.Mesh)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for representation update")
	}
}

func TestRunPublishesDeleteSentinelForDelete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	file := ids.NewFileId()
	log := changelog.NewService(changelogmem.NewStore(), changelogmem.NewBus())
	pub := memory.NewPublisher()
	offsets := memory.NewOffsetStore()
	svc := reprpipe.NewService(log, pub, offsets, stubKernel{}, nil)

	updates := pub.Subscribe(file)
	go svc.Run(ctx, file, 0)
	time.Sleep(10 * time.Millisecond)

	obj := ids.NewObjId()
	_, err := log.Append(ctx, file, []wire.ChangeMsg{{
		Kind:   wire.KindDelete,
		Delete: obj,
		Source: wire.UserAction(),
	}})
	require.NoError(t, err)

	select {
	case update := <-updates:
		require.Equal(t, obj, update.ObjID)
		require.Equal(t, wire.OutputDelete, update.Output.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delete sentinel")
	}
}
