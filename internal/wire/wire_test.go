package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	msg := wire.ChangeMsg{
		User: ids.NewUserId(),
		Kind: wire.KindAdd,
		Object: &wire.Object{
			ID:      ids.NewObjId(),
			ObjData: []byte("hello"),
		},
		Source: wire.UserAction(),
	}

	env, err := wire.Wrap(msg)
	require.NoError(t, err)
	require.Equal(t, wire.EnvelopeVersion, env.Version)

	var out wire.ChangeMsg
	require.NoError(t, env.Unwrap(&out))
	require.Equal(t, msg.Object.ID, out.Object.ID)
	require.Equal(t, wire.KindAdd, out.Kind)
}

func TestEnvelopeRejectsNewerVersion(t *testing.T) {
	env := wire.Envelope{Version: wire.EnvelopeVersion + 1}
	var out wire.ChangeMsg
	require.Error(t, env.Unwrap(&out))
}

func TestObjectCloneIsDeep(t *testing.T) {
	orig := &wire.Object{
		ID:           ids.NewObjId(),
		Dependencies: []*ids.Reference{{Owner: ids.RefId{Index: 1}}},
		ObjData:      []byte{1, 2, 3},
	}
	clone := orig.Clone()
	clone.ObjData[0] = 9
	clone.Dependencies[0].Owner.Index = 42

	require.Equal(t, byte(1), orig.ObjData[0])
	require.Equal(t, uint64(1), orig.Dependencies[0].Owner.Index)
}

func TestChangeMsgObjId(t *testing.T) {
	delID := ids.NewObjId()
	del := wire.ChangeMsg{Kind: wire.KindDelete, Delete: delID}
	require.Equal(t, delID, del.ObjId())

	addID := ids.NewObjId()
	add := wire.ChangeMsg{Kind: wire.KindAdd, Object: &wire.Object{ID: addID}}
	require.Equal(t, addID, add.ObjId())
}
