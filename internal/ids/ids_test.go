package ids_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weaveform/weave/internal/ids"
)

func TestRoundTripParse(t *testing.T) {
	obj := ids.NewObjId()
	parsed, err := ids.ParseObjId(obj.String())
	require.NoError(t, err)
	require.Equal(t, obj, parsed)
}

func TestRefIdString(t *testing.T) {
	r := ids.RefId{Obj: ids.NewObjId(), Kind: ids.RefProfilePoint, Index: 2}
	require.Contains(t, r.String(), "/ProfilePoint/2")
}

func TestRefTypeStringUnknownDefaultsToEmpty(t *testing.T) {
	var k ids.RefType = 99
	require.Equal(t, "Empty", k.String())
}
