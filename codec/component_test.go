package codec

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mossvale/graphkv/model"
)

func TestRoundTripUuidIdentJson(t *testing.T) {
	id := uuid.New()
	val, err := model.NewValue(map[string]interface{}{"b": 1, "a": 2})
	require.NoError(t, err)

	key := Build(Uuid(id), Ident(model.Identifier("owns")), Json(val))

	r := NewReader(key)
	gotID, err := r.ReadUUID()
	require.NoError(t, err)
	require.Equal(t, id, gotID)

	gotIdent, err := r.ReadIdent()
	require.NoError(t, err)
	require.Equal(t, model.Identifier("owns"), gotIdent)

	gotVal, err := r.ReadJSON()
	require.NoError(t, err)
	require.True(t, val.Equal(gotVal))
	require.Equal(t, 0, r.Remaining())
}

func TestJsonComponentFollowedByUuid(t *testing.T) {
	// A Json component with no explicit length prefix must still let a
	// trailing fixed-width component be read correctly: the JSON decoder's
	// own grammar, not a length byte, determines where it ends.
	val, err := model.NewValue("hello")
	require.NoError(t, err)
	owner := uuid.New()

	key := Build(Ident(model.Identifier("name")), Json(val), Uuid(owner))

	r := NewReader(key)
	_, err = r.ReadIdent()
	require.NoError(t, err)

	gotVal, err := r.ReadJSON()
	require.NoError(t, err)
	require.True(t, val.Equal(gotVal))

	gotOwner, err := r.ReadUUID()
	require.NoError(t, err)
	require.Equal(t, owner, gotOwner)
}

func TestCanonicalJSONIsKeyOrderIndependent(t *testing.T) {
	v1, err := model.NewValue(map[string]interface{}{"x": 1, "y": 2})
	require.NoError(t, err)
	v2, err := model.NewValue(map[string]interface{}{"y": 2, "x": 1})
	require.NoError(t, err)
	require.True(t, v1.Equal(v2))
	require.Equal(t, v1.Bytes(), v2.Bytes())
}

func TestU64RoundTrip(t *testing.T) {
	key := Build(U64(42))
	r := NewReader(key)
	got, err := r.ReadU64()
	require.NoError(t, err)
	require.Equal(t, uint64(42), got)
}

func TestShortBuffer(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, err := r.ReadUUID()
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestIdentifierPrefixScan(t *testing.T) {
	// Two keys sharing the same leading components must share a byte prefix,
	// since prefix scans over a tree rely on this.
	id := uuid.New()
	k1 := Build(Uuid(id), Ident(model.Identifier("likes")))
	k2 := Build(Uuid(id))
	require.True(t, len(k1) > len(k2))
	for i := range k2 {
		require.Equal(t, k2[i], k1[i])
	}
}
