package graphkv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// TestRangeReversedEdgesFromOffset exercises the literal S1 scenario: a
// tail scan of the reversed range tree starting at a known edge's own
// reversed key yields that edge.
func TestRangeReversedEdgesFromOffset(t *testing.T) {
	store := openTestStore(t)
	tx := store.NewTransaction()

	v1, v2 := NewVertex("person"), NewVertex("person")
	_, err := tx.CreateVertex(v1)
	require.NoError(t, err)
	_, err = tx.CreateVertex(v2)
	require.NoError(t, err)

	e := Edge{Outbound: v1.ID, Label: "knows", Inbound: v2.ID}
	created, err := tx.CreateEdge(e)
	require.NoError(t, err)
	require.True(t, created)

	var got []Edge
	require.NoError(t, tx.RangeReversedEdges(e, func(edge Edge) (bool, error) {
		got = append(got, edge)
		return true, nil
	}))
	require.Equal(t, []Edge{e}, got)
}

func TestCreateVertexIsIdempotentOnID(t *testing.T) {
	store := openTestStore(t)
	tx := store.NewTransaction()

	v := NewVertex("person")
	inserted, err := tx.CreateVertex(v)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = tx.CreateVertex(v)
	require.NoError(t, err)
	require.False(t, inserted)

	count, err := tx.VertexCount()
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)
}

func TestCreateEdgeRequiresBothEndpoints(t *testing.T) {
	store := openTestStore(t)
	tx := store.NewTransaction()

	a := NewVertex("a")
	_, err := tx.CreateVertex(a)
	require.NoError(t, err)

	missing := NewUUID()
	created, err := tx.CreateEdge(Edge{Outbound: a.ID, Label: "knows", Inbound: missing})
	require.NoError(t, err)
	require.False(t, created, "a missing endpoint is a validation outcome, not an error")

	b := NewVertex("b")
	_, err = tx.CreateVertex(b)
	require.NoError(t, err)
	created, err = tx.CreateEdge(Edge{Outbound: a.ID, Label: "knows", Inbound: b.ID})
	require.NoError(t, err)
	require.True(t, created)

	edges, err := tx.SpecificEdges([]Edge{{Outbound: a.ID, Label: "knows", Inbound: b.ID}})
	require.NoError(t, err)
	require.Len(t, edges, 1)
}

// TestDeleteVertexCascades exercises the storage-engine's central invariant:
// deleting a vertex removes every edge incident on it in either direction
// and every property it owns, leaving no dangling references.
func TestDeleteVertexCascades(t *testing.T) {
	store := openTestStore(t)
	tx := store.NewTransaction()

	a, b, c := NewVertex("a"), NewVertex("b"), NewVertex("c")
	for _, v := range []Vertex{a, b, c} {
		_, err := tx.CreateVertex(v)
		require.NoError(t, err)
	}

	outEdge := Edge{Outbound: a.ID, Label: "knows", Inbound: b.ID}
	inEdge := Edge{Outbound: c.ID, Label: "knows", Inbound: a.ID}
	_, err := tx.CreateEdge(outEdge)
	require.NoError(t, err)
	_, err = tx.CreateEdge(inEdge)
	require.NoError(t, err)

	val, err := NewValue("Alice")
	require.NoError(t, err)
	require.NoError(t, tx.SetVertexProperties([]UUID{a.ID}, "name", val))

	require.NoError(t, tx.DeleteVertices([]UUID{a.ID}))

	remaining, err := tx.SpecificEdges([]Edge{outEdge, inEdge})
	require.NoError(t, err)
	require.Empty(t, remaining)

	_, ok, err := tx.VertexProperty(a.ID, "name")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = tx.VertexProperty(b.ID, "name")
	require.NoError(t, err)
	require.False(t, ok)
}

// TestDeleteEdgeCascadesProperties exercises edge deletion's cleanup of
// both range-tree entries and every owned property.
func TestDeleteEdgeCascadesProperties(t *testing.T) {
	store := openTestStore(t)
	tx := store.NewTransaction()

	a, b := NewVertex("a"), NewVertex("b")
	_, err := tx.CreateVertex(a)
	require.NoError(t, err)
	_, err = tx.CreateVertex(b)
	require.NoError(t, err)

	e := Edge{Outbound: a.ID, Label: "knows", Inbound: b.ID}
	_, err = tx.CreateEdge(e)
	require.NoError(t, err)

	weight, err := NewValue(7)
	require.NoError(t, err)
	require.NoError(t, tx.SetEdgeProperties([]Edge{e}, "weight", weight))

	require.NoError(t, tx.DeleteEdges([]Edge{e}))

	var forwardSeen, reversedSeen int
	require.NoError(t, tx.EdgesFrom(a.ID, nil, func(Edge) (bool, error) { forwardSeen++; return true, nil }))
	require.NoError(t, tx.EdgesInto(b.ID, nil, func(Edge) (bool, error) { reversedSeen++; return true, nil }))
	require.Equal(t, 0, forwardSeen)
	require.Equal(t, 0, reversedSeen)

	_, ok, err := tx.EdgeProperty(e, "weight")
	require.NoError(t, err)
	require.False(t, ok)
}

// TestAllVertexPropertiesOrderedByName exercises the encoded-name ordering
// AllVertexProperties/AllEdgeProperties must preserve: the length byte comes
// first, so "mu" (2) sorts before "zeta" (4) before "alpha" (5).
func TestAllVertexPropertiesOrderedByName(t *testing.T) {
	store := openTestStore(t)
	tx := store.NewTransaction()

	a := NewVertex("person")
	_, err := tx.CreateVertex(a)
	require.NoError(t, err)

	one, err := NewValue(1)
	require.NoError(t, err)
	require.NoError(t, tx.SetVertexProperties([]UUID{a.ID}, "zeta", one))
	require.NoError(t, tx.SetVertexProperties([]UUID{a.ID}, "alpha", one))
	require.NoError(t, tx.SetVertexProperties([]UUID{a.ID}, "mu", one))

	names, values, err := tx.AllVertexProperties(a.ID)
	require.NoError(t, err)
	require.Equal(t, []Identifier{"mu", "zeta", "alpha"}, names)
	require.Len(t, values, 3)
}

// TestPropertyValueIndexLifecycle exercises index_property gating: lookups
// by value only see entries once a property name has been indexed, and an
// overwritten value leaves no stale index entry behind.
func TestPropertyValueIndexLifecycle(t *testing.T) {
	store := openTestStore(t)
	tx := store.NewTransaction()

	a := NewVertex("person")
	_, err := tx.CreateVertex(a)
	require.NoError(t, err)

	young, err := NewValue(20)
	require.NoError(t, err)
	require.NoError(t, tx.SetVertexProperties([]UUID{a.ID}, "age", young))

	ids, indexed, err := tx.VertexIDsWithPropertyValue("age", young)
	require.NoError(t, err)
	require.False(t, indexed, "an unindexed name must report not-indexed, distinct from empty results")
	require.Empty(t, ids)

	require.NoError(t, tx.IndexProperty("age"))
	require.NoError(t, tx.SetVertexProperties([]UUID{a.ID}, "age", young))

	ids, indexed, err = tx.VertexIDsWithPropertyValue("age", young)
	require.NoError(t, err)
	require.True(t, indexed)
	require.Equal(t, []UUID{a.ID}, ids)

	older, err := NewValue(31)
	require.NoError(t, err)
	ids, indexed, err = tx.VertexIDsWithPropertyValue("age", older)
	require.NoError(t, err)
	require.True(t, indexed, "an indexed name with zero matches is still reported as indexed")
	require.Empty(t, ids)

	old, err := NewValue(21)
	require.NoError(t, err)
	require.NoError(t, tx.SetVertexProperties([]UUID{a.ID}, "age", old))

	ids, indexed, err = tx.VertexIDsWithPropertyValue("age", young)
	require.NoError(t, err)
	require.True(t, indexed)
	require.Empty(t, ids, "the stale index entry for the old value must be gone")

	ids, indexed, err = tx.VertexIDsWithPropertyValue("age", old)
	require.NoError(t, err)
	require.True(t, indexed)
	require.Equal(t, []UUID{a.ID}, ids)
}

func TestBulkInsertWiresAllTrees(t *testing.T) {
	store := openTestStore(t)
	tx := store.NewTransaction()

	a, b := NewVertex("a"), NewVertex("b")
	e := Edge{Outbound: a.ID, Label: "knows", Inbound: b.ID}
	val, err := NewValue("hi")
	require.NoError(t, err)

	items := []BulkInsertItem{
		{Vertex: &a},
		{Vertex: &b},
		{Edge: &e},
		{VertexProperty: &VertexProperty{VertexID: a.ID, Name: "greeting", Value: val}},
	}
	require.NoError(t, tx.BulkInsert(items))

	count, err := tx.VertexCount()
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)

	edges, err := tx.SpecificEdges([]Edge{e})
	require.NoError(t, err)
	require.Len(t, edges, 1)

	got, ok, err := tx.VertexProperty(a.ID, "greeting")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, val.Equal(got))
}

func TestIdentifierTooLongRejected(t *testing.T) {
	store := openTestStore(t)
	tx := store.NewTransaction()

	long := make([]byte, MaxIdentifierLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := tx.CreateVertex(Vertex{ID: NewUUID(), Label: Identifier(long)})
	require.ErrorIs(t, err, ErrIdentifierTooLong)
}
