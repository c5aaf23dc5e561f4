package graphkv

import (
	"fmt"

	"github.com/mossvale/graphkv/codec"
	"github.com/mossvale/graphkv/internal/manager"
	"github.com/mossvale/graphkv/kv"
)

// Transaction is the operation surface over a Store. It carries no state of
// its own beyond a reference to the store; every method below commits
// independently at the tree level rather than as one cross-tree unit — see
// Store.NewTransaction.
type Transaction struct {
	store *Store
}

func checkIdentifier(id Identifier) error {
	if len(id) > MaxIdentifierLength {
		return ErrIdentifierTooLong
	}
	return nil
}

// VertexCount returns the number of vertices in the store.
func (t *Transaction) VertexCount() (uint64, error) {
	return t.store.vertices.Count()
}

// AllVertices visits every vertex in id order.
func (t *Transaction) AllVertices(fn func(Vertex) (bool, error)) error {
	return t.store.vertices.All(fn)
}

// RangeVertices visits every vertex from lowerBound (inclusive) to the end
// of the keyspace, in id order.
func (t *Transaction) RangeVertices(lowerBound UUID, fn func(Vertex) (bool, error)) error {
	return t.store.vertices.Range(lowerBound, fn)
}

// SpecificVertices returns the vertices among ids that exist, in the order
// given.
func (t *Transaction) SpecificVertices(ids []UUID) ([]Vertex, error) {
	var out []Vertex
	for _, id := range ids {
		v, ok, err := t.store.vertices.Get(id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// CreateVertex inserts v. inserted is false when v.ID already exists.
func (t *Transaction) CreateVertex(v Vertex) (inserted bool, err error) {
	if err := checkIdentifier(v.Label); err != nil {
		return false, err
	}
	return t.store.vertices.Create(v)
}

// DeleteVertices removes each vertex in ids, cascading to its properties and
// incident edges.
func (t *Transaction) DeleteVertices(ids []UUID) error {
	for _, id := range ids {
		if err := t.store.vertices.Delete(id); err != nil {
			return fmt.Errorf("graphkv: deleting vertex %s: %w", id, err)
		}
	}
	return nil
}

// VertexIDsWithProperty returns the id of every vertex that has a value
// indexed for property name. indexed is false when name has no maintained
// index at all — distinct from ids being empty, which means the index
// exists but currently has no matches.
func (t *Transaction) VertexIDsWithProperty(name Identifier) (ids []UUID, indexed bool, err error) {
	if !t.store.metadata.IsIndexed(name) {
		return nil, false, nil
	}
	err = t.store.vertexProperties.OwnersWithProperty(name, func(owner []byte, _ Value) (bool, error) {
		id, err := decodeVertexOwner(owner)
		if err != nil {
			return false, err
		}
		ids = append(ids, id)
		return true, nil
	})
	return ids, true, err
}

// VertexIDsWithPropertyValue returns the id of every vertex whose indexed
// property name equals value. indexed is false when name has no maintained
// index at all.
func (t *Transaction) VertexIDsWithPropertyValue(name Identifier, value Value) (ids []UUID, indexed bool, err error) {
	if !t.store.metadata.IsIndexed(name) {
		return nil, false, nil
	}
	err = t.store.vertexProperties.OwnersWithValue(name, value, func(owner []byte) (bool, error) {
		id, err := decodeVertexOwner(owner)
		if err != nil {
			return false, err
		}
		ids = append(ids, id)
		return true, nil
	})
	return ids, true, err
}

func decodeVertexOwner(owner []byte) (UUID, error) {
	r := codec.NewReader(owner)
	return r.ReadUUID()
}

func decodeEdgeOwner(owner []byte) (Edge, error) {
	r := codec.NewReader(owner)
	out, err := r.ReadUUID()
	if err != nil {
		return Edge{}, err
	}
	label, err := r.ReadIdent()
	if err != nil {
		return Edge{}, err
	}
	in, err := r.ReadUUID()
	if err != nil {
		return Edge{}, err
	}
	return Edge{Outbound: out, Label: label, Inbound: in}, nil
}

// EdgeCount returns the number of edges in the store.
func (t *Transaction) EdgeCount() (uint64, error) {
	return t.store.edges.Count()
}

// AllEdges visits every edge in primary-tree order.
func (t *Transaction) AllEdges(fn func(Edge) (bool, error)) error {
	return t.store.edges.All(fn)
}

// RangeEdges sweeps the entire forward range tree starting at offset
// (inclusive), with no owner restriction — a single ascending pass from an
// arbitrary starting edge, as opposed to EdgesFrom which scopes the scan to
// one vertex.
func (t *Transaction) RangeEdges(offset Edge, fn func(Edge) (bool, error)) error {
	return t.store.forwardRanges.IterateFromOffset(offset, fn)
}

// RangeReversedEdges sweeps the entire reversed range tree starting at
// offset (inclusive), with no owner restriction.
func (t *Transaction) RangeReversedEdges(offset Edge, fn func(Edge) (bool, error)) error {
	return t.store.reversedRanges.IterateFromOffset(offset, fn)
}

// EdgesFrom visits every edge outbound from id, optionally filtered to a
// single label — a prefix scan scoped to one vertex, used by callers that
// want "this vertex's outgoing edges" rather than a whole-tree sweep.
func (t *Transaction) EdgesFrom(id UUID, label *Identifier, fn func(Edge) (bool, error)) error {
	return t.store.forwardRanges.IterateForRange(id, label, fn)
}

// EdgesInto visits every edge inbound to id, optionally filtered to a
// single label.
func (t *Transaction) EdgesInto(id UUID, label *Identifier, fn func(Edge) (bool, error)) error {
	return t.store.reversedRanges.IterateForRange(id, label, fn)
}

// SpecificEdges returns the edges among candidates that exist.
func (t *Transaction) SpecificEdges(candidates []Edge) ([]Edge, error) {
	var out []Edge
	for _, e := range candidates {
		ok, err := t.store.edges.Exists(e)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// CreateEdge inserts e. created is false, with a nil error, when either
// endpoint vertex does not exist — a missing endpoint is a validation
// outcome, not an error, mirroring CreateVertex's inserted bool.
func (t *Transaction) CreateEdge(e Edge) (created bool, err error) {
	if err := checkIdentifier(e.Label); err != nil {
		return false, err
	}
	outExists, err := t.store.vertices.Exists(e.Outbound)
	if err != nil {
		return false, err
	}
	inExists, err := t.store.vertices.Exists(e.Inbound)
	if err != nil {
		return false, err
	}
	if !outExists || !inExists {
		return false, nil
	}
	if err := t.store.edges.Set(e); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteEdges removes each edge in edges, cascading to its properties and
// both of its range-tree entries.
func (t *Transaction) DeleteEdges(edges []Edge) error {
	for _, e := range edges {
		if err := t.store.edges.Delete(e); err != nil {
			return fmt.Errorf("graphkv: deleting edge %+v: %w", e, err)
		}
	}
	return nil
}

// EdgesWithProperty returns every edge that has a value indexed for
// property name. indexed is false when name has no maintained index at all.
func (t *Transaction) EdgesWithProperty(name Identifier) (edges []Edge, indexed bool, err error) {
	if !t.store.metadata.IsIndexed(name) {
		return nil, false, nil
	}
	err = t.store.edgeProperties.OwnersWithProperty(name, func(owner []byte, _ Value) (bool, error) {
		e, err := decodeEdgeOwner(owner)
		if err != nil {
			return false, err
		}
		edges = append(edges, e)
		return true, nil
	})
	return edges, true, err
}

// EdgesWithPropertyValue returns every edge whose indexed property name
// equals value. indexed is false when name has no maintained index at all.
func (t *Transaction) EdgesWithPropertyValue(name Identifier, value Value) (edges []Edge, indexed bool, err error) {
	if !t.store.metadata.IsIndexed(name) {
		return nil, false, nil
	}
	err = t.store.edgeProperties.OwnersWithValue(name, value, func(owner []byte) (bool, error) {
		e, err := decodeEdgeOwner(owner)
		if err != nil {
			return false, err
		}
		edges = append(edges, e)
		return true, nil
	})
	return edges, true, err
}

// VertexProperty reads a single named property of a vertex. ok is false
// when the property is absent.
func (t *Transaction) VertexProperty(id UUID, name Identifier) (value Value, ok bool, err error) {
	return t.store.vertexProperties.Get(manager.VertexOwnerKey(id), name)
}

// EdgeProperty reads a single named property of an edge.
func (t *Transaction) EdgeProperty(e Edge, name Identifier) (value Value, ok bool, err error) {
	return t.store.edgeProperties.Get(manager.Key(e), name)
}

// AllVertexProperties returns every property owned by vertex id, in the
// byte order of the encoded names: the length byte comes first, so shorter
// names sort before longer ones, and names of equal length sort by their
// bytes.
func (t *Transaction) AllVertexProperties(id UUID) (names []Identifier, values []Value, err error) {
	return t.store.vertexProperties.AllForOwner(manager.VertexOwnerKey(id))
}

// AllEdgeProperties returns every property owned by edge e, in the same
// encoded-name order as AllVertexProperties.
func (t *Transaction) AllEdgeProperties(e Edge) (names []Identifier, values []Value, err error) {
	return t.store.edgeProperties.AllForOwner(manager.Key(e))
}

// SetVertexProperties writes name/value on every vertex in ids. Whether the
// write is reflected in the value index depends on whether name is
// currently indexed via IndexProperty.
func (t *Transaction) SetVertexProperties(ids []UUID, name Identifier, value Value) error {
	if err := checkIdentifier(name); err != nil {
		return err
	}
	indexed := t.store.metadata.IsIndexed(name)
	for _, id := range ids {
		if err := t.store.vertexProperties.Set(manager.VertexOwnerKey(id), name, value, indexed); err != nil {
			return fmt.Errorf("graphkv: setting vertex property %q on %s: %w", name, id, err)
		}
	}
	return nil
}

// SetEdgeProperties writes name/value on every edge in edges.
func (t *Transaction) SetEdgeProperties(edges []Edge, name Identifier, value Value) error {
	if err := checkIdentifier(name); err != nil {
		return err
	}
	indexed := t.store.metadata.IsIndexed(name)
	for _, e := range edges {
		if err := t.store.edgeProperties.Set(manager.Key(e), name, value, indexed); err != nil {
			return fmt.Errorf("graphkv: setting edge property %q on %+v: %w", name, e, err)
		}
	}
	return nil
}

// DeleteVertexProperties removes each named property from vertex id.
func (t *Transaction) DeleteVertexProperties(id UUID, names []Identifier) error {
	for _, n := range names {
		if err := t.store.vertexProperties.Delete(manager.VertexOwnerKey(id), n); err != nil {
			return fmt.Errorf("graphkv: deleting vertex property %q on %s: %w", n, id, err)
		}
	}
	return nil
}

// DeleteEdgeProperties removes each named property from edge e.
func (t *Transaction) DeleteEdgeProperties(e Edge, names []Identifier) error {
	for _, n := range names {
		if err := t.store.edgeProperties.Delete(manager.Key(e), n); err != nil {
			return fmt.Errorf("graphkv: deleting edge property %q on %+v: %w", n, e, err)
		}
	}
	return nil
}

// IndexProperty marks name as indexed, persisting the decision so it
// survives a restart. It does not retroactively index values already
// written under name; only property writes made afterwards (Set*Properties
// and BulkInsert) populate the index.
func (t *Transaction) IndexProperty(name Identifier) error {
	if err := checkIdentifier(name); err != nil {
		return err
	}
	return t.store.metadata.AddIndex(name)
}

// Sync flushes the metadata registry and the underlying database to stable
// storage.
func (t *Transaction) Sync() error {
	return t.store.holder.Sync()
}

// BulkInsert applies a batch of vertices, edges, and properties. Each kind
// of item is applied as its own atomic per-tree batch, in this order:
// vertices, edges, forward edge ranges, reversed edge ranges. Properties are
// then applied one at a time (they are not restricted to a single tree the
// way vertex/edge primary writes are), and the whole operation finishes
// with a Sync. There is no cross-tree transactional guarantee across these
// steps — a crash partway through can leave, for example, vertices written
// without their edges. This mirrors the per-tree batch-then-sync protocol
// of the implementation this module generalizes.
func (t *Transaction) BulkInsert(items []BulkInsertItem) error {
	vertexBatch := t.store.holder.Tree(kv.PrefixVertex).NewBatch()
	edgeBatch := t.store.holder.Tree(kv.PrefixEdge).NewBatch()
	forwardBatch := t.store.holder.Tree(kv.PrefixEdgeRange).NewBatch()
	reversedBatch := t.store.holder.Tree(kv.PrefixReversedEdgeRange).NewBatch()

	var vertexProps []VertexProperty
	var edgeProps []EdgeProperty

	for _, item := range items {
		switch {
		case item.Vertex != nil:
			v := *item.Vertex
			vertexBatch.Set(codec.Build(codec.Uuid(v.ID)), []byte(v.Label))
		case item.Edge != nil:
			e := *item.Edge
			edgeBatch.Set(manager.Key(e), nil)
			forwardBatch.Set(manager.ForwardRangeKey(e), nil)
			reversedBatch.Set(manager.ReversedRangeKey(e), nil)
		case item.VertexProperty != nil:
			vertexProps = append(vertexProps, *item.VertexProperty)
		case item.EdgeProperty != nil:
			edgeProps = append(edgeProps, *item.EdgeProperty)
		}
	}

	if err := vertexBatch.Apply(); err != nil {
		return fmt.Errorf("graphkv: bulk-inserting vertices: %w", err)
	}
	if err := edgeBatch.Apply(); err != nil {
		return fmt.Errorf("graphkv: bulk-inserting edges: %w", err)
	}
	if err := forwardBatch.Apply(); err != nil {
		return fmt.Errorf("graphkv: bulk-inserting edge ranges: %w", err)
	}
	if err := reversedBatch.Apply(); err != nil {
		return fmt.Errorf("graphkv: bulk-inserting reversed edge ranges: %w", err)
	}

	for _, p := range vertexProps {
		indexed := t.store.metadata.IsIndexed(p.Name)
		if err := t.store.vertexProperties.Set(manager.VertexOwnerKey(p.VertexID), p.Name, p.Value, indexed); err != nil {
			return fmt.Errorf("graphkv: bulk-inserting vertex property %q: %w", p.Name, err)
		}
	}
	for _, p := range edgeProps {
		indexed := t.store.metadata.IsIndexed(p.Name)
		if err := t.store.edgeProperties.Set(manager.Key(p.Edge), p.Name, p.Value, indexed); err != nil {
			return fmt.Errorf("graphkv: bulk-inserting edge property %q: %w", p.Name, err)
		}
	}

	return t.Sync()
}
