package manager

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/mossvale/graphkv/codec"
	"github.com/mossvale/graphkv/kv"
	"github.com/mossvale/graphkv/model"
)

// VertexManager owns the primary vertex tree. Deleting a vertex cascades
// into its properties and every edge incident on it, in either direction.
type VertexManager struct {
	tree           *kv.Tree
	properties     *PropertyManager
	forwardRanges  *EdgeRangeManager
	reversedRanges *EdgeRangeManager
	edges          *EdgeManager
}

// NewVertexManager wires the primary vertex tree to the managers its delete
// cascade needs.
func NewVertexManager(tree *kv.Tree, properties *PropertyManager, forwardRanges, reversedRanges *EdgeRangeManager, edges *EdgeManager) *VertexManager {
	return &VertexManager{
		tree:           tree,
		properties:     properties,
		forwardRanges:  forwardRanges,
		reversedRanges: reversedRanges,
		edges:          edges,
	}
}

func vertexKey(id uuid.UUID) []byte {
	return codec.Build(codec.Uuid(id))
}

// VertexOwnerKey returns the owner-key prefix used by a vertex's properties;
// exported so the transaction layer can address VertexPropertyManager
// without reaching into this package's internals.
func VertexOwnerKey(id uuid.UUID) []byte {
	return vertexKey(id)
}

// Exists reports whether id is present.
func (m *VertexManager) Exists(id uuid.UUID) (bool, error) {
	return m.tree.Exists(vertexKey(id))
}

// Get reads the vertex by id. ok is false when absent.
func (m *VertexManager) Get(id uuid.UUID) (v model.Vertex, ok bool, err error) {
	raw, err := m.tree.Get(vertexKey(id))
	if err == kv.ErrKeyNotFound {
		return model.Vertex{}, false, nil
	}
	if err != nil {
		return model.Vertex{}, false, err
	}
	return model.Vertex{ID: id, Label: model.Identifier(raw)}, true, nil
}

// Count returns the number of vertices.
func (m *VertexManager) Count() (uint64, error) {
	return m.tree.Count()
}

// Create inserts v if its id is not already taken. inserted is false when
// the id already exists; the existing vertex is left untouched.
func (m *VertexManager) Create(v model.Vertex) (inserted bool, err error) {
	key := vertexKey(v.ID)
	exists, err := m.tree.Exists(key)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := m.tree.Set(key, []byte(v.Label)); err != nil {
		return false, err
	}
	return true, nil
}

// All visits every vertex in id order, starting from the beginning of the
// tree.
func (m *VertexManager) All(fn func(model.Vertex) (bool, error)) error {
	return m.Range(uuid.Nil, fn)
}

// Range visits every vertex from lowerBound (inclusive) onward, in id order,
// with no upper bound.
func (m *VertexManager) Range(lowerBound uuid.UUID, fn func(model.Vertex) (bool, error)) error {
	return m.tree.ScanRange(vertexKey(lowerBound), true, func(item kv.Item) (bool, error) {
		r := codec.NewReader(item.Key)
		id, err := r.ReadUUID()
		if err != nil {
			return false, err
		}
		return fn(model.Vertex{ID: id, Label: model.Identifier(item.Value)})
	})
}

// Delete removes the vertex, every property it owns, and every edge
// incident on it in either direction. A failure partway through an edge
// cascade is logged (so a crash-consistency gap leaves a trace) before
// being returned to the caller.
func (m *VertexManager) Delete(id uuid.UUID) error {
	if err := m.tree.Delete(vertexKey(id)); err != nil {
		return err
	}
	if err := m.properties.DeleteAllForOwner(vertexKey(id)); err != nil {
		return fmt.Errorf("manager: deleting vertex properties for %s: %w", id, err)
	}

	var incident []model.Edge
	collect := func(e model.Edge) (bool, error) {
		incident = append(incident, e)
		return true, nil
	}
	if err := m.forwardRanges.IterateForOwner(id, collect); err != nil {
		return fmt.Errorf("manager: scanning outbound edges for %s: %w", id, err)
	}
	if err := m.reversedRanges.IterateForOwner(id, collect); err != nil {
		return fmt.Errorf("manager: scanning inbound edges for %s: %w", id, err)
	}

	for _, e := range incident {
		if err := m.edges.Delete(e); err != nil {
			log.Printf("manager: failed to cascade-delete edge %+v while deleting vertex %s: %v", e, id, err)
			return fmt.Errorf("manager: cascading delete of edge incident on %s: %w", id, err)
		}
	}
	return nil
}
