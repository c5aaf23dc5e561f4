package manager

import (
	"github.com/mossvale/graphkv/codec"
	"github.com/mossvale/graphkv/kv"
	"github.com/mossvale/graphkv/model"
)

// EdgeManager owns the primary edge tree plus the two range managers and the
// edge-property manager it must keep consistent with every write.
type EdgeManager struct {
	tree           *kv.Tree
	forwardRanges  *EdgeRangeManager
	reversedRanges *EdgeRangeManager
	properties     *PropertyManager
}

// NewEdgeManager wires the primary edge tree to its two range managers and
// its property manager.
func NewEdgeManager(tree *kv.Tree, forwardRanges, reversedRanges *EdgeRangeManager, properties *PropertyManager) *EdgeManager {
	return &EdgeManager{
		tree:           tree,
		forwardRanges:  forwardRanges,
		reversedRanges: reversedRanges,
		properties:     properties,
	}
}

// Key returns the primary tree key for e; also used as the owner-key prefix
// for e's properties.
func Key(e model.Edge) []byte {
	return codec.Build(codec.Uuid(e.Outbound), codec.Ident(e.Label), codec.Uuid(e.Inbound))
}

// Exists reports whether e is present.
func (m *EdgeManager) Exists(e model.Edge) (bool, error) {
	return m.tree.Exists(Key(e))
}

// Count returns the number of edges.
func (m *EdgeManager) Count() (uint64, error) {
	return m.tree.Count()
}

// Set inserts or overwrites e, keeping both range trees in sync.
func (m *EdgeManager) Set(e model.Edge) error {
	if err := m.tree.Set(Key(e), nil); err != nil {
		return err
	}
	if err := m.forwardRanges.Set(e); err != nil {
		return err
	}
	return m.reversedRanges.Set(e)
}

// Delete removes e, both of its range entries, and every property it owns.
func (m *EdgeManager) Delete(e model.Edge) error {
	if err := m.tree.Delete(Key(e)); err != nil {
		return err
	}
	if err := m.forwardRanges.Delete(e); err != nil {
		return err
	}
	if err := m.reversedRanges.Delete(e); err != nil {
		return err
	}
	return m.properties.DeleteAllForOwner(Key(e))
}

// All visits every edge in the primary tree, in key order.
func (m *EdgeManager) All(fn func(model.Edge) (bool, error)) error {
	return m.tree.ScanPrefix(nil, false, func(item kv.Item) (bool, error) {
		r := codec.NewReader(item.Key)
		out, err := r.ReadUUID()
		if err != nil {
			return false, err
		}
		label, err := r.ReadIdent()
		if err != nil {
			return false, err
		}
		in, err := r.ReadUUID()
		if err != nil {
			return false, err
		}
		return fn(model.Edge{Outbound: out, Label: label, Inbound: in})
	})
}

// Properties exposes the edge property manager for the transaction layer.
func (m *EdgeManager) Properties() *PropertyManager { return m.properties }
