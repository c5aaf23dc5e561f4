// Package manager implements the per-tree managers that sit between the raw
// byte-oriented kv package and the public Transaction surface: one manager
// per physical tree, each responsible for that tree's key schema and the
// cascades spec.md assigns it.
package manager

import (
	"github.com/google/uuid"

	"github.com/mossvale/graphkv/codec"
	"github.com/mossvale/graphkv/kv"
	"github.com/mossvale/graphkv/model"
)

// EdgeRangeManager owns one of the two range trees (forward or reversed).
// Both share the same Uuid·Ident·Uuid key schema; Reversed only changes how
// the stored key components map back onto an Edge's Outbound/Inbound fields.
type EdgeRangeManager struct {
	tree     *kv.Tree
	reversed bool
}

// NewEdgeRangeManager wraps tree as a forward (outbound-first) range index
// when reversed is false, or an inbound-first range index when true.
func NewEdgeRangeManager(tree *kv.Tree, reversed bool) *EdgeRangeManager {
	return &EdgeRangeManager{tree: tree, reversed: reversed}
}

func (m *EdgeRangeManager) first(e model.Edge) uuid.UUID {
	if m.reversed {
		return e.Inbound
	}
	return e.Outbound
}

func (m *EdgeRangeManager) second(e model.Edge) uuid.UUID {
	if m.reversed {
		return e.Outbound
	}
	return e.Inbound
}

func (m *EdgeRangeManager) key(e model.Edge) []byte {
	return codec.Build(codec.Uuid(m.first(e)), codec.Ident(e.Label), codec.Uuid(m.second(e)))
}

func (m *EdgeRangeManager) edgeFrom(first uuid.UUID, label model.Identifier, second uuid.UUID) model.Edge {
	if m.reversed {
		return model.Edge{Outbound: second, Label: label, Inbound: first}
	}
	return model.Edge{Outbound: first, Label: label, Inbound: second}
}

// ForwardRangeKey returns the forward (outbound-first) range-tree key for e,
// exported for bulk_insert's direct per-tree batch construction.
func ForwardRangeKey(e model.Edge) []byte {
	return codec.Build(codec.Uuid(e.Outbound), codec.Ident(e.Label), codec.Uuid(e.Inbound))
}

// ReversedRangeKey returns the reversed (inbound-first) range-tree key for e.
func ReversedRangeKey(e model.Edge) []byte {
	return codec.Build(codec.Uuid(e.Inbound), codec.Ident(e.Label), codec.Uuid(e.Outbound))
}

// Contains reports whether e has an entry in this range tree.
func (m *EdgeRangeManager) Contains(e model.Edge) (bool, error) {
	return m.tree.Exists(m.key(e))
}

// Set records e in this range tree.
func (m *EdgeRangeManager) Set(e model.Edge) error {
	return m.tree.Set(m.key(e), nil)
}

// Delete removes e's entry from this range tree.
func (m *EdgeRangeManager) Delete(e model.Edge) error {
	return m.tree.Delete(m.key(e))
}

// IterateForOwner visits every edge whose "first" component (outbound for a
// forward tree, inbound for a reversed one) is id, in key order, until fn
// returns false or an error.
func (m *EdgeRangeManager) IterateForOwner(id uuid.UUID, fn func(model.Edge) (bool, error)) error {
	return m.IterateForRange(id, nil, fn)
}

// IterateForRange visits every edge whose "first" component is id,
// optionally filtered to a single label, in key order. This is a prefix
// scan scoped to one owner, used by the vertex delete cascade and by
// owner-scoped convenience lookups.
func (m *EdgeRangeManager) IterateForRange(id uuid.UUID, label *model.Identifier, fn func(model.Edge) (bool, error)) error {
	var prefix []byte
	if label != nil {
		prefix = codec.Build(codec.Uuid(id), codec.Ident(*label))
	} else {
		prefix = codec.Build(codec.Uuid(id))
	}

	return m.tree.ScanPrefix(prefix, false, func(item kv.Item) (bool, error) {
		return m.decodeAndVisit(item.Key, fn)
	})
}

// IterateFromOffset performs an unscoped tail scan of the entire tree
// starting at the encoded key of offset (inclusive), with no owner
// restriction — this is the "range_edges(offset)"/"range_reversed_edges
// (offset)" semantics from the transaction surface: a single ascending
// sweep of the whole tree from an arbitrary starting edge.
func (m *EdgeRangeManager) IterateFromOffset(offset model.Edge, fn func(model.Edge) (bool, error)) error {
	return m.tree.ScanRange(m.key(offset), false, func(item kv.Item) (bool, error) {
		return m.decodeAndVisit(item.Key, fn)
	})
}

func (m *EdgeRangeManager) decodeAndVisit(key []byte, fn func(model.Edge) (bool, error)) (bool, error) {
	r := codec.NewReader(key)
	first, err := r.ReadUUID()
	if err != nil {
		return false, err
	}
	lbl, err := r.ReadIdent()
	if err != nil {
		return false, err
	}
	second, err := r.ReadUUID()
	if err != nil {
		return false, err
	}
	return fn(m.edgeFrom(first, lbl, second))
}
