// Package model defines the data types shared across the codec, kv, manager,
// and public API layers. It has no dependency on any of them, which keeps
// the import graph acyclic.
package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Identifier is a short UTF-8 name: a vertex label, an edge label, or a
// property name. It is length-prefixed by a single byte when encoded, so it
// must stay under 256 bytes.
type Identifier string

// MaxIdentifierLength is the largest Identifier the binary key schema can
// represent: its length prefix is a single byte.
const MaxIdentifierLength = 255

// Vertex is a single node: a 128-bit identity and one label.
type Vertex struct {
	ID    uuid.UUID
	Label Identifier
}

// NewVertex returns a Vertex with a freshly generated random identity.
func NewVertex(label Identifier) Vertex {
	return Vertex{ID: uuid.New(), Label: label}
}

// Edge is a directed, labeled relationship between two vertices. Edges carry
// no identity of their own; they are addressed by (Outbound, Label, Inbound).
type Edge struct {
	Outbound uuid.UUID
	Label    Identifier
	Inbound  uuid.UUID
}

// Value is a JSON-encoded property value. Its canonical byte form is
// produced by encoding/json, which sorts object keys, giving two equal
// values identical bytes regardless of construction order.
type Value struct {
	raw json.RawMessage
}

// NewValue canonicalizes v into its JSON byte form.
func NewValue(v interface{}) (Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Value{}, err
	}
	return Value{raw: b}, nil
}

// ValueFromBytes wraps already-canonical JSON bytes without re-marshaling.
// Callers that read a Value back out of storage use this.
func ValueFromBytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{raw: cp}
}

// Bytes returns the canonical JSON encoding.
func (v Value) Bytes() []byte { return v.raw }

// Unmarshal decodes the value into dst.
func (v Value) Unmarshal(dst interface{}) error {
	return json.Unmarshal(v.raw, dst)
}

// Equal reports whether two values have identical canonical byte forms.
func (v Value) Equal(other Value) bool {
	if len(v.raw) != len(other.raw) {
		return false
	}
	for i := range v.raw {
		if v.raw[i] != other.raw[i] {
			return false
		}
	}
	return true
}

// VertexProperty is a single named JSON value owned by a vertex.
type VertexProperty struct {
	VertexID uuid.UUID
	Name     Identifier
	Value    Value
}

// EdgeProperty is a single named JSON value owned by an edge.
type EdgeProperty struct {
	Edge  Edge
	Name  Identifier
	Value Value
}

// BulkInsertItem is a single unit of a bulk_insert request: exactly one of
// Vertex, Edge, VertexProperty, or EdgeProperty is set.
type BulkInsertItem struct {
	Vertex         *Vertex
	Edge           *Edge
	VertexProperty *VertexProperty
	EdgeProperty   *EdgeProperty
}
