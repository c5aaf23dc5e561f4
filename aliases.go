package graphkv

import (
	"github.com/google/uuid"

	"github.com/mossvale/graphkv/model"
)

// These re-export the model package's data types at the root so callers
// never need to import github.com/mossvale/graphkv/model directly,
// mirroring the original crate's top-level re-export of its datastore
// types.
type (
	// Identifier is a vertex label, edge label, or property name.
	Identifier = model.Identifier

	// Vertex is a single node: a 128-bit identity and one label.
	Vertex = model.Vertex

	// Edge is a directed, labeled relationship between two vertices.
	Edge = model.Edge

	// Value is a canonical JSON-encoded property value.
	Value = model.Value

	// VertexProperty is a single named value owned by a vertex.
	VertexProperty = model.VertexProperty

	// EdgeProperty is a single named value owned by an edge.
	EdgeProperty = model.EdgeProperty

	// BulkInsertItem is a single unit of a BulkInsert request.
	BulkInsertItem = model.BulkInsertItem

	// UUID is a 128-bit identifier, re-exported from google/uuid so
	// callers don't need a second import for vertex and edge identity.
	UUID = uuid.UUID
)

// NewValue canonicalizes v into a Value.
func NewValue(v interface{}) (Value, error) { return model.NewValue(v) }

// NewVertex returns a Vertex with a freshly generated random identity.
func NewVertex(label Identifier) Vertex { return model.NewVertex(label) }

// NewUUID generates a new random identifier.
func NewUUID() UUID { return uuid.New() }

const MaxIdentifierLength = model.MaxIdentifierLength
