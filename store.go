// Package graphkv is an embedded property-graph storage engine built on an
// ordered key-value store. It models vertices with a single label, directed
// typed edges, JSON properties on either, and an optional value index on
// chosen property names.
package graphkv

import (
	"github.com/mossvale/graphkv/internal/manager"
	"github.com/mossvale/graphkv/kv"
)

// Store owns the underlying database and the managers wired over its nine
// trees. All reads and writes go through a Transaction obtained from
// NewTransaction.
type Store struct {
	holder *kv.Holder

	vertices         *manager.VertexManager
	edges            *manager.EdgeManager
	forwardRanges    *manager.EdgeRangeManager
	reversedRanges   *manager.EdgeRangeManager
	vertexProperties *manager.PropertyManager
	edgeProperties   *manager.PropertyManager
	metadata         *manager.MetadataManager
}

// Open opens or creates a store at the location described by cfg.
func Open(cfg Config) (*Store, error) {
	holder, err := kv.Open(cfg.toKV())
	if err != nil {
		return nil, err
	}

	vertexProperties := manager.NewPropertyManager(
		holder.Tree(kv.PrefixVertexProperty),
		holder.Tree(kv.PrefixVertexPropertyValue),
	)
	edgeProperties := manager.NewPropertyManager(
		holder.Tree(kv.PrefixEdgeProperty),
		holder.Tree(kv.PrefixEdgePropertyValue),
	)

	forwardRanges := manager.NewEdgeRangeManager(holder.Tree(kv.PrefixEdgeRange), false)
	reversedRanges := manager.NewEdgeRangeManager(holder.Tree(kv.PrefixReversedEdgeRange), true)

	edges := manager.NewEdgeManager(holder.Tree(kv.PrefixEdge), forwardRanges, reversedRanges, edgeProperties)
	vertices := manager.NewVertexManager(holder.Tree(kv.PrefixVertex), vertexProperties, forwardRanges, reversedRanges, edges)

	metadata, err := manager.NewMetadataManager(holder.Tree(kv.PrefixMetadata))
	if err != nil {
		_ = holder.Close()
		return nil, err
	}

	return &Store{
		holder:           holder,
		vertices:         vertices,
		edges:            edges,
		forwardRanges:    forwardRanges,
		reversedRanges:   reversedRanges,
		vertexProperties: vertexProperties,
		edgeProperties:   edgeProperties,
		metadata:         metadata,
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.holder.Close()
}

// NewTransaction returns a handle for performing operations against the
// store. Transactions are not objects with their own isolation snapshot —
// each operation below is its own atomic unit at the tree level, per the
// engine's cross-tree concurrency model.
func (s *Store) NewTransaction() *Transaction {
	return &Transaction{store: s}
}
