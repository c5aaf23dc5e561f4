package manager

import (
	"log"
	"sync"

	"github.com/mossvale/graphkv/codec"
	"github.com/mossvale/graphkv/kv"
	"github.com/mossvale/graphkv/model"
)

// indexedPropertiesNamespace tags every key this manager writes, so the
// metadata tree can later carry other kinds of registry entries without
// colliding with this one.
const indexedPropertiesNamespace = model.Identifier("IndexedProperties")

// MetadataManager tracks which property names currently have a value index
// maintained for them. The in-memory set is authoritative for reads; sync
// rewrites the persisted copy wholesale rather than diffing it, which keeps
// the write path simple at the cost of a full rewrite on every change —
// acceptable since the registry is expected to stay small.
type MetadataManager struct {
	tree    *kv.Tree
	mu      sync.RWMutex
	indexed map[model.Identifier]struct{}
}

// NewMetadataManager loads the persisted registry from tree.
func NewMetadataManager(tree *kv.Tree) (*MetadataManager, error) {
	m := &MetadataManager{tree: tree, indexed: make(map[model.Identifier]struct{})}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MetadataManager) namespacePrefix() []byte {
	return codec.Build(codec.Ident(indexedPropertiesNamespace))
}

func (m *MetadataManager) entryKey(name model.Identifier) []byte {
	return codec.Build(codec.Ident(indexedPropertiesNamespace), codec.Ident(name))
}

func (m *MetadataManager) load() error {
	prefix := m.namespacePrefix()
	return m.tree.ScanPrefix(prefix, false, func(item kv.Item) (bool, error) {
		r := codec.NewReader(item.Key[len(prefix):])
		name, err := r.ReadIdent()
		if err != nil {
			return false, err
		}
		m.indexed[name] = struct{}{}
		return true, nil
	})
}

// IsIndexed reports whether name currently has a maintained value index.
func (m *MetadataManager) IsIndexed(name model.Identifier) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.indexed[name]
	return ok
}

// AddIndex marks name as indexed and persists the updated registry. It is a
// no-op if name is already indexed.
func (m *MetadataManager) AddIndex(name model.Identifier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indexed[name]; ok {
		return nil
	}
	m.indexed[name] = struct{}{}
	return m.sync()
}

// RemoveIndex unmarks name and persists the updated registry.
func (m *MetadataManager) RemoveIndex(name model.Identifier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indexed[name]; !ok {
		return nil
	}
	delete(m.indexed, name)
	return m.sync()
}

// sync erases every persisted entry under this manager's namespace and
// rewrites it from the in-memory set. Caller must hold m.mu.
func (m *MetadataManager) sync() error {
	prefix := m.namespacePrefix()

	var stale [][]byte
	if err := m.tree.ScanPrefix(prefix, false, func(item kv.Item) (bool, error) {
		key := make([]byte, len(item.Key))
		copy(key, item.Key)
		stale = append(stale, key)
		return true, nil
	}); err != nil {
		return err
	}

	for _, key := range stale {
		if err := m.tree.Delete(key); err != nil {
			log.Printf("manager: failed to clear stale index-registry entry: %v", err)
			return err
		}
	}

	for name := range m.indexed {
		if err := m.tree.Set(m.entryKey(name), nil); err != nil {
			log.Printf("manager: failed to persist index-registry entry %q: %v", name, err)
			return err
		}
	}
	return nil
}
