package manager

import (
	"github.com/mossvale/graphkv/codec"
	"github.com/mossvale/graphkv/kv"
	"github.com/mossvale/graphkv/model"
)

// PropertyManager implements the primary-property-tree plus value-index-tree
// pair shared by both vertex properties and edge properties. ownerKey is an opaque,
// already-encoded key prefix identifying the property's owner: Uuid(vertexID)
// for a vertex property, or Uuid·Ident·Uuid for an edge property. Collapsing
// both managers onto one generic owner-key type avoids carrying two
// near-identical copies of this logic.
type PropertyManager struct {
	primary *kv.Tree
	index   *kv.Tree
}

// NewPropertyManager wraps the primary property tree and its value-index
// tree.
func NewPropertyManager(primary, index *kv.Tree) *PropertyManager {
	return &PropertyManager{primary: primary, index: index}
}

func (m *PropertyManager) primaryKey(ownerKey []byte, name model.Identifier) []byte {
	return codec.Build(codec.Raw(ownerKey), codec.Ident(name))
}

func (m *PropertyManager) valueIndexKey(name model.Identifier, value model.Value, ownerKey []byte) []byte {
	return codec.Build(codec.Ident(name), codec.Json(value), codec.Raw(ownerKey))
}

// Get reads the named property for ownerKey. ok is false when the property
// is absent.
func (m *PropertyManager) Get(ownerKey []byte, name model.Identifier) (value model.Value, ok bool, err error) {
	raw, err := m.primary.Get(m.primaryKey(ownerKey, name))
	if err == kv.ErrKeyNotFound {
		return model.Value{}, false, nil
	}
	if err != nil {
		return model.Value{}, false, err
	}
	return model.ValueFromBytes(raw), true, nil
}

// Set writes name/value for ownerKey. When indexed is true the value-index
// entry is written after any stale entry for the previous value has been
// removed: read old value, drop its index entry, write the new primary
// value, write the new index entry.
func (m *PropertyManager) Set(ownerKey []byte, name model.Identifier, value model.Value, indexed bool) error {
	pk := m.primaryKey(ownerKey, name)

	old, err := m.primary.Get(pk)
	switch {
	case err == kv.ErrKeyNotFound:
		// no previous value, nothing to unindex
	case err != nil:
		return err
	default:
		if indexed {
			if err := m.index.Delete(m.valueIndexKey(name, model.ValueFromBytes(old), ownerKey)); err != nil {
				return err
			}
		}
	}

	if err := m.primary.Set(pk, value.Bytes()); err != nil {
		return err
	}
	if indexed {
		if err := m.index.Set(m.valueIndexKey(name, value, ownerKey), nil); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes name for ownerKey and, if an index entry exists for its
// last known value, removes that too. Deleting an absent key is not an
// error, so this is safe to call whether or not the property was ever
// indexed.
func (m *PropertyManager) Delete(ownerKey []byte, name model.Identifier) error {
	pk := m.primaryKey(ownerKey, name)

	old, err := m.primary.Get(pk)
	if err == kv.ErrKeyNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	if err := m.primary.Delete(pk); err != nil {
		return err
	}
	return m.index.Delete(m.valueIndexKey(name, model.ValueFromBytes(old), ownerKey))
}

// DeleteAllForOwner removes every property belonging to ownerKey, along with
// their index entries. Used by the vertex and edge cascade-delete paths.
func (m *PropertyManager) DeleteAllForOwner(ownerKey []byte) error {
	var names []model.Identifier
	err := m.primary.ScanPrefix(ownerKey, false, func(item kv.Item) (bool, error) {
		r := codec.NewReader(item.Key[len(ownerKey):])
		name, err := r.ReadIdent()
		if err != nil {
			return false, err
		}
		names = append(names, name)
		return true, nil
	})
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := m.Delete(ownerKey, name); err != nil {
			return err
		}
	}
	return nil
}

// AllForOwner returns every name/value pair belonging to ownerKey.
func (m *PropertyManager) AllForOwner(ownerKey []byte) ([]model.Identifier, []model.Value, error) {
	var names []model.Identifier
	var values []model.Value
	err := m.primary.ScanPrefix(ownerKey, true, func(item kv.Item) (bool, error) {
		r := codec.NewReader(item.Key[len(ownerKey):])
		name, err := r.ReadIdent()
		if err != nil {
			return false, err
		}
		names = append(names, name)
		values = append(values, model.ValueFromBytes(item.Value))
		return true, nil
	})
	return names, values, err
}

// OwnersWithValue visits the owner key of every property named name whose
// value equals value, in index order.
func (m *PropertyManager) OwnersWithValue(name model.Identifier, value model.Value, fn func(ownerKey []byte) (bool, error)) error {
	prefix := codec.Build(codec.Ident(name), codec.Json(value))
	return m.index.ScanPrefix(prefix, false, func(item kv.Item) (bool, error) {
		owner := item.Key[len(prefix):]
		return fn(owner)
	})
}

// OwnersWithProperty visits the owner key and value of every property named
// name, regardless of value, in index order.
func (m *PropertyManager) OwnersWithProperty(name model.Identifier, fn func(ownerKey []byte, value model.Value) (bool, error)) error {
	prefix := codec.Build(codec.Ident(name))
	return m.index.ScanPrefix(prefix, false, func(item kv.Item) (bool, error) {
		r := codec.NewReader(item.Key[len(prefix):])
		value, err := r.ReadJSON()
		if err != nil {
			return false, err
		}
		owner := item.Key[len(prefix)+r.Pos():]
		return fn(owner, value)
	})
}
