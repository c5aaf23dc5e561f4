// Package kv provides an ordered key-value store abstraction over BadgerDB,
// emulating multiple independently-named trees inside a single Badger
// keyspace via single-byte key prefixes. It has no knowledge of vertices,
// edges, or the binary key schema in package codec — it deals only in raw
// keys and values.
package kv

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// ErrClosed is returned by any Tree or Batch operation attempted after the
// owning Holder has been closed.
var ErrClosed = errors.New("kv: holder is closed")

// Tree prefixes. Each logical tree described in spec.md's physical layout
// table gets its own byte so a single *badger.DB can emulate nine
// independent ordered keyspaces.
const (
	PrefixVertex             = byte(0x01)
	PrefixEdge               = byte(0x02)
	PrefixEdgeRange          = byte(0x03)
	PrefixReversedEdgeRange  = byte(0x04)
	PrefixVertexProperty     = byte(0x05)
	PrefixVertexPropertyValue = byte(0x06)
	PrefixEdgeProperty       = byte(0x07)
	PrefixEdgePropertyValue  = byte(0x08)
	PrefixMetadata           = byte(0x09)
)

// Config configures the Holder's underlying BadgerDB instance.
type Config struct {
	// Path is the on-disk directory for data files. Ignored when InMemory
	// is set.
	Path string

	// InMemory runs BadgerDB in memory-only mode. Useful for tests.
	InMemory bool

	// SyncWrites forces an fsync after every write. Slower, more durable.
	SyncWrites bool

	// UseCompression enables Badger's block compression.
	UseCompression bool

	// CompressionFactor is the zstd compression level to use when
	// UseCompression is set. A nil value lets Badger pick its default.
	CompressionFactor *int

	// Logger receives BadgerDB's internal log lines. A nil Logger silences
	// them, matching the engine's own policy of staying quiet on the hot
	// path.
	Logger badger.Logger
}

// Holder owns the single underlying *badger.DB and hands out prefixed Tree
// views over it.
type Holder struct {
	db     *badger.DB
	closed atomic.Bool
}

// Open opens (or creates) the BadgerDB database described by cfg.
func Open(cfg Config) (*Holder, error) {
	opts := badger.DefaultOptions(cfg.Path)

	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}
	if cfg.SyncWrites {
		opts = opts.WithSyncWrites(true)
	}
	opts = opts.WithLogger(cfg.Logger)

	if cfg.UseCompression {
		opts = opts.WithCompression(options.ZSTD)
		if cfg.CompressionFactor != nil {
			opts = opts.WithZSTDCompressionLevel(*cfg.CompressionFactor)
		}
	} else {
		opts = opts.WithCompression(options.None)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("kv: failed to open badger: %w", err)
	}
	return &Holder{db: db}, nil
}

// Close releases the underlying database. Any Tree or Batch operation
// attempted afterward returns ErrClosed.
func (h *Holder) Close() error {
	h.closed.Store(true)
	if err := h.db.Close(); err != nil {
		return fmt.Errorf("kv: failed to close badger: %w", err)
	}
	return nil
}

// Sync flushes all pending writes to stable storage.
func (h *Holder) Sync() error {
	if h.closed.Load() {
		return ErrClosed
	}
	if err := h.db.Sync(); err != nil {
		return fmt.Errorf("kv: failed to sync badger: %w", err)
	}
	return nil
}

// Tree returns a prefixed view of the database identified by prefix.
func (h *Holder) Tree(prefix byte) *Tree {
	return &Tree{holder: h, prefix: prefix}
}

// Tree is a single logical keyspace backed by one byte prefix over a shared
// *badger.DB.
type Tree struct {
	holder *Holder
	prefix byte
}

func (t *Tree) fullKey(key []byte) []byte {
	full := make([]byte, 0, len(key)+1)
	full = append(full, t.prefix)
	return append(full, key...)
}

// ErrKeyNotFound is returned by Get when key is absent, translated from
// badger's own sentinel so callers above this package never import badger
// directly.
var ErrKeyNotFound = badger.ErrKeyNotFound

// Get reads a single value. It returns ErrKeyNotFound when key is absent.
func (t *Tree) Get(key []byte) ([]byte, error) {
	if t.holder.closed.Load() {
		return nil, ErrClosed
	}
	var val []byte
	err := t.holder.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(t.fullKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			val = append([]byte{}, v...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Exists reports whether key is present.
func (t *Tree) Exists(key []byte) (bool, error) {
	_, err := t.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Set writes a single key/value pair in its own transaction.
func (t *Tree) Set(key, value []byte) error {
	if t.holder.closed.Load() {
		return ErrClosed
	}
	return t.holder.db.Update(func(txn *badger.Txn) error {
		return txn.Set(t.fullKey(key), value)
	})
}

// Delete removes a single key in its own transaction. Deleting an absent
// key is not an error.
func (t *Tree) Delete(key []byte) error {
	if t.holder.closed.Load() {
		return ErrClosed
	}
	return t.holder.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(t.fullKey(key))
	})
}

// Count returns the number of keys in the tree.
func (t *Tree) Count() (uint64, error) {
	if t.holder.closed.Load() {
		return 0, ErrClosed
	}
	var n uint64
	err := t.holder.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte{t.prefix}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Item is a single key/value pair surfaced by a scan, with the tree prefix
// already stripped from Key.
type Item struct {
	Key   []byte
	Value []byte
}

// ScanPrefix iterates every key under key-prefix suffix, in ascending byte
// order, calling fn for each. Iteration stops early if fn returns false or
// an error.
func (t *Tree) ScanPrefix(suffix []byte, withValues bool, fn func(Item) (bool, error)) error {
	if t.holder.closed.Load() {
		return ErrClosed
	}
	return t.holder.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = withValues
		it := txn.NewIterator(opts)
		defer it.Close()

		fullPrefix := t.fullKey(suffix)
		for it.Seek(fullPrefix); it.ValidForPrefix(fullPrefix); it.Next() {
			item := it.Item()
			key := append([]byte{}, item.Key()[1:]...)

			var value []byte
			if withValues {
				if err := item.Value(func(v []byte) error {
					value = append([]byte{}, v...)
					return nil
				}); err != nil {
					return err
				}
			}

			cont, err := fn(Item{Key: key, Value: value})
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		return nil
	})
}

// ScanRange iterates keys from the tree's suffix-space starting at lowerBound
// (inclusive) to the end of the tree, with no upper bound — matching the
// "infinite tail" range scans the manager layer performs over vertex and
// edge trees ordered purely by identifier.
func (t *Tree) ScanRange(lowerBound []byte, withValues bool, fn func(Item) (bool, error)) error {
	if t.holder.closed.Load() {
		return ErrClosed
	}
	return t.holder.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = withValues
		it := txn.NewIterator(opts)
		defer it.Close()

		treePrefix := []byte{t.prefix}
		seek := t.fullKey(lowerBound)
		for it.Seek(seek); it.ValidForPrefix(treePrefix); it.Next() {
			item := it.Item()
			key := append([]byte{}, item.Key()[1:]...)

			var value []byte
			if withValues {
				if err := item.Value(func(v []byte) error {
					value = append([]byte{}, v...)
					return nil
				}); err != nil {
					return err
				}
			}

			cont, err := fn(Item{Key: key, Value: value})
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		return nil
	})
}

// HasPrefix reports whether key begins with prefix, for callers that
// receive already tree-relative keys from a scan and need to re-check a
// sub-prefix (e.g. a label filter inside a wider range scan); nothing in
// this module calls it.
func HasPrefix(key, prefix []byte) bool {
	return bytes.HasPrefix(key, prefix)
}

// op is one write queued into a Batch.
type op struct {
	key    []byte
	value  []byte
	delete bool
}

// Batch accumulates writes for a single tree and applies them atomically in
// one Badger transaction. bulk_insert applies one Batch per tree, in order,
// each its own atomic unit — there is no cross-tree transaction, by design.
type Batch struct {
	tree *Tree
	ops  []op
}

// NewBatch returns an empty batch bound to this tree.
func (t *Tree) NewBatch() *Batch {
	return &Batch{tree: t}
}

// Set queues a write.
func (b *Batch) Set(key, value []byte) {
	b.ops = append(b.ops, op{key: key, value: value})
}

// Delete queues a removal.
func (b *Batch) Delete(key []byte) {
	b.ops = append(b.ops, op{key: key, delete: true})
}

// Len reports how many writes are queued.
func (b *Batch) Len() int { return len(b.ops) }

// Apply commits every queued write in a single Badger transaction.
func (b *Batch) Apply() error {
	if len(b.ops) == 0 {
		return nil
	}
	if b.tree.holder.closed.Load() {
		return ErrClosed
	}
	return b.tree.holder.db.Update(func(txn *badger.Txn) error {
		for _, o := range b.ops {
			fullKey := b.tree.fullKey(o.key)
			if o.delete {
				if err := txn.Delete(fullKey); err != nil {
					return err
				}
				continue
			}
			if err := txn.Set(fullKey, o.value); err != nil {
				return err
			}
		}
		return nil
	})
}
