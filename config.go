package graphkv

import "github.com/mossvale/graphkv/kv"

// Config configures a Store. The caller builds one directly; there is no
// environment-variable or file loader.
type Config struct {
	// Path is the on-disk directory for data files. Ignored when InMemory
	// is set.
	Path string

	// InMemory runs the store entirely in memory, useful for tests.
	InMemory bool

	// SyncWrites forces an fsync after every write.
	SyncWrites bool

	// UseCompression enables block compression for on-disk data.
	UseCompression bool

	// CompressionFactor selects the compression level when UseCompression
	// is set. Nil lets the underlying store pick its own default.
	CompressionFactor *int
}

func (c Config) toKV() kv.Config {
	return kv.Config{
		Path:              c.Path,
		InMemory:          c.InMemory,
		SyncWrites:        c.SyncWrites,
		UseCompression:    c.UseCompression,
		CompressionFactor: c.CompressionFactor,
	}
}
