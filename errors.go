package graphkv

import (
	"errors"

	"github.com/mossvale/graphkv/kv"
)

// Error taxonomy. Storage and decode failures from the underlying kv and
// codec packages are returned as they are or wrapped with
// fmt.Errorf("...: %w", err), never translated to one of these; these
// sentinels mark outcomes the API contract defines, not unexpected failures.
var (
	// ErrIdentifierTooLong is returned when an Identifier exceeds
	// model.MaxIdentifierLength bytes and cannot be length-prefixed by the
	// binary key schema's single length byte.
	ErrIdentifierTooLong = errors.New("graphkv: identifier exceeds maximum length")

	// ErrClosed is returned by any operation that reaches storage after
	// Close. It is the same sentinel the kv layer raises once its Holder is
	// closed; Transaction methods return it either unchanged or wrapped
	// with %w, so errors.Is(err, ErrClosed) holds. Calls answered from the
	// in-memory index registry alone (a query on a name that is not
	// indexed, IndexProperty on a name already indexed) do not reach
	// storage and do not return it.
	ErrClosed = kv.ErrClosed
)
