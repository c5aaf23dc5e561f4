package codec

import "errors"

// ErrShortBuffer is returned when a key ends before the component being read
// has enough bytes to decode — always a sign of a corrupt tree or a prefix
// scan that wandered past its intended keyspace.
var ErrShortBuffer = errors.New("codec: short buffer")
