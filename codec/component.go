// Package codec implements the binary key schema used by every tree in the
// storage engine: a concatenation of self-delimiting tagged components.
//
// Four component kinds exist: Uuid (fixed 16 bytes), Ident (a length byte
// followed by UTF-8, so it is self-delimiting without a tag byte), Json
// (canonical JSON bytes whose own grammar determines where they end), and
// U64 (fixed 8 bytes, big-endian, used for metadata and counters).
package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/mossvale/graphkv/model"
)

// Component is one piece of a compound key.
type Component interface {
	appendTo(buf []byte) []byte
}

type uuidComponent uuid.UUID

func (c uuidComponent) appendTo(buf []byte) []byte {
	return append(buf, c[:]...)
}

// Uuid builds a 16-byte fixed-width key component.
func Uuid(id uuid.UUID) Component { return uuidComponent(id) }

type identComponent model.Identifier

func (c identComponent) appendTo(buf []byte) []byte {
	s := string(c)
	buf = append(buf, byte(len(s)))
	return append(buf, s...)
}

// Ident builds a length-prefixed identifier component. id must be no longer
// than model.MaxIdentifierLength bytes.
func Ident(id model.Identifier) Component { return identComponent(id) }

type jsonComponent model.Value

func (c jsonComponent) appendTo(buf []byte) []byte {
	return append(buf, model.Value(c).Bytes()...)
}

// Json builds a component from a canonical JSON value. It carries no length
// prefix: a Reader recovers its extent by re-parsing the JSON grammar
// itself, so a Json component may only be followed by other components if
// the reader is told to stop at the first complete JSON value (see
// Reader.ReadJSON).
func Json(v model.Value) Component { return jsonComponent(v) }

type u64Component uint64

func (c u64Component) appendTo(buf []byte) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(c))
	return append(buf, tmp[:]...)
}

// U64 builds a fixed 8-byte big-endian component.
func U64(v uint64) Component { return u64Component(v) }

type rawComponent []byte

func (c rawComponent) appendTo(buf []byte) []byte {
	return append(buf, c...)
}

// Raw embeds an already-encoded byte sequence verbatim, for composing a key
// out of a previously built sub-key (e.g. a property's owner prefix) without
// re-tagging it.
func Raw(b []byte) Component { return rawComponent(b) }

// Build concatenates components into a single key.
func Build(components ...Component) []byte {
	var buf []byte
	for _, c := range components {
		buf = c.appendTo(buf)
	}
	return buf
}

// Reader decodes a key built by Build, advancing a cursor through its bytes.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps a key for sequential component reads.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining reports how many bytes are left unread.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Pos reports how many bytes have been consumed so far.
func (r *Reader) Pos() int { return r.pos }

// ReadUUID reads a fixed 16-byte component.
func (r *Reader) ReadUUID() (uuid.UUID, error) {
	if r.Remaining() < 16 {
		return uuid.UUID{}, ErrShortBuffer
	}
	var id uuid.UUID
	copy(id[:], r.buf[r.pos:r.pos+16])
	r.pos += 16
	return id, nil
}

// ReadIdent reads a length-prefixed identifier component.
func (r *Reader) ReadIdent() (model.Identifier, error) {
	if r.Remaining() < 1 {
		return "", ErrShortBuffer
	}
	n := int(r.buf[r.pos])
	r.pos++
	if r.Remaining() < n {
		return "", ErrShortBuffer
	}
	s := string(r.buf[r.pos : r.pos+n])
	r.pos += n
	return model.Identifier(s), nil
}

// ReadJSON reads a Json component by letting the JSON grammar determine its
// own length: it decodes exactly one JSON value starting at the cursor and
// advances the cursor by however many bytes the decoder consumed. This
// avoids a length prefix by relying on the JSON grammar's own stream-offset
// tracking.
func (r *Reader) ReadJSON() (model.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(r.buf[r.pos:]))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return model.Value{}, err
	}
	r.pos += int(dec.InputOffset())
	return model.ValueFromBytes(raw), nil
}

// ReadU64 reads a fixed 8-byte big-endian component.
func (r *Reader) ReadU64() (uint64, error) {
	if r.Remaining() < 8 {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}
