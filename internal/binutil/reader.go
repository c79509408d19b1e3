// Package binutil provides the little-endian field readers and writers shared
// by the codecs, the image container and the archive.
package binutil

import (
	"encoding/binary"
	"fmt"
)

// Reader is a bounds-checked cursor over a byte slice. Seeks are absolute.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader positioned at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current absolute offset.
func (r *Reader) Pos() int { return r.pos }

// Size returns the length of the underlying buffer.
func (r *Reader) Size() int { return len(r.buf) }

// Buffer returns the whole underlying buffer.
func (r *Reader) Buffer() []byte { return r.buf }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// Seek moves the cursor to an absolute offset. Seeking to the very end is allowed.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.buf) {
		return fmt.Errorf("%w: %d (size %d)", ErrOutOfRange, off, len(r.buf))
	}
	r.pos = off
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, fmt.Errorf("%w: need %d bytes at %d, have %d", ErrTruncated, n, r.pos, r.Len())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U24BE reads a big-endian 24-bit unsigned integer.
func (r *Reader) U24BE() (uint32, error) {
	b, err := r.take(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// Fixed4 reads four raw bytes (magic values, family ids, directory names).
func (r *Reader) Fixed4() ([4]byte, error) {
	var out [4]byte
	b, err := r.take(4)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// Bytes returns the next n bytes. The result aliases the underlying buffer.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

// Copy returns a copy of the next n bytes.
func (r *Reader) Copy(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// U32At reads a little-endian uint32 at an absolute offset without moving the cursor.
func U32At(buf []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(buf) {
		return 0, fmt.Errorf("%w: need 4 bytes at %d, have %d", ErrTruncated, off, len(buf))
	}
	return binary.LittleEndian.Uint32(buf[off:]), nil
}
