package binutil

import "encoding/binary"

// Writer is a growable little-endian output buffer with backpatching.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the written bytes. The result aliases the internal buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// U16 appends a little-endian uint16.
func (w *Writer) U16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }

// U32 appends a little-endian uint32.
func (w *Writer) U32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

// Write appends raw bytes. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// Zero appends n zero bytes.
func (w *Writer) Zero(n int) {
	for ; n > 0; n-- {
		w.buf = append(w.buf, 0)
	}
}

// PutU32At overwrites a little-endian uint32 at an absolute offset.
func (w *Writer) PutU32At(off int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[off:], v)
}

// PadLen returns how many bytes are needed to round n up to a multiple of align.
func PadLen(n, align int) int {
	if align <= 1 {
		return 0
	}
	if r := n % align; r != 0 {
		return align - r
	}
	return 0
}
