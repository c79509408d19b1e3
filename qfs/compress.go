package qfs

import "encoding/binary"

const (
	maxOffset     = 131072
	maxMatch      = 1028
	maxCandidates = 50
	hashBuckets   = 1 << 16
	windowMask    = maxOffset - 1

	// maxLiteralChunk is the longest run a single 0xE0..0xFB opcode carries.
	maxLiteralChunk = 112
)

// Compress deflates src into a QFS stream. With prefixLength set the result
// starts with its own total length as a 4-byte little-endian integer.
//
// A nil result is not an error: it means the output would not be smaller than
// the input, and the caller should store src uncompressed.
func Compress(src []byte, prefixLength bool) []byte {
	if len(src) > MaxSize {
		return nil
	}

	hdr := 5
	if prefixLength {
		hdr += PrefixLength
	}

	e := &encoder{
		src:   src,
		dst:   make([]byte, hdr, max(len(src), hdr)),
		limit: len(src),
	}

	if prefixLength {
		e.dst[4] = 0x10
		e.dst[5] = MagicByte
	} else {
		e.dst[0] = 0x10
		e.dst[1] = MagicByte
	}
	size := len(src)
	e.dst[hdr-3] = byte(size >> 16)
	e.dst[hdr-2] = byte(size >> 8)
	e.dst[hdr-1] = byte(size)

	if !e.run() {
		return nil
	}

	if prefixLength {
		// #nosec G115 -- output is shorter than the input, which fits 24 bits.
		binary.LittleEndian.PutUint32(e.dst, uint32(len(e.dst)))
	}
	return e.dst
}

type encoder struct {
	src   []byte
	dst   []byte
	limit int

	head [hashBuckets]int32
	prev [maxOffset]int32
}

func (e *encoder) overflow() bool {
	return len(e.dst) >= e.limit
}

func (e *encoder) insert(pos int) {
	if pos+1 >= len(e.src) {
		return
	}
	h := int(e.src[pos])<<8 | int(e.src[pos+1])
	e.prev[pos&windowMask] = e.head[h]
	// #nosec G115 -- pos is below MaxSize.
	e.head[h] = int32(pos)
}

// longest walks the hash chain for pos and returns the best match.
func (e *encoder) longest(pos int) (length, offset int) {
	if pos+3 > len(e.src) {
		return 0, 0
	}
	limit := len(e.src) - pos
	if limit > maxMatch {
		limit = maxMatch
	}

	h := int(e.src[pos])<<8 | int(e.src[pos+1])
	cand := int(e.head[h])
	for tries := 0; cand >= 0 && tries < maxCandidates; tries++ {
		off := pos - cand
		if off > maxOffset {
			break
		}

		n := 0
		for n < limit && e.src[cand+n] == e.src[pos+n] {
			n++
		}
		if n > length {
			length, offset = n, off
			if n == limit {
				break
			}
		}
		cand = int(e.prev[cand&windowMask])
	}

	return length, offset
}

func (e *encoder) run() bool {
	for i := range e.head {
		e.head[i] = -1
	}

	literal := 0
	pos := 0
	for pos < len(e.src) {
		length, offset := e.longest(pos)
		if !encodable(length, offset) {
			e.insert(pos)
			pos++
			continue
		}

		rest := e.emitLiterals(literal, pos)
		e.dst = appendCopy(e.dst, e.src[pos-rest:pos], length, offset)
		if e.overflow() {
			return false
		}

		for end := pos + length; pos < end; pos++ {
			e.insert(pos)
		}
		literal = pos
	}

	rest := e.emitLiterals(literal, len(e.src))
	e.dst = append(e.dst, byte(0xFC+rest))
	e.dst = append(e.dst, e.src[len(e.src)-rest:]...)
	return !e.overflow()
}

// emitLiterals writes src[from:to] in 0xE0..0xFB chunks and returns the 0..3
// bytes left for the following opcode.
func (e *encoder) emitLiterals(from, to int) int {
	pending := to - from
	for pending > 3 {
		chunk := pending &^ 3
		if chunk > maxLiteralChunk {
			chunk = maxLiteralChunk
		}
		e.dst = append(e.dst, byte(0xE0+(chunk-4)>>2))
		e.dst = append(e.dst, e.src[from:from+chunk]...)
		from += chunk
		pending -= chunk
	}
	return pending
}

// encodable rejects matches that cost as much as the literals they replace.
func encodable(length, offset int) bool {
	switch {
	case length <= 2:
		return false
	case length == 3 && offset > 1024:
		return false
	case length == 4 && offset > 16384:
		return false
	}
	return offset > 0 && offset <= maxOffset
}

// appendCopy emits the smallest opcode carrying 0..3 literal bytes plus a
// back-reference of length bytes at offset.
func appendCopy(dst, literal []byte, length, offset int) []byte {
	lit := len(literal)
	off := offset - 1

	switch {
	case length <= 10 && offset <= 1024:
		dst = append(dst,
			byte((off>>3)&0x60|(length-3)<<2|lit),
			byte(off),
		)
	case length <= 67 && offset <= 16384:
		dst = append(dst,
			byte(0x80|(length-4)),
			byte(lit<<6|off>>8),
			byte(off),
		)
	default:
		dst = append(dst,
			byte(0xC0|(off>>12)&0x10|((length-5)>>6)&0x0C|lit),
			byte(off>>8),
			byte(off),
			byte(length-5),
		)
	}

	return append(dst, literal...)
}
