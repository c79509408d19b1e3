/*
Package qfs implements the QFS (RefPack) LZ77-variant byte-stream compression
used for DBPF archive entries and FSH texture containers.

A compressed buffer starts with an optional 4-byte little-endian length prefix,
the 2-byte magic (0x10 or 0x11 followed by 0xFB) and the uncompressed length as
a 3-byte big-endian integer. The opcode stream follows and ends with a terminal
opcode in 0xFC..0xFF.
*/
package qfs

import (
	"encoding/binary"
	"fmt"

	"github.com/woozymasta/dbpf/internal/binutil"
)

const (
	// MagicByte is the second magic byte of every QFS header.
	MagicByte = 0xFB
	// PrefixLength is the size of the optional little-endian length prefix.
	PrefixLength = 4
	// MaxSize is the largest input the 3-byte size field can describe.
	MaxSize = 1<<24 - 1
)

// magicAt reports whether a QFS magic starts at off.
func magicAt(buf []byte, off int) bool {
	if len(buf) < off+2 {
		return false
	}
	return (buf[off] == 0x10 || buf[off] == 0x11) && buf[off+1] == MagicByte
}

// headerOffset returns the offset of the magic: 0 for bare streams, 4 for
// length-prefixed ones. A prefix equal to the buffer length wins over a magic
// at offset 0, since a prefix of 0xFB10 or 0xFB11 reads as one.
func headerOffset(buf []byte) (int, error) {
	switch {
	case magicAt(buf, PrefixLength) && uint64(binary.LittleEndian.Uint32(buf)) == uint64(len(buf)):
		return PrefixLength, nil
	case magicAt(buf, 0):
		return 0, nil
	case magicAt(buf, PrefixLength):
		return PrefixLength, nil
	default:
		return 0, ErrMagic
	}
}

// HasMagic reports whether buf begins with a QFS header, with or without the
// length prefix.
func HasMagic(buf []byte) bool {
	_, err := headerOffset(buf)
	return err == nil
}

// UncompressedSize reads the declared output length from the header.
func UncompressedSize(buf []byte) (int, error) {
	off, err := headerOffset(buf)
	if err != nil {
		return 0, err
	}
	r := binutil.NewReader(buf)
	if err := r.Seek(off + 2); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	size, err := r.U24BE()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return int(size), nil
}
