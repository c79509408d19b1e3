package qfs

import "fmt"

// Decompress inflates a QFS stream. The magic may sit at offset 0 or after a
// 4-byte length prefix. The output is allocated at exactly the declared size.
func Decompress(src []byte) ([]byte, error) {
	size, err := UncompressedSize(src)
	if err != nil {
		return nil, err
	}
	start, _ := headerOffset(src)

	dst := make([]byte, size)
	in := start + 5
	out := 0

	for {
		if in >= len(src) {
			// tolerate streams that stop right at the declared length without a terminal opcode
			if out == size {
				return dst, nil
			}
			return nil, fmt.Errorf("%w: input ended at %d, output %d of %d", ErrTruncated, in, out, size)
		}

		b0 := int(src[in])
		in++

		var literal, length, offset int
		terminal := false

		switch {
		case b0 < 0x80:
			if in+1 > len(src) {
				return nil, fmt.Errorf("%w: 2-byte opcode at %d", ErrTruncated, in-1)
			}
			b1 := int(src[in])
			in++
			literal = b0 & 0x03
			length = (b0&0x1C)>>2 + 3
			offset = (b0&0x60)<<3 + b1 + 1
		case b0 < 0xC0:
			if in+2 > len(src) {
				return nil, fmt.Errorf("%w: 3-byte opcode at %d", ErrTruncated, in-1)
			}
			b1, b2 := int(src[in]), int(src[in+1])
			in += 2
			literal = b1 >> 6
			length = b0&0x3F + 4
			offset = (b1&0x3F)<<8 + b2 + 1
		case b0 < 0xE0:
			if in+3 > len(src) {
				return nil, fmt.Errorf("%w: 4-byte opcode at %d", ErrTruncated, in-1)
			}
			b1, b2, b3 := int(src[in]), int(src[in+1]), int(src[in+2])
			in += 3
			literal = b0 & 0x03
			length = (b0&0x0C)<<6 + b3 + 5
			offset = (b0&0x10)<<12 + b1<<8 + b2 + 1
		case b0 < 0xFC:
			literal = (b0&0x1F)<<2 + 4
		default:
			literal = b0 & 0x03
			terminal = true
		}

		if in+literal > len(src) {
			return nil, fmt.Errorf("%w: literal run of %d at %d", ErrTruncated, literal, in)
		}
		if out+literal+length > size {
			return nil, fmt.Errorf("%w: opcode at %d writes past %d bytes", ErrSizeMismatch, in, size)
		}

		copy(dst[out:], src[in:in+literal])
		in += literal
		out += literal

		if length > 0 {
			if offset > out {
				return nil, fmt.Errorf("%w: offset %d at output %d", ErrBadOffset, offset, out)
			}
			// byte by byte: the source may overlap the bytes being written
			for i := 0; i < length; i++ {
				dst[out] = dst[out-offset]
				out++
			}
		}

		if terminal {
			if out != size {
				return nil, fmt.Errorf("%w: expected %d, got %d", ErrSizeMismatch, size, out)
			}
			return dst, nil
		}
	}
}
