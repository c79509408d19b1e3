package dxt

import (
	"encoding/binary"
	"fmt"
)

// DecodeBlock decodes one block into dst, 16 RGBA pixels in row-major order.
func DecodeBlock(dst *[64]byte, block []byte, format Format) {
	color := block
	if format == DXT3 {
		color = block[8:16]
	}

	c0 := binary.LittleEndian.Uint16(color[0:])
	c1 := binary.LittleEndian.Uint16(color[2:])
	pal := palette(c0, c1, format == DXT3)

	for row := 0; row < 4; row++ {
		bits := color[4+row]
		for col := 0; col < 4; col++ {
			idx := (bits >> (2 * col)) & 0x03
			p := pal[idx]
			o := (row*4 + col) * 4
			dst[o] = byte(p[0])
			dst[o+1] = byte(p[1])
			dst[o+2] = byte(p[2])
			dst[o+3] = byte(p[3])
		}
	}

	if format != DXT3 {
		return
	}
	for i := 0; i < 8; i++ {
		lo := block[i] & 0x0F
		hi := block[i] >> 4
		dst[(2*i)*4+3] = lo<<4 | lo
		dst[(2*i+1)*4+3] = hi<<4 | hi
	}
}

// Decode decodes a block stream into a tightly packed RGBA raster of
// width x height pixels.
func Decode(data []byte, width, height int, format Format) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	size := format.BlockSize()
	if size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	need := EncodedLength(format, width, height)
	if len(data) < need {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrShortData, need, len(data))
	}

	out := make([]byte, width*height*4)
	stride := width * 4
	bw := (width + 3) / 4
	bh := (height + 3) / 4

	var px [64]byte
	offset := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			DecodeBlock(&px, data[offset:offset+size], format)
			offset += size

			for py := 0; py < 4; py++ {
				y := by*4 + py
				if y >= height {
					break
				}
				for pxi := 0; pxi < 4; pxi++ {
					x := bx*4 + pxi
					if x >= width {
						break
					}
					copy(out[y*stride+x*4:y*stride+x*4+4], px[(py*4+pxi)*4:])
				}
			}
		}
	}

	return out, nil
}
