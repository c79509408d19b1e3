/*
Package dxt encodes and decodes DXT1 and DXT3 (BC1/BC2) 4x4 texture blocks.

Rasters are tightly packed 8-bit RGBA, row-major, with an explicit stride.
Blocks that overhang the image edge are fully decoded and the pixels outside
the image are discarded.
*/
package dxt

import "fmt"

// Format selects the block layout.
type Format uint8

const (
	// DXT1 blocks are 8 bytes: two 5:6:5 endpoints and 16 2-bit indices.
	DXT1 Format = iota + 1
	// DXT3 blocks are 16 bytes: 16 4-bit alpha values then a DXT1 color block.
	DXT3
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case DXT1:
		return "DXT1"
	case DXT3:
		return "DXT3"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// BlockSize returns the encoded size of one 4x4 block, or 0 for unknown formats.
func (f Format) BlockSize() int {
	switch f {
	case DXT1:
		return 8
	case DXT3:
		return 16
	default:
		return 0
	}
}

// EncodedLength returns the byte length of a width x height image, or -1 for
// unknown formats.
func EncodedLength(f Format, width, height int) int {
	size := f.BlockSize()
	if size == 0 {
		return -1
	}
	return ((width + 3) / 4) * ((height + 3) / 4) * size
}

// Encoder compresses an RGBA raster into blocks. Encode is the built-in
// implementation; BCN returns an accelerated drop-in.
type Encoder func(raster []byte, stride, width, height int, format Format) ([]byte, error)

// unpack565 expands a 5:6:5 color to 8 bits per channel by bit replication.
func unpack565(c uint16) [3]int {
	r := int(c>>11) & 0x1F
	g := int(c>>5) & 0x3F
	b := int(c) & 0x1F
	return [3]int{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2}
}

// pack565 quantizes an 8-bit color to the nearest 5:6:5 value.
func pack565(r, g, b int) uint16 {
	r5 := (r*31 + 127) / 255
	g6 := (g*63 + 127) / 255
	b5 := (b*31 + 127) / 255
	// #nosec G115 -- each channel is bounded by its bit width.
	return uint16(r5<<11 | g6<<5 | b5)
}

// palette returns the four RGBA entries a color block selects from. fourLevel
// forces 4-level interpolation regardless of endpoint order (DXT3).
func palette(c0, c1 uint16, fourLevel bool) [4][4]int {
	e0, e1 := unpack565(c0), unpack565(c1)
	var p [4][4]int
	for ch := 0; ch < 3; ch++ {
		p[0][ch] = e0[ch]
		p[1][ch] = e1[ch]
		if fourLevel || c0 > c1 {
			p[2][ch] = (2*e0[ch] + e1[ch]) / 3
			p[3][ch] = (e0[ch] + 2*e1[ch]) / 3
		} else {
			p[2][ch] = (e0[ch] + e1[ch]) / 2
			p[3][ch] = 0
		}
	}
	p[0][3], p[1][3], p[2][3], p[3][3] = 255, 255, 255, 255
	if !fourLevel && c0 <= c1 {
		p[3][3] = 0
	}
	return p
}
