package fsh

import (
	"fmt"

	"github.com/woozymasta/dbpf/dxt"
)

// Format is the bitmap format selector stored in bits 0-6 of an entry code.
type Format uint8

const (
	// FormatDXT1 is DXT1 block compression, 8 bytes per 4x4 block.
	FormatDXT1 Format = 0x60
	// FormatDXT3 is DXT3 block compression, 16 bytes per 4x4 block.
	FormatDXT3 Format = 0x61
	// FormatRaster32 is 32-bit BGRA.
	FormatRaster32 Format = 0x7D
	// FormatRaster24 is 24-bit BGR, always opaque.
	FormatRaster24 Format = 0x7F
)

// Raw formats that are recognized but rejected.
const (
	codeRaster565  = 0x78
	codeRaster1555 = 0x7E
	codeRaster4444 = 0x6D
	codeIndexed8   = 0x7B
)

const (
	codeFormatMask = 0x7F
	codeCompressed = 0x80
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatDXT1:
		return "DXT1"
	case FormatDXT3:
		return "DXT3"
	case FormatRaster32:
		return "Raster32"
	case FormatRaster24:
		return "Raster24"
	default:
		return fmt.Sprintf("Format(0x%02X)", uint8(f))
	}
}

// Valid reports whether f is one of the four supported bitmap formats.
func (f Format) Valid() bool {
	switch f {
	case FormatDXT1, FormatDXT3, FormatRaster32, FormatRaster24:
		return true
	default:
		return false
	}
}

func unsupportedRaw(code uint8) bool {
	switch code {
	case codeRaster565, codeRaster1555, codeRaster4444, codeIndexed8:
		return true
	default:
		return false
	}
}

// blockFormat maps a block-compressed format to its codec selector.
func blockFormat(f Format) (dxt.Format, bool) {
	switch f {
	case FormatDXT1:
		return dxt.DXT1, true
	case FormatDXT3:
		return dxt.DXT3, true
	default:
		return 0, false
	}
}

// levelLength returns the payload length of one width x height level, or -1.
func levelLength(f Format, width, height int) int {
	switch f {
	case FormatDXT1:
		return dxt.EncodedLength(dxt.DXT1, width, height)
	case FormatDXT3:
		return dxt.EncodedLength(dxt.DXT3, width, height)
	case FormatRaster32:
		return width * height * 4
	case FormatRaster24:
		return width * height * 3
	default:
		return -1
	}
}
