package dxt

import (
	"fmt"

	"github.com/woozymasta/dbpf/internal/errkind"
)

var (
	// ErrUnknownFormat indicates a block format other than DXT1/DXT3.
	ErrUnknownFormat = fmt.Errorf("dxt: unknown block format: %w", errkind.ErrFormat)
	// ErrShortData indicates the block stream is shorter than the image needs.
	ErrShortData = fmt.Errorf("dxt: block data too short: %w", errkind.ErrFormat)
	// ErrInvalidDimensions indicates a non-positive width or height.
	ErrInvalidDimensions = fmt.Errorf("dxt: invalid dimensions: %w", errkind.ErrRange)
	// ErrShortRaster indicates the source raster is smaller than stride x height.
	ErrShortRaster = fmt.Errorf("dxt: raster too short: %w", errkind.ErrRange)
	// ErrExternalEncoder indicates the accelerated encoder failed.
	ErrExternalEncoder = fmt.Errorf("dxt: external encoder failed: %w", errkind.ErrFormat)
)
