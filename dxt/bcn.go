package dxt

import (
	"fmt"
	"image"

	"github.com/woozymasta/bcn"
)

// BCN returns an Encoder backed by github.com/woozymasta/bcn. Levels smaller
// than one block fall back to the built-in encoder. Nil opts uses the library
// defaults.
func BCN(opts *bcn.EncodeOptions) Encoder {
	return func(raster []byte, stride, width, height int, format Format) ([]byte, error) {
		var target bcn.Format
		switch format {
		case DXT1:
			target = bcn.FormatDXT1
		case DXT3:
			target = bcn.FormatDXT3
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
		}
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
		}
		if err := checkRaster(raster, stride, width, height); err != nil {
			return nil, err
		}
		if width < 4 || height < 4 {
			return Encode(raster, stride, width, height, format)
		}

		img := &image.NRGBA{
			Pix:    raster,
			Stride: stride,
			Rect:   image.Rect(0, 0, width, height),
		}
		data, _, _, err := bcn.EncodeImageWithOptions(img, target, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExternalEncoder, err)
		}
		if want := EncodedLength(format, width, height); len(data) != want {
			return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrExternalEncoder, want, len(data))
		}

		return data, nil
	}
}

var _ Encoder = Encode
