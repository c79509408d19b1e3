package fsh

import (
	"fmt"
	"os"

	"github.com/woozymasta/dbpf/dxt"
	"github.com/woozymasta/dbpf/internal/binutil"
	"github.com/woozymasta/dbpf/qfs"
)

// EncodeOptions configures container serialization.
type EncodeOptions struct {
	// Compress QFS-compresses the whole container when that makes it smaller.
	Compress bool
	// Encoder replaces the built-in DXT encoder (e.g. dxt.BCN). Nil uses dxt.Encode.
	Encoder dxt.Encoder
	// Resampler generates mip levels below the base level. Nil uses Resample.
	Resampler Resampler
	// Precheck skips QFS when an LZ4 pass over a leading sample does not
	// shrink the input. Off by default: QFS finds 3-byte matches LZ4 misses.
	Precheck bool
}

// Pack QFS-compresses data, honoring Precheck. Nil means store raw.
func (o EncodeOptions) Pack(data []byte, prefixLength bool) []byte {
	if o.Precheck {
		return qfs.TryCompress(data, prefixLength)
	}
	return qfs.Compress(data, prefixLength)
}

func (o *EncodeOptions) resolve() EncodeOptions {
	var out EncodeOptions
	if o != nil {
		out = *o
	}
	if out.Encoder == nil {
		out.Encoder = dxt.Encode
	}
	if out.Resampler == nil {
		out.Resampler = Resample
	}
	return out
}

// Write writes img to path uncompressed with default options.
func Write(img *Image, path string) error {
	return WriteFile(img, path, nil)
}

// WriteFile serializes img and writes it to path.
func WriteFile(img *Image, path string, opts *EncodeOptions) error {
	data, err := img.Encode(opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}
	return nil
}

// Encode serializes the image. Nil opts uses the built-in encoder, the
// default resampler and no container compression.
func (img *Image) Encode(opts *EncodeOptions) ([]byte, error) {
	o := opts.resolve()

	count, err := binutil.U32FromInt(len(img.bitmaps))
	if err != nil {
		return nil, err
	}

	w := binutil.NewWriter(headerSize + len(img.bitmaps)*dirEntrySize)
	_, _ = w.Write([]byte(Signature))
	w.U32(0) // total size, patched below
	w.U32(count)
	_, _ = w.Write(img.Family[:])

	dirStart := w.Len()
	for _, bm := range img.bitmaps {
		_, _ = w.Write(bm.Name[:])
		w.U32(0)
	}

	for i, bm := range img.bitmaps {
		if err := bm.validate(); err != nil {
			return nil, fmt.Errorf("bitmap %d: %w", i, err)
		}
		off, err := binutil.U32FromInt(w.Len())
		if err != nil {
			return nil, err
		}
		w.PutU32At(dirStart+i*dirEntrySize+4, off)

		if err := writeEntry(w, bm, o); err != nil {
			return nil, fmt.Errorf("bitmap %d: %w", i, err)
		}
	}

	size, err := binutil.U32FromInt(w.Len())
	if err != nil {
		return nil, err
	}
	w.PutU32At(4, size)

	out := w.Bytes()
	if o.Compress {
		if packed := o.Pack(out, false); packed != nil && len(packed) < len(out) {
			return packed, nil
		}
	}
	return out, nil
}

func writeEntry(w *binutil.Writer, bm *Bitmap, o EncodeOptions) error {
	off := w.Len()

	misc := bm.Misc
	misc[3] &= 0x0FFF
	if bm.MipCount > 0 {
		// #nosec G115 -- validated against maxMipCount.
		misc[3] = uint16(bm.MipCount) << 12
	}

	levels := make([][]byte, bm.MipCount+1)
	for level := range levels {
		data, err := encodeLevel(bm, level, o)
		if err != nil {
			return fmt.Errorf("%w: level %d: %v", ErrEncodeLevel, level, err)
		}
		levels[level] = data
	}

	compressed := false
	if bm.Compressed && bm.MipCount == 0 {
		if packed := o.Pack(levels[0], false); packed != nil {
			levels[0] = packed
			compressed = true
		}
	}

	code := uint32(bm.Format)
	if compressed {
		code |= codeCompressed
	}
	width, err := binutil.U16FromInt(bm.Width)
	if err != nil {
		return fmt.Errorf("%w: width %d", ErrInvalidBitmap, bm.Width)
	}
	height, err := binutil.U16FromInt(bm.Height)
	if err != nil {
		return fmt.Errorf("%w: height %d", ErrInvalidBitmap, bm.Height)
	}
	w.U32(code)
	w.U16(width)
	w.U16(height)
	for _, m := range misc {
		w.U16(m)
	}

	total := 0
	for _, data := range levels {
		_, _ = w.Write(data)
		total += len(data)
		if !bm.Packed {
			w.Zero(binutil.PadLen(len(data), 16))
		}
	}
	if bm.Packed {
		w.Zero(binutil.PadLen(total, 16))
	}

	if bm.MipCount > 0 || len(bm.Attachments) > 0 || compressed {
		section, err := binutil.U24FromInt(w.Len() - off)
		if err != nil {
			return fmt.Errorf("%w: %d bytes", ErrSectionOverflow, w.Len()-off)
		}
		w.PutU32At(off, code|section<<8)
	}

	prev := -1
	for i := range bm.Attachments {
		start := w.Len()
		if prev >= 0 {
			section, err := binutil.U24FromInt(start - prev)
			if err != nil {
				return fmt.Errorf("%w: attachment %d", ErrSectionOverflow, i-1)
			}
			w.PutU32At(prev, uint32(bm.Attachments[i-1].Code)|section<<8)
		}
		bm.Attachments[i].write(w)
		prev = start
	}

	return nil
}

// encodeLevel produces the payload of one mip level.
func encodeLevel(bm *Bitmap, level int, o EncodeOptions) ([]byte, error) {
	color, alpha, width, height := bm.levelPlanes(level, o.Resampler)
	raster := mergePlanes(color, alpha, width, height)

	want := levelLength(bm.Format, width, height)
	if f, ok := blockFormat(bm.Format); ok {
		data, err := o.Encoder(raster, width*4, width, height, f)
		if err != nil {
			return nil, err
		}
		if len(data) != want {
			return nil, fmt.Errorf("encoder returned %d bytes, want %d", len(data), want)
		}
		return data, nil
	}

	return rasterToBGR(raster, width, height, bm.Format == FormatRaster32), nil
}

// rasterToBGR converts a straight-alpha RGBA raster to BGR(A).
func rasterToBGR(src []byte, width, height int, withAlpha bool) []byte {
	bpp := 3
	if withAlpha {
		bpp = 4
	}
	out := make([]byte, width*height*bpp)
	for i := 0; i < width*height; i++ {
		d := out[i*bpp:]
		d[0] = src[i*4+2]
		d[1] = src[i*4+1]
		d[2] = src[i*4]
		if withAlpha {
			d[3] = src[i*4+3]
		}
	}
	return out
}
