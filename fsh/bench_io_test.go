package fsh

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

// benchImage builds a deterministic image used by IO benchmarks.
func benchImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Mixed low/high frequencies.
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x*7 + y*3) & 0xff),        //nolint:gosec // bounded by mask
				G: uint8((x*13 + y*5) & 0xff),       //nolint:gosec // bounded by mask
				B: uint8((x ^ y ^ (x >> 2)) & 0xff), //nolint:gosec // bounded by mask
				A: 255,
			})
		}
	}
	return img
}

// benchContainer wraps one bitmap of the given format with a full mip chain.
func benchContainer(b *testing.B, format Format, mips int) *Image {
	b.Helper()

	bm, err := NewBitmap(benchImage(512, 512), format)
	if err != nil {
		b.Fatalf("new bitmap: %v", err)
	}
	bm.SetName("bnch")
	bm.MipCount = mips

	img := New("G264")
	img.Add(bm)
	return img
}

func BenchmarkEncodeDXT1Mips(b *testing.B) {
	img := benchContainer(b, FormatDXT1, 4)

	b.ReportAllocs()
	b.SetBytes(512 * 512 * 4)
	b.ResetTimer()

	for b.Loop() {
		if _, err := img.Encode(nil); err != nil {
			b.Fatalf("encode: %v", err)
		}
	}
}

func BenchmarkEncodeRaster32Compressed(b *testing.B) {
	img := benchContainer(b, FormatRaster32, 0)
	opts := &EncodeOptions{Compress: true}

	b.ReportAllocs()
	b.SetBytes(512 * 512 * 4)
	b.ResetTimer()

	for b.Loop() {
		if _, err := img.Encode(opts); err != nil {
			b.Fatalf("encode: %v", err)
		}
	}
}

func BenchmarkReadFile(b *testing.B) {
	for _, tc := range []struct {
		name   string
		format Format
		opts   *EncodeOptions
	}{
		{name: "DXT3", format: FormatDXT3},
		{name: "Raster32-QFS", format: FormatRaster32, opts: &EncodeOptions{Compress: true}},
	} {
		b.Run(tc.name, func(b *testing.B) {
			path := filepath.Join(b.TempDir(), "bench.fsh")
			if err := WriteFile(benchContainer(b, tc.format, 0), path, tc.opts); err != nil {
				b.Fatalf("prepare input file: %v", err)
			}

			b.ReportAllocs()
			b.SetBytes(512 * 512 * 4)
			b.ResetTimer()

			for b.Loop() {
				if _, err := ReadFile(path); err != nil {
					b.Fatalf("read: %v", err)
				}
			}
		})
	}
}
