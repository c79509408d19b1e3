package dxt

import (
	"bytes"
	"errors"
	"testing"
)

func solidRaster(w, h int, r, g, b, a byte) []byte {
	raster := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		raster[i*4] = r
		raster[i*4+1] = g
		raster[i*4+2] = b
		raster[i*4+3] = a
	}
	return raster
}

func absDiff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestSolidRedVector(t *testing.T) {
	t.Parallel()

	raster := solidRaster(4, 4, 255, 0, 0, 255)
	data, err := Encode(raster, 16, 4, 4, DXT1)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := []byte{0x00, 0xF8, 0x00, 0xF8, 0, 0, 0, 0}
	if !bytes.Equal(data, want) {
		t.Fatalf("block = % x, want % x", data, want)
	}

	out, err := Decode(data, 4, 4, DXT1)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(out, raster) {
		t.Fatalf("decoded = % x", out)
	}
}

func TestSolidColorRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rgb   [3]byte
		exact bool
	}{
		{name: "white", rgb: [3]byte{255, 255, 255}, exact: true},
		{name: "black", rgb: [3]byte{0, 0, 0}, exact: true},
		{name: "blue", rgb: [3]byte{0, 0, 255}, exact: true},
		{name: "representable", rgb: [3]byte{0x84, 0x82, 0x10}, exact: true},
		{name: "arbitrary-1", rgb: [3]byte{13, 200, 77}},
		{name: "arbitrary-2", rgb: [3]byte{250, 3, 129}},
		{name: "arbitrary-3", rgb: [3]byte{66, 67, 68}},
	}

	for _, tc := range tests {
		tc := tc
		for _, format := range []Format{DXT1, DXT3} {
			format := format
			t.Run(tc.name+"-"+format.String(), func(t *testing.T) {
				t.Parallel()

				raster := solidRaster(8, 8, tc.rgb[0], tc.rgb[1], tc.rgb[2], 255)
				data, err := Encode(raster, 32, 8, 8, format)
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}
				out, err := Decode(data, 8, 8, format)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}

				// one 5:6:5 quantization step: 8 for 5-bit channels, 4 for green
				limits := [3]int{8, 4, 8}
				if tc.exact {
					limits = [3]int{}
				}
				for i := 0; i < 64; i++ {
					for ch := 0; ch < 3; ch++ {
						if d := absDiff(out[i*4+ch], tc.rgb[ch]); d > limits[ch] {
							t.Fatalf("pixel %d channel %d: got %d want %d", i, ch, out[i*4+ch], tc.rgb[ch])
						}
					}
					if out[i*4+3] != 255 {
						t.Fatalf("pixel %d alpha = %d", i, out[i*4+3])
					}
				}
			})
		}
	}
}

func TestTwoColorBlockExact(t *testing.T) {
	t.Parallel()

	raster := make([]byte, 64)
	for i := 0; i < 16; i++ {
		if (i+i/4)%2 == 0 {
			copy(raster[i*4:], []byte{255, 0, 0, 255})
		} else {
			copy(raster[i*4:], []byte{0, 0, 255, 255})
		}
	}

	for _, format := range []Format{DXT1, DXT3} {
		data, err := Encode(raster, 16, 4, 4, format)
		if err != nil {
			t.Fatalf("%s: Encode: %v", format, err)
		}
		out, err := Decode(data, 4, 4, format)
		if err != nil {
			t.Fatalf("%s: Decode: %v", format, err)
		}
		if !bytes.Equal(out, raster) {
			t.Fatalf("%s: two-color block not exact", format)
		}
	}
}

func TestDXT1PunchThrough(t *testing.T) {
	t.Parallel()

	raster := solidRaster(4, 4, 0, 255, 0, 255)
	for i := 0; i < 16; i += 2 {
		raster[i*4+3] = 0
	}

	data, err := Encode(raster, 16, 4, 4, DXT1)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data, 4, 4, DXT1)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	for i := 0; i < 16; i++ {
		if i%2 == 0 {
			if out[i*4+3] != 0 {
				t.Fatalf("pixel %d should be transparent", i)
			}
			continue
		}
		if !bytes.Equal(out[i*4:i*4+4], []byte{0, 255, 0, 255}) {
			t.Fatalf("pixel %d = % x", i, out[i*4:i*4+4])
		}
	}
}

func TestDXT3Alpha(t *testing.T) {
	t.Parallel()

	raster := solidRaster(4, 4, 255, 255, 255, 0)
	for i := 0; i < 16; i++ {
		raster[i*4+3] = byte(i<<4 | 0x0A) // low nibble is truncated
	}

	data, err := Encode(raster, 16, 4, 4, DXT3)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if data[0] != 0x10 {
		t.Fatalf("first alpha byte = %#x, want 0x10", data[0])
	}

	out, err := Decode(data, 4, 4, DXT3)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := 0; i < 16; i++ {
		if want := byte(i * 17); out[i*4+3] != want {
			t.Fatalf("pixel %d alpha = %d, want %d", i, out[i*4+3], want)
		}
	}
}

func TestDecodeEdgeDiscard(t *testing.T) {
	t.Parallel()

	raster := solidRaster(5, 3, 0, 0, 255, 255)
	data, err := Encode(raster, 20, 5, 3, DXT1)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) != 16 {
		t.Fatalf("encoded length = %d, want 16", len(data))
	}

	out, err := Decode(data, 5, 3, DXT1)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(out, raster) {
		t.Fatalf("edge decode mismatch")
	}
}

func TestEncodedLengthTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		w, h   int
		want   int
	}{
		{name: "dxt1-4x4", format: DXT1, w: 4, h: 4, want: 8},
		{name: "dxt1-5x7", format: DXT1, w: 5, h: 7, want: 32},
		{name: "dxt1-1x1", format: DXT1, w: 1, h: 1, want: 8},
		{name: "dxt3-4x4", format: DXT3, w: 4, h: 4, want: 16},
		{name: "dxt3-8x2", format: DXT3, w: 8, h: 2, want: 32},
		{name: "unknown", format: Format(9), w: 4, h: 4, want: -1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := EncodedLength(tc.format, tc.w, tc.h); got != tc.want {
				t.Fatalf("EncodedLength(%v,%d,%d) = %d, want %d", tc.format, tc.w, tc.h, got, tc.want)
			}
		})
	}
}

func TestCodecErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fn      func() error
		wantErr error
	}{
		{name: "decode-short", fn: func() error { _, err := Decode(make([]byte, 7), 4, 4, DXT1); return err }, wantErr: ErrShortData},
		{name: "decode-dims", fn: func() error { _, err := Decode(nil, 0, 4, DXT1); return err }, wantErr: ErrInvalidDimensions},
		{name: "decode-format", fn: func() error { _, err := Decode(make([]byte, 8), 4, 4, Format(0)); return err }, wantErr: ErrUnknownFormat},
		{name: "encode-short-raster", fn: func() error { _, err := Encode(make([]byte, 10), 16, 4, 4, DXT1); return err }, wantErr: ErrShortRaster},
		{name: "encode-stride", fn: func() error { _, err := Encode(make([]byte, 64), 8, 4, 4, DXT1); return err }, wantErr: ErrShortRaster},
		{name: "bcn-format", fn: func() error { _, err := BCN(nil)(make([]byte, 64), 16, 4, 4, Format(7)); return err }, wantErr: ErrUnknownFormat},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if err := tc.fn(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func BenchmarkEncodeDXT1(b *testing.B) {
	const size = 256
	raster := make([]byte, size*size*4)
	for i := range raster {
		raster[i] = byte((i*7 + i/1024) & 0xff)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(raster)))
	b.ResetTimer()

	for b.Loop() {
		if _, err := Encode(raster, size*4, size, size, DXT1); err != nil {
			b.Fatalf("encode: %v", err)
		}
	}
}
