package qfs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/woozymasta/dbpf/internal/errkind"
)

func patternData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte((i*31 + 7) & 0xff)
	}
	return data
}

func randomData(n int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(rng.UintN(256))
	}
	return data
}

func TestCompressRoundTrip(t *testing.T) {
	t.Parallel()

	text := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200)
	mixed := append(randomData(4096, 1), randomData(4096, 1)...)

	tests := []struct {
		name   string
		data   []byte
		prefix bool
	}{
		{name: "pattern-128k", data: patternData(128 * 1024)},
		{name: "pattern-prefixed", data: patternData(5000), prefix: true},
		{name: "zeros", data: make([]byte, 300000)},
		{name: "text", data: text},
		{name: "long-range-repeat", data: mixed, prefix: true},
		{name: "odd-tail", data: append(bytes.Repeat([]byte{1, 2, 3, 4, 5}, 400), 9, 8, 7)},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			packed := Compress(tc.data, tc.prefix)
			if packed == nil {
				t.Fatalf("Compress returned store-raw for compressible input")
			}
			if len(packed) >= len(tc.data) {
				t.Fatalf("compressed %d bytes into %d", len(tc.data), len(packed))
			}
			if tc.prefix {
				if got := int(packed[0]) | int(packed[1])<<8 | int(packed[2])<<16 | int(packed[3])<<24; got != len(packed) {
					t.Fatalf("length prefix = %d, want %d", got, len(packed))
				}
			}

			out, err := Decompress(packed)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(out, tc.data) {
				t.Fatalf("round-trip mismatch")
			}
		})
	}
}

func TestCompressStoreRaw(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 5, 64, 300} {
		data := randomData(n, uint64(n)+11)
		packed := Compress(data, true)
		if packed == nil {
			continue
		}
		out, err := Decompress(packed)
		if err != nil {
			t.Fatalf("n=%d: Decompress: %v", n, err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("n=%d: round-trip mismatch", n)
		}
	}

	if Compress(nil, false) != nil {
		t.Fatalf("empty input should be stored raw")
	}
}

// copyStream builds a stream of prefix as literals followed by one back-reference.
func copyStream(prefix []byte, length, offset int) ([]byte, int) {
	size := len(prefix) + length
	e := &encoder{src: prefix, dst: []byte{0x10, MagicByte, byte(size >> 16), byte(size >> 8), byte(size)}}
	rest := e.emitLiterals(0, len(prefix))
	before := len(e.dst)
	e.dst = appendCopy(e.dst, prefix[len(prefix)-rest:], length, offset)
	opLen := len(e.dst) - before - rest
	return append(e.dst, 0xFC), opLen
}

func TestOpcodeBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		length int
		offset int
		opLen  int
	}{
		{name: "short-min", length: 3, offset: 1, opLen: 2},
		{name: "short-max", length: 10, offset: 1024, opLen: 2},
		{name: "length-11", length: 11, offset: 1024, opLen: 3},
		{name: "offset-1025", length: 10, offset: 1025, opLen: 3},
		{name: "medium-max", length: 67, offset: 16384, opLen: 3},
		{name: "length-68", length: 68, offset: 16384, opLen: 4},
		{name: "offset-16385", length: 67, offset: 16385, opLen: 4},
		{name: "long-max", length: 1028, offset: 131072, opLen: 4},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			prefix := randomData(tc.offset+2, uint64(tc.offset))
			stream, opLen := copyStream(prefix, tc.length, tc.offset)
			if opLen != tc.opLen {
				t.Fatalf("opcode length = %d, want %d", opLen, tc.opLen)
			}

			out, err := Decompress(stream)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}

			start := len(prefix) - tc.offset
			want := append([]byte(nil), prefix...)
			for i := 0; i < tc.length; i++ {
				want = append(want, want[start+i])
			}
			if !bytes.Equal(out, want) {
				t.Fatalf("decoded copy mismatch")
			}
		})
	}
}

func TestDecompressSelfOverlap(t *testing.T) {
	t.Parallel()

	// literal 'a' then copy 10 bytes from offset 1
	stream := []byte{0x10, 0xFB, 0, 0, 11, byte((10-3)<<2 | 1), 0, 'a', 0xFC}
	out, err := Decompress(stream)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if string(out) != "aaaaaaaaaaa" {
		t.Fatalf("got %q", out)
	}
}

func TestDecompressErrors(t *testing.T) {
	t.Parallel()

	packed := Compress(patternData(8192), false)
	if packed == nil {
		t.Fatal("Compress returned store-raw")
	}

	bigger := append([]byte(nil), packed...)
	bigger[4]++
	smaller := append([]byte(nil), packed...)
	smaller[3]--

	tests := []struct {
		name    string
		data    []byte
		wantErr error
		kind    error
	}{
		{name: "no-magic", data: []byte{1, 2, 3, 4, 5, 6, 7, 8}, wantErr: ErrMagic, kind: errkind.ErrFormat},
		{name: "empty", data: nil, wantErr: ErrMagic, kind: errkind.ErrCompression},
		{name: "short-header", data: []byte{0x10, 0xFB, 0}, wantErr: ErrTruncated, kind: errkind.ErrFormat},
		{name: "truncated", data: packed[:len(packed)/2], wantErr: ErrTruncated, kind: errkind.ErrFormat},
		{name: "size-too-big", data: bigger, wantErr: ErrSizeMismatch, kind: errkind.ErrCompression},
		{name: "size-too-small", data: smaller, wantErr: ErrSizeMismatch, kind: errkind.ErrCompression},
		{name: "bad-offset", data: []byte{0x10, 0xFB, 0, 0, 3, 0x00, 0x05, 0xFC}, wantErr: ErrBadOffset, kind: errkind.ErrCompression},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decompress(tc.data)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected kind %v, got %v", tc.kind, err)
			}
		})
	}
}

func TestHeaderHelpers(t *testing.T) {
	t.Parallel()

	data := patternData(70000)
	for _, prefix := range []bool{false, true} {
		packed := Compress(data, prefix)
		if !HasMagic(packed) {
			t.Fatalf("prefix=%v: HasMagic = false", prefix)
		}
		size, err := UncompressedSize(packed)
		if err != nil || size != len(data) {
			t.Fatalf("prefix=%v: UncompressedSize = %d, %v", prefix, size, err)
		}
	}

	if HasMagic(data) {
		t.Fatalf("HasMagic on raw data")
	}
}

func TestPrefixReadsAsMagic(t *testing.T) {
	t.Parallel()

	// 568 full literal chunks, one 76-byte chunk and a 1-byte terminal give a
	// 0xFB10-byte stream whose prefix starts 10 FB.
	data := randomData(63693, 11)
	e := &encoder{src: data, dst: []byte{0, 0, 0, 0, 0x10, MagicByte, 0x00, 0xF8, 0xCD}}
	rest := e.emitLiterals(0, len(data))
	e.dst = append(e.dst, byte(0xFC+rest))
	e.dst = append(e.dst, data[len(data)-rest:]...)
	if len(e.dst) != 0xFB10 {
		t.Fatalf("stream length = %#x, want 0xFB10", len(e.dst))
	}
	binary.LittleEndian.PutUint32(e.dst, uint32(len(e.dst)))
	if e.dst[0] != 0x10 || e.dst[1] != MagicByte {
		t.Fatalf("prefix bytes = % x", e.dst[:2])
	}

	size, err := UncompressedSize(e.dst)
	if err != nil || size != len(data) {
		t.Fatalf("UncompressedSize = %d, %v; want %d", size, err, len(data))
	}
	out, err := Decompress(e.dst)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestCompressShortRepeats(t *testing.T) {
	t.Parallel()

	// 3-byte groups each repeated once: only 3-byte matches exist.
	seed := randomData(8196/2, 17)
	data := make([]byte, 0, 8196)
	for i := 0; i+3 <= len(seed); i += 3 {
		data = append(data, seed[i:i+3]...)
		data = append(data, seed[i:i+3]...)
	}

	packed := Compress(data, true)
	if packed == nil {
		t.Fatalf("short-repeat data stored raw")
	}
	if len(packed) >= len(data) {
		t.Fatalf("packed %d bytes, input %d", len(packed), len(data))
	}
	out, err := Decompress(packed)
	if err != nil || !bytes.Equal(out, data) {
		t.Fatalf("round-trip failed: %v", err)
	}
}

func TestTryCompress(t *testing.T) {
	t.Parallel()

	if Compressible(randomData(64*1024, 3)) {
		t.Fatalf("random data reported compressible")
	}
	if TryCompress(randomData(64*1024, 3), true) != nil {
		t.Fatalf("random data should be stored raw")
	}

	data := patternData(64 * 1024)
	packed := TryCompress(data, true)
	if packed == nil {
		t.Fatalf("pattern data stored raw")
	}
	out, err := Decompress(packed)
	if err != nil || !bytes.Equal(out, data) {
		t.Fatalf("TryCompress round-trip failed: %v", err)
	}
}

func BenchmarkCompress(b *testing.B) {
	data := append(patternData(256*1024), randomData(64*1024, 5)...)

	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for b.Loop() {
		if Compress(data, true) == nil {
			b.Fatal("store-raw")
		}
	}
}

func BenchmarkDecompress(b *testing.B) {
	data := patternData(256 * 1024)
	packed := Compress(data, true)

	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for b.Loop() {
		if _, err := Decompress(packed); err != nil {
			b.Fatalf("decompress: %v", err)
		}
	}
}
