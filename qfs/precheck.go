package qfs

import "github.com/pierrec/lz4/v4"

const (
	// precheckMinSize is the input size below which the LZ4 pass is skipped.
	precheckMinSize = 1024
	// precheckSample is how much of the input the LZ4 pass looks at.
	precheckSample = 64 * 1024
	// precheckRatio is the LZ4 ratio above which an input is treated as incompressible.
	precheckRatio = 0.97
)

// TryCompress runs Compress unless a fast LZ4 pass over a leading sample shows
// the input will not shrink. Like Compress, a nil result means "store raw".
// LZ4 needs 4-byte matches, so input built from 3-byte repeats is rejected
// here even though Compress would shrink it.
func TryCompress(src []byte, prefixLength bool) []byte {
	if !Compressible(src) {
		return nil
	}
	return Compress(src, prefixLength)
}

// Compressible reports whether an LZ4 block pass over the first 64 KiB of src
// saves at least a few percent. Small inputs always report true.
func Compressible(src []byte) bool {
	if len(src) < precheckMinSize {
		return true
	}

	sample := src
	if len(sample) > precheckSample {
		sample = sample[:precheckSample]
	}

	buf := make([]byte, lz4.CompressBlockBound(len(sample)))
	n, err := lz4.CompressBlock(sample, buf, nil)
	if err != nil || n == 0 {
		return false
	}
	return float64(n) <= float64(len(sample))*precheckRatio
}
