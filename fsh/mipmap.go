package fsh

import "github.com/woozymasta/dbpf/internal/binutil"

// maxMipCount is the largest count the top nibble of misc word 4 can carry.
const maxMipCount = 15

// mipDimension calculates the dimension of a mipmap level.
func mipDimension(base, level int) int {
	result := base >> level
	if result < 1 {
		return 1
	}

	return result
}

// mipDivisible reports whether both dimensions halve cleanly count times.
func mipDivisible(width, height, count int) bool {
	if count < 0 || count > maxMipCount {
		return false
	}
	step := 1 << count
	return width%step == 0 && height%step == 0
}

// chainLengths returns the payload length of levels 0..count, once with each
// level padded to 16 bytes and once padded only after the final level.
func chainLengths(f Format, width, height, count int) (padded, packed int) {
	for level := 0; level <= count; level++ {
		n := levelLength(f, mipDimension(width, level), mipDimension(height, level))
		padded += n + binutil.PadLen(n, 16)
		packed += n
	}
	packed += binutil.PadLen(packed, 16)

	return padded, packed
}

// detectMips validates the mip count advertised in misc word 4 against the
// bytes available for the pixel section. It returns 0 when the chain does not
// fit either padding layout.
func detectMips(f Format, width, height int, misc3 uint16, avail int) (count int, packed bool) {
	if misc3&0x0FFF != 0 {
		return 0, false
	}
	count = int(misc3 >> 12)
	if count == 0 || !mipDivisible(width, height, count) {
		return 0, false
	}

	paddedLen, packedLen := chainLengths(f, width, height, count)
	switch avail {
	case paddedLen:
		return count, false
	case packedLen:
		return count, true
	default:
		return 0, false
	}
}
