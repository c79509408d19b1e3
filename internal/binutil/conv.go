// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/dbpf

package binutil

const (
	maxUint16 = int(^uint16(0))
	maxUint32 = uint64(^uint32(0))
	maxUint24 = 1<<24 - 1
)

// U32FromInt converts an int to a uint32.
func U32FromInt(n int) (uint32, error) {
	if n < 0 || uint64(n) > maxUint32 {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return uint32(n), nil
}

// U16FromInt converts an int to a uint16.
func U16FromInt(n int) (uint16, error) {
	if n < 0 || n > maxUint16 {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return uint16(n), nil
}

// U24FromInt checks that n fits a 24-bit length field.
func U24FromInt(n int) (uint32, error) {
	if n < 0 || n > maxUint24 {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return uint32(n), nil
}
