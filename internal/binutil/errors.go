package binutil

import (
	"fmt"

	"github.com/woozymasta/dbpf/internal/errkind"
)

var (
	// ErrSizeOverflow indicates a size or dimension exceeds the field it is stored in.
	ErrSizeOverflow = fmt.Errorf("size overflow: %w", errkind.ErrRange)
	// ErrTruncated indicates a read ran past the end of the buffer.
	ErrTruncated = fmt.Errorf("unexpected end of data: %w", errkind.ErrFormat)
	// ErrOutOfRange indicates an absolute offset outside the buffer.
	ErrOutOfRange = fmt.Errorf("offset out of range: %w", errkind.ErrRange)
)
