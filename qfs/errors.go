package qfs

import (
	"fmt"

	"github.com/woozymasta/dbpf/internal/errkind"
)

var (
	// ErrMagic indicates the buffer does not start with a QFS header.
	ErrMagic = fmt.Errorf("qfs: missing compression magic: %w, %w", errkind.ErrFormat, errkind.ErrCompression)
	// ErrTruncated indicates the opcode stream ended before the declared output length.
	ErrTruncated = fmt.Errorf("qfs: compressed stream truncated: %w", errkind.ErrFormat)
	// ErrSizeMismatch indicates the decoded length disagrees with the header.
	ErrSizeMismatch = fmt.Errorf("qfs: decompressed size mismatch: %w", errkind.ErrCompression)
	// ErrBadOffset indicates a back-reference before the start of the output.
	ErrBadOffset = fmt.Errorf("qfs: copy offset before start of output: %w", errkind.ErrCompression)
)
