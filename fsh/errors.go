package fsh

import (
	"fmt"

	"github.com/woozymasta/dbpf/internal/errkind"
)

var (
	// ErrSignature indicates the container does not start with "SHPI".
	ErrSignature = fmt.Errorf("fsh: bad signature: %w", errkind.ErrFormat)
	// ErrHeader indicates a malformed container header or directory.
	ErrHeader = fmt.Errorf("fsh: malformed header: %w", errkind.ErrFormat)
	// ErrEntryHeader indicates a malformed bitmap entry header.
	ErrEntryHeader = fmt.Errorf("fsh: malformed entry header: %w", errkind.ErrFormat)
	// ErrUnsupportedFormat indicates one of the known raw formats this package does not decode.
	ErrUnsupportedFormat = fmt.Errorf("fsh: unsupported bitmap format: %w", errkind.ErrFormat)
	// ErrUnknownFormat indicates an entry code that is not a bitmap format.
	ErrUnknownFormat = fmt.Errorf("fsh: unknown bitmap format: %w", errkind.ErrFormat)
	// ErrReadPayload indicates the bitmap payload could not be read.
	ErrReadPayload = fmt.Errorf("fsh: reading bitmap payload failed: %w", errkind.ErrFormat)
	// ErrDecompress indicates a QFS-compressed container or entry failed to inflate.
	ErrDecompress = fmt.Errorf("fsh: decompress failed: %w", errkind.ErrCompression)
	// ErrPayloadSize indicates a decompressed entry is shorter than its bitmap.
	ErrPayloadSize = fmt.Errorf("fsh: decompressed payload size mismatch: %w", errkind.ErrCompression)
	// ErrAttachment indicates a malformed attachment.
	ErrAttachment = fmt.Errorf("fsh: malformed attachment: %w", errkind.ErrFormat)
	// ErrBitmapIndex indicates a bitmap index outside the image.
	ErrBitmapIndex = fmt.Errorf("fsh: bitmap index out of range: %w", errkind.ErrRange)
	// ErrInvalidBitmap indicates a bitmap that cannot be serialized.
	ErrInvalidBitmap = fmt.Errorf("fsh: invalid bitmap: %w", errkind.ErrFormat)
	// ErrInvalidMipCount indicates a mip count the dimensions cannot carry.
	ErrInvalidMipCount = fmt.Errorf("fsh: invalid mip count: %w", errkind.ErrRange)
	// ErrAttachmentTooLarge indicates an attachment payload that cannot be stored.
	ErrAttachmentTooLarge = fmt.Errorf("fsh: attachment too large: %w", errkind.ErrRange)
	// ErrUnsupportedAttachment indicates an attachment code that cannot be written.
	ErrUnsupportedAttachment = fmt.Errorf("fsh: unsupported attachment code: %w", errkind.ErrFormat)
	// ErrSectionOverflow indicates a section longer than the 24-bit length field.
	ErrSectionOverflow = fmt.Errorf("fsh: section too long: %w", errkind.ErrRange)
	// ErrEncodeLevel indicates a mip level failed to encode.
	ErrEncodeLevel = fmt.Errorf("fsh: encode level failed: %w", errkind.ErrFormat)
	// ErrOpenFile indicates the container file could not be read.
	ErrOpenFile = fmt.Errorf("fsh: open file failed: %w", errkind.ErrRange)
	// ErrCreateFile indicates the container file could not be written.
	ErrCreateFile = fmt.Errorf("fsh: create file failed: %w", errkind.ErrRange)
)
