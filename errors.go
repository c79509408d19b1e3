package dbpf

import (
	"fmt"

	"github.com/woozymasta/dbpf/internal/errkind"
)

// Error kinds. Every error returned by this module matches one of them with
// errors.Is.
var (
	// ErrFormat indicates malformed or unsupported data.
	ErrFormat = errkind.ErrFormat
	// ErrRange indicates a missing key or an offset outside declared bounds.
	ErrRange = errkind.ErrRange
	// ErrCompression indicates a QFS stream that cannot be inflated.
	ErrCompression = errkind.ErrCompression
)

var (
	// ErrNotFound indicates no live record carries the requested key.
	ErrNotFound = fmt.Errorf("dbpf: record not found: %w", errkind.ErrRange)
	// ErrEntryData indicates the record exists but its payload is missing or corrupt.
	ErrEntryData = fmt.Errorf("dbpf: record payload unreadable: %w", errkind.ErrFormat)
	// ErrSignature indicates the stream does not start with "DBPF".
	ErrSignature = fmt.Errorf("dbpf: bad signature: %w", errkind.ErrFormat)
	// ErrHeader indicates the fixed header could not be read.
	ErrHeader = fmt.Errorf("dbpf: malformed header: %w", errkind.ErrFormat)
	// ErrVersion indicates an archive or index version this package does not read.
	ErrVersion = fmt.Errorf("dbpf: unsupported version: %w", errkind.ErrFormat)
	// ErrIndexBounds indicates an index table outside the stream.
	ErrIndexBounds = fmt.Errorf("dbpf: index out of bounds: %w", errkind.ErrRange)
	// ErrDirectorySize indicates a compression directory that is not a whole number of records.
	ErrDirectorySize = fmt.Errorf("dbpf: malformed compression directory: %w", errkind.ErrFormat)
	// ErrNotTexture indicates an image load of a record that is not a texture.
	ErrNotTexture = fmt.Errorf("dbpf: record is not a texture: %w", errkind.ErrFormat)
	// ErrNoSource indicates an unchanged record with no source stream to copy from.
	ErrNoSource = fmt.Errorf("dbpf: no source stream: %w", errkind.ErrRange)
	// ErrSameTarget indicates a save target that is also the source stream.
	ErrSameTarget = fmt.Errorf("dbpf: save target is the source stream: %w", errkind.ErrRange)
	// ErrEncode indicates a pending texture failed to serialize.
	ErrEncode = fmt.Errorf("dbpf: encode texture failed: %w", errkind.ErrFormat)
	// ErrWrite indicates the save target rejected a write.
	ErrWrite = fmt.Errorf("dbpf: write failed: %w", errkind.ErrRange)
	// ErrOpenFile indicates the archive file could not be opened.
	ErrOpenFile = fmt.Errorf("dbpf: open file failed: %w", errkind.ErrRange)
	// ErrCreateFile indicates the archive file could not be written.
	ErrCreateFile = fmt.Errorf("dbpf: create file failed: %w", errkind.ErrRange)
)
