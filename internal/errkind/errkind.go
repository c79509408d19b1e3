// Package errkind holds the error categories shared by every layer of the
// module. Concrete sentinels wrap one (or more) of these so callers can branch
// on the category with errors.Is.
package errkind

import "errors"

var (
	// ErrFormat marks malformed input: bad magic, truncated streams,
	// unsupported format codes, malformed headers.
	ErrFormat = errors.New("format error")
	// ErrRange marks lookups that fall outside declared bounds or keys that
	// are absent.
	ErrRange = errors.New("range error")
	// ErrCompression marks unrecognized compression framing or a
	// decompressed length that disagrees with its header.
	ErrCompression = errors.New("compression error")
)
