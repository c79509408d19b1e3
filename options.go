package dbpf

import (
	"log/slog"
	"time"

	"github.com/woozymasta/dbpf/fsh"
)

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger for open, load and save records.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WithEncodeOptions sets the options used to serialize new textures on save.
// The container-level Compress flag is ignored; compression is chosen per
// record by Add and AddData. Precheck also gates record compression.
func WithEncodeOptions(opts *fsh.EncodeOptions) Option {
	return func(a *Archive) {
		a.encodeOpts = opts
	}
}

// WithClock sets the time source for header timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Archive) {
		a.now = now
	}
}
