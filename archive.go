package dbpf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/woozymasta/dbpf/fsh"
	"github.com/woozymasta/dbpf/internal/binutil"
	"github.com/woozymasta/dbpf/qfs"
)

// Archive is an open DBPF archive. It is not safe for concurrent use: every
// read seeks the single source stream.
type Archive struct {
	src     io.ReadSeeker
	srcSize int64
	path    string // set by OpenFile

	header    Header
	entries   []*Entry
	directory []DirectoryEntry
	images    map[*Entry]*fsh.Image
	dirty     bool

	logger     *slog.Logger
	encodeOpts *fsh.EncodeOptions
	now        func() time.Time
	rename     func(oldpath, newpath string) error
}

func newArchive(opts []Option) *Archive {
	a := &Archive{images: make(map[*Entry]*fsh.Image)}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.rename = os.Rename
	return a
}

// New returns an empty archive with no source stream.
func New(opts ...Option) *Archive {
	a := newArchive(opts)
	// #nosec G115 -- unix seconds fit 32 bits until 2106.
	ts := uint32(a.now().Unix())
	a.header = Header{
		MajorVersion:      1,
		IndexMajorVersion: IndexMajorVersion,
		Created:           ts,
		Modified:          ts,
	}
	return a
}

// Open reads the header, index and compression directory from r. The archive
// takes ownership of r and closes it on Close when r is an io.Closer.
func Open(r io.ReadSeeker, opts ...Option) (*Archive, error) {
	a := newArchive(opts)
	if err := a.load(r); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenFile opens the archive at path.
func OpenFile(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	a, err := Open(f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	a.path = path
	return a, nil
}

func (a *Archive) load(r io.ReadSeeker) error {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHeader, err)
	}
	a.src, a.srcSize = r, size

	buf, err := a.readAt(0, HeaderSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHeader, err)
	}
	if a.header, err = parseHeader(buf); err != nil {
		return err
	}

	count := int(a.header.IndexCount)
	need := uint64(count) * indexRecordSize
	if need > uint64(a.header.IndexSize) || uint64(a.header.IndexLocation)+need > uint64(size) {
		return fmt.Errorf("%w: %d records at %d (size %d, stream %d)",
			ErrIndexBounds, count, a.header.IndexLocation, a.header.IndexSize, size)
	}
	buf, err = a.readAt(int64(a.header.IndexLocation), int(need))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexBounds, err)
	}
	if a.entries, err = parseIndex(buf, count); err != nil {
		return err
	}

	a.directory = nil
	a.images = make(map[*Entry]*fsh.Image)
	a.dirty = false
	if d := a.findType(TypeCompressionDirectory); d != nil {
		buf, err := a.stored(d)
		if err != nil {
			return err
		}
		if a.directory, err = parseDirectory(buf); err != nil {
			return err
		}
		listed := make(map[TGI]bool, len(a.directory))
		for _, rec := range a.directory {
			listed[rec.TGI] = true
		}
		for _, e := range a.entries {
			e.Compressed = listed[e.TGI]
		}
	}

	a.logger.Debug("opened archive",
		slog.Int("entries", len(a.entries)),
		slog.Int("compressed", len(a.directory)),
		slog.Int64("size", size))
	return nil
}

// Close releases the source stream.
func (a *Archive) Close() error {
	src := a.src
	a.src = nil
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Header returns the header read from the source, or the one built by New.
func (a *Archive) Header() Header { return a.header }

// Modified returns the last-modified timestamp recorded in the header.
func (a *Archive) Modified() time.Time {
	return time.Unix(int64(a.header.Modified), 0)
}

// Dirty reports whether records were added or removed since the archive was
// opened or last saved.
func (a *Archive) Dirty() bool { return a.dirty }

// CompressionDirectory returns the compression directory read from the source.
func (a *Archive) CompressionDirectory() []DirectoryEntry { return a.directory }

// Entries returns the live records in index order.
func (a *Archive) Entries() []*Entry {
	out := make([]*Entry, 0, len(a.entries))
	for _, e := range a.entries {
		if e.State != Deleted {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the first live record carrying tgi.
func (a *Archive) Find(tgi TGI) (*Entry, error) {
	e := a.find(tgi)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, tgi)
	}
	return e, nil
}

func (a *Archive) find(tgi TGI) *Entry {
	for _, e := range a.entries {
		if e.State != Deleted && e.TGI == tgi {
			return e
		}
	}
	return nil
}

// findType returns the first live record of type typ. Group and instance
// of the compression directory vary between writers.
func (a *Archive) findType(typ uint32) *Entry {
	for _, e := range a.entries {
		if e.State != Deleted && e.Type == typ {
			return e
		}
	}
	return nil
}

// LoadImage parses the texture stored under tgi. The result is cached and
// shared by later calls until the record is removed.
func (a *Archive) LoadImage(tgi TGI) (*fsh.Image, error) {
	e, err := a.Find(tgi)
	if err != nil {
		return nil, err
	}
	if img, ok := a.images[e]; ok {
		return img, nil
	}
	if e.Type != TypeTexture {
		return nil, fmt.Errorf("%w: %s", ErrNotTexture, tgi)
	}

	data, err := a.payload(e)
	if err != nil {
		return nil, err
	}
	img, err := fsh.DecodeWithOptions(data, &fsh.DecodeOptions{Logger: a.logger})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEntryData, tgi, err)
	}

	a.images[e] = img
	a.logger.Debug("loaded texture",
		slog.String("tgi", tgi.String()),
		slog.Int("bitmaps", img.Len()))
	return img, nil
}

// ReadEntry returns the bytes stored for tgi, compressed or not. New textures
// are serialized on demand.
func (a *Archive) ReadEntry(tgi TGI) ([]byte, error) {
	e, err := a.Find(tgi)
	if err != nil {
		return nil, err
	}
	data, err := a.payload(e)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(data), nil
}

// ReadEntryData returns the payload of tgi, inflated when it is a QFS stream.
func (a *Archive) ReadEntryData(tgi TGI) ([]byte, error) {
	data, err := a.ReadEntry(tgi)
	if err != nil {
		return nil, err
	}
	if !compressedPayload(data) {
		return data, nil
	}
	out, err := qfs.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEntryData, tgi, err)
	}
	return out, nil
}

// Add appends a New texture record. The image is serialized on save, QFS
// compressed when compress is set and that makes it smaller.
func (a *Archive) Add(img *fsh.Image, tgi TGI, compress bool) *Entry {
	e := &Entry{TGI: tgi, State: New, compress: compress}
	a.entries = append(a.entries, e)
	a.images[e] = img
	a.dirty = true
	return e
}

// AddData appends a New record with a raw payload. With compress set the
// payload is stored QFS-compressed when that makes it smaller.
func (a *Archive) AddData(tgi TGI, data []byte, compress bool) *Entry {
	stored := bytes.Clone(data)
	if compress {
		if packed := a.encodeOptions().Pack(data, true); packed != nil {
			stored = packed
		}
	}
	e := &Entry{TGI: tgi, State: New, data: stored, Compressed: compressedPayload(stored)}
	a.entries = append(a.entries, e)
	a.dirty = true
	return e
}

// Remove marks the first live record carrying tgi as Deleted and drops its
// cached image.
func (a *Archive) Remove(tgi TGI) error {
	e, err := a.Find(tgi)
	if err != nil {
		return err
	}
	e.State = Deleted
	delete(a.images, e)
	a.dirty = true
	return nil
}

// payload returns the bytes e occupies on disk.
func (a *Archive) payload(e *Entry) ([]byte, error) {
	if e.State != New {
		return a.stored(e)
	}
	if e.data != nil {
		return e.data, nil
	}

	img, ok := a.images[e]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no pending payload", ErrEntryData, e.TGI)
	}
	opts := a.encodeOptions()
	data, err := img.Encode(&opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEncode, e.TGI, err)
	}
	if e.compress {
		if packed := opts.Pack(data, true); packed != nil {
			data = packed
		}
	}
	return data, nil
}

// encodeOptions copies the configured options with container compression off;
// records are compressed whole, with the length prefix.
func (a *Archive) encodeOptions() fsh.EncodeOptions {
	var opts fsh.EncodeOptions
	if a.encodeOpts != nil {
		opts = *a.encodeOpts
	}
	opts.Compress = false
	return opts
}

// stored reads the source byte range of e.
func (a *Archive) stored(e *Entry) ([]byte, error) {
	if a.src == nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEntryData, e.TGI, ErrNoSource)
	}
	if int64(e.Location)+int64(e.Size) > a.srcSize {
		return nil, fmt.Errorf("%w: %s: %d bytes at %d outside %d",
			ErrEntryData, e.TGI, e.Size, e.Location, a.srcSize)
	}
	data, err := a.readAt(int64(e.Location), int(e.Size))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEntryData, e.TGI, err)
	}
	return data, nil
}

func (a *Archive) readAt(off int64, n int) ([]byte, error) {
	if _, err := a.src.Seek(off, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(a.src, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: %v", binutil.ErrTruncated, err)
	}
	return buf, nil
}

// compressedPayload reports whether a stored payload is a QFS stream rather
// than a raw image container.
func compressedPayload(data []byte) bool {
	if bytes.HasPrefix(data, []byte(fsh.Signature)) {
		return false
	}
	return qfs.HasMagic(data)
}
