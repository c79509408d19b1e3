package dbpf

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/woozymasta/dbpf/internal/binutil"
	"github.com/woozymasta/dbpf/qfs"
)

// Save writes the archive to w: live records in index order, a rebuilt
// compression directory when any payload is QFS-compressed, the index and
// finally the header. Deleted records are dropped from the archive once the
// write succeeds. w must not be the source stream or another handle on the
// source file.
func (a *Archive) Save(w io.WriteSeeker) error {
	if a.src != nil && sameTarget(w, a.src) {
		return ErrSameTarget
	}
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if _, err := w.Write(make([]byte, HeaderSize)); err != nil {
		return fmt.Errorf("%w: header: %v", ErrWrite, err)
	}

	pos := HeaderSize
	kept := make([]*Entry, 0, len(a.entries))
	var (
		index []indexRecord
		dir   []DirectoryEntry
	)
	for _, e := range a.entries {
		if e.State == Deleted {
			continue
		}
		kept = append(kept, e)
		if e.Type == TypeCompressionDirectory {
			continue
		}

		data, err := a.payload(e)
		if err != nil {
			return err
		}
		rec, err := a.appendRecord(w, e.TGI, data, pos)
		if err != nil {
			return err
		}
		index = append(index, rec)
		pos += len(data)

		if compressedPayload(data) {
			n, err := qfs.UncompressedSize(data)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrEntryData, e.TGI, err)
			}
			// #nosec G115 -- 24-bit size field.
			dir = append(dir, DirectoryEntry{TGI: e.TGI, UncompressedSize: uint32(n)})
		}
	}

	if len(dir) > 0 {
		data := marshalDirectory(dir)
		rec, err := a.appendRecord(w, CompressionDirectoryTGI, data, pos)
		if err != nil {
			return err
		}
		index = append(index, rec)
		pos += len(data)
	}

	table := marshalIndex(index)
	if _, err := w.Write(table); err != nil {
		return fmt.Errorf("%w: index: %v", ErrWrite, err)
	}

	h := a.header
	var err error
	if h.IndexCount, err = binutil.U32FromInt(len(index)); err != nil {
		return fmt.Errorf("%w: index count: %v", ErrWrite, err)
	}
	if h.IndexLocation, err = binutil.U32FromInt(pos); err != nil {
		return fmt.Errorf("%w: index location: %v", ErrWrite, err)
	}
	if h.IndexSize, err = binutil.U32FromInt(len(table)); err != nil {
		return fmt.Errorf("%w: index size: %v", ErrWrite, err)
	}
	// #nosec G115 -- unix seconds fit 32 bits until 2106.
	h.Modified = uint32(a.now().Unix())

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if _, err := w.Write(h.marshal()); err != nil {
		return fmt.Errorf("%w: header: %v", ErrWrite, err)
	}

	dropped := len(a.entries) - len(kept)
	a.entries = kept
	a.dirty = false
	a.logger.Debug("saved archive",
		slog.Int("records", len(index)),
		slog.Int("compressed", len(dir)),
		slog.Int("dropped", dropped),
		slog.Int("size", pos+len(table)))
	return nil
}

func (a *Archive) appendRecord(w io.Writer, tgi TGI, data []byte, pos int) (indexRecord, error) {
	loc, err := binutil.U32FromInt(pos)
	if err != nil {
		return indexRecord{}, fmt.Errorf("%w: %s location: %v", ErrWrite, tgi, err)
	}
	size, err := binutil.U32FromInt(len(data))
	if err != nil {
		return indexRecord{}, fmt.Errorf("%w: %s size: %v", ErrWrite, tgi, err)
	}
	if _, err := w.Write(data); err != nil {
		return indexRecord{}, fmt.Errorf("%w: %s: %v", ErrWrite, tgi, err)
	}
	return indexRecord{TGI: tgi, location: loc, size: size}, nil
}

// SaveFile writes the archive to a temporary file next to path and renames
// it into place. When path is the archive's own source, the archive reopens
// it afterwards and pending records become Unchanged. If the rename fails the
// source is reopened and the archive stays dirty.
func (a *Archive) SaveFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dbpf-")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateFile, err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := a.Save(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrCreateFile, err)
	}

	replacing := a.path != "" && sameFile(a.path, path)
	if replacing {
		// Windows cannot rename over an open file.
		if err := a.Close(); err != nil {
			return fmt.Errorf("%w: %v", ErrCreateFile, err)
		}
	}
	if err := a.rename(tmpPath, path); err != nil {
		if replacing {
			if rerr := a.reopenSource(); rerr != nil {
				return fmt.Errorf("%w: %v (reopen: %v)", ErrCreateFile, err, rerr)
			}
		}
		return fmt.Errorf("%w: %v", ErrCreateFile, err)
	}
	success = true

	if !replacing {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	if err := a.load(f); err != nil {
		_ = f.Close()
		return err
	}
	a.path = path
	return nil
}

// reopenSource restores the source closed before a failed rename. Record
// offsets still match the unchanged file, so pending records survive.
func (a *Archive) reopenSource() error {
	f, err := os.Open(a.path)
	if err != nil {
		return err
	}
	a.src = f
	a.dirty = true
	return nil
}

// sameTarget reports whether w and src are the same stream or two handles on
// the same file.
func sameTarget(w io.WriteSeeker, src io.ReadSeeker) bool {
	if any(w) == any(src) {
		return true
	}
	wf, ok := w.(*os.File)
	if !ok {
		return false
	}
	sf, ok := src.(*os.File)
	if !ok {
		return false
	}
	wi, err := wf.Stat()
	if err != nil {
		return false
	}
	si, err := sf.Stat()
	if err != nil {
		return false
	}
	return os.SameFile(wi, si)
}

func sameFile(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}
