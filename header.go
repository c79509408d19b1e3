package dbpf

import (
	"fmt"

	"github.com/woozymasta/dbpf/internal/binutil"
)

// Signature is the magic at the start of every archive.
const Signature = "DBPF"

const (
	// HeaderSize is the length of the fixed header region.
	HeaderSize = 96
	// IndexMajorVersion is the only index layout this package reads.
	IndexMajorVersion = 7

	indexRecordSize     = 20
	directoryRecordSize = 16
	reservedOffset      = 60
)

// Header is the fixed archive header. Hole fields and the reserved tail are
// kept verbatim.
type Header struct {
	MajorVersion      uint32
	MinorVersion      uint32
	UserMajorVersion  uint32
	UserMinorVersion  uint32
	Flags             uint32
	Created           uint32
	Modified          uint32
	IndexMajorVersion uint32
	IndexCount        uint32
	IndexLocation     uint32
	IndexSize         uint32
	HoleCount         uint32
	HoleLocation      uint32
	HoleSize          uint32
	Reserved          [HeaderSize - reservedOffset]byte
}

func parseHeader(buf []byte) (Header, error) {
	var h Header
	r := binutil.NewReader(buf)
	sig, err := r.Fixed4()
	if err != nil {
		return h, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	if string(sig[:]) != Signature {
		return h, fmt.Errorf("%w: %q", ErrSignature, sig[:])
	}

	fields := []*uint32{
		&h.MajorVersion, &h.MinorVersion, &h.UserMajorVersion, &h.UserMinorVersion,
		&h.Flags, &h.Created, &h.Modified, &h.IndexMajorVersion,
		&h.IndexCount, &h.IndexLocation, &h.IndexSize,
		&h.HoleCount, &h.HoleLocation, &h.HoleSize,
	}
	for _, f := range fields {
		if *f, err = r.U32(); err != nil {
			return h, fmt.Errorf("%w: %v", ErrHeader, err)
		}
	}
	tail, err := r.Bytes(len(h.Reserved))
	if err != nil {
		return h, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	copy(h.Reserved[:], tail)

	if h.MajorVersion != 1 {
		return h, fmt.Errorf("%w: archive %d.%d", ErrVersion, h.MajorVersion, h.MinorVersion)
	}
	if h.IndexMajorVersion != IndexMajorVersion {
		return h, fmt.Errorf("%w: index %d", ErrVersion, h.IndexMajorVersion)
	}
	return h, nil
}

func (h *Header) marshal() []byte {
	w := binutil.NewWriter(HeaderSize)
	_, _ = w.Write([]byte(Signature))
	for _, v := range []uint32{
		h.MajorVersion, h.MinorVersion, h.UserMajorVersion, h.UserMinorVersion,
		h.Flags, h.Created, h.Modified, h.IndexMajorVersion,
		h.IndexCount, h.IndexLocation, h.IndexSize,
		h.HoleCount, h.HoleLocation, h.HoleSize,
	} {
		w.U32(v)
	}
	_, _ = w.Write(h.Reserved[:])
	return w.Bytes()
}

func parseIndex(buf []byte, count int) ([]*Entry, error) {
	r := binutil.NewReader(buf)
	entries := make([]*Entry, 0, count)
	for i := 0; i < count; i++ {
		e := &Entry{}
		for _, f := range []*uint32{&e.Type, &e.Group, &e.Instance, &e.Location, &e.Size} {
			v, err := r.U32()
			if err != nil {
				return nil, fmt.Errorf("%w: record %d: %v", ErrIndexBounds, i, err)
			}
			*f = v
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type indexRecord struct {
	TGI
	location uint32
	size     uint32
}

func marshalIndex(records []indexRecord) []byte {
	w := binutil.NewWriter(len(records) * indexRecordSize)
	for _, rec := range records {
		w.U32(rec.Type)
		w.U32(rec.Group)
		w.U32(rec.Instance)
		w.U32(rec.location)
		w.U32(rec.size)
	}
	return w.Bytes()
}

func parseDirectory(buf []byte) ([]DirectoryEntry, error) {
	if len(buf)%directoryRecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrDirectorySize, len(buf))
	}
	r := binutil.NewReader(buf)
	dir := make([]DirectoryEntry, 0, len(buf)/directoryRecordSize)
	for r.Len() > 0 {
		var d DirectoryEntry
		for _, f := range []*uint32{&d.Type, &d.Group, &d.Instance, &d.UncompressedSize} {
			v, err := r.U32()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDirectorySize, err)
			}
			*f = v
		}
		dir = append(dir, d)
	}
	return dir, nil
}

func marshalDirectory(dir []DirectoryEntry) []byte {
	w := binutil.NewWriter(len(dir) * directoryRecordSize)
	for _, d := range dir {
		w.U32(d.Type)
		w.U32(d.Group)
		w.U32(d.Instance)
		w.U32(d.UncompressedSize)
	}
	return w.Bytes()
}
