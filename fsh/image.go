package fsh

import "fmt"

// Signature is the magic at the start of every container.
const Signature = "SHPI"

const (
	headerSize      = 16
	dirEntrySize    = 8
	entryHeaderSize = 16
)

// DirEntry is one directory record: a 4-byte name and the absolute offset of
// the entry header.
type DirEntry struct {
	Name   [4]byte
	Offset uint32
}

// Image is a parsed or under-construction texture container.
type Image struct {
	// Family is the 4-byte directory id from the header (e.g. "G264").
	Family [4]byte
	// Size is the total byte size recorded in the header of a parsed container.
	Size uint32
	// Directory holds the records read by Decode. Encode writes a fresh
	// directory from the bitmaps and leaves this field alone.
	Directory []DirEntry

	bitmaps []*Bitmap
}

// New returns an empty image with the given family id.
func New(family string) *Image {
	img := &Image{}
	copy(img.Family[:], family)
	return img
}

// Len returns the number of bitmaps.
func (img *Image) Len() int { return len(img.bitmaps) }

// Bitmaps returns the bitmaps in directory order.
func (img *Image) Bitmaps() []*Bitmap { return img.bitmaps }

// Bitmap returns the bitmap at index i.
func (img *Image) Bitmap(i int) (*Bitmap, error) {
	if i < 0 || i >= len(img.bitmaps) {
		return nil, fmt.Errorf("%w: %d of %d", ErrBitmapIndex, i, len(img.bitmaps))
	}
	return img.bitmaps[i], nil
}

// Add appends a bitmap. The image takes ownership of its planes.
func (img *Image) Add(bm *Bitmap) {
	img.bitmaps = append(img.bitmaps, bm)
}
