package fsh

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"sort"

	"github.com/woozymasta/dbpf/dxt"
	"github.com/woozymasta/dbpf/internal/binutil"
	"github.com/woozymasta/dbpf/qfs"
)

// DecodeOptions configures container parsing.
type DecodeOptions struct {
	// Logger receives debug records for skipped attachments. Nil discards.
	Logger *slog.Logger
}

// ReadConfig reads the dimensions of the first bitmap without decoding pixel data.
func ReadConfig(path string) (image.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	data, err = inflate(data)
	if err != nil {
		return image.Config{}, err
	}

	r := binutil.NewReader(data)
	_, count, _, err := readHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	if count == 0 {
		return image.Config{}, fmt.Errorf("%w: no bitmaps", ErrBitmapIndex)
	}
	if err := r.Seek(headerSize + 4); err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	off, err := r.U32()
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	if err := r.Seek(int(off) + 4); err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrEntryHeader, err)
	}
	w, err := r.U16()
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrEntryHeader, err)
	}
	h, err := r.U16()
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrEntryHeader, err)
	}

	return image.Config{
		Width:      int(w),
		Height:     int(h),
		ColorModel: color.NRGBAModel,
	}, nil
}

// ReadFile reads and parses a container file.
func ReadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	return Decode(data)
}

// Decode parses a container, inflating it first when it is QFS-compressed.
func Decode(data []byte) (*Image, error) {
	return DecodeWithOptions(data, nil)
}

// DecodeWithOptions parses a container with the given options. Nil opts uses defaults.
// Any entry failure aborts the whole parse.
func DecodeWithOptions(data []byte, opts *DecodeOptions) (*Image, error) {
	logger := slog.New(slog.DiscardHandler)
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}

	data, err := inflate(data)
	if err != nil {
		return nil, err
	}

	r := binutil.NewReader(data)
	size, count, family, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	img := &Image{
		Family:    family,
		Size:      size,
		Directory: make([]DirEntry, count),
		bitmaps:   make([]*Bitmap, 0, count),
	}

	fileSize := int(size)
	dirEnd := headerSize + len(img.Directory)*dirEntrySize
	for i := range img.Directory {
		name, err := r.Fixed4()
		if err != nil {
			return nil, fmt.Errorf("%w: directory %d: %v", ErrHeader, i, err)
		}
		off, err := r.U32()
		if err != nil {
			return nil, fmt.Errorf("%w: directory %d: %v", ErrHeader, i, err)
		}
		if int(off) < dirEnd || int(off)+entryHeaderSize > fileSize {
			return nil, fmt.Errorf("%w: directory %d offset %d outside %d bytes", ErrEntryHeader, i, off, fileSize)
		}
		img.Directory[i] = DirEntry{Name: name, Offset: off}
	}

	offsets := make([]int, len(img.Directory))
	for i, d := range img.Directory {
		offsets[i] = int(d.Offset)
	}
	sort.Ints(offsets)

	p := &parser{r: r, size: fileSize, offsets: offsets, logger: logger}
	for i, d := range img.Directory {
		bm, err := p.entry(int(d.Offset))
		if err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, d.Name[:], err)
		}
		bm.Name = d.Name
		img.bitmaps = append(img.bitmaps, bm)
	}

	return img, nil
}

// inflate returns data, QFS-decompressed when it carries the magic instead
// of the container signature.
func inflate(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, []byte(Signature)) || !qfs.HasMagic(data) {
		return data, nil
	}
	out, err := qfs.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: container: %w", ErrDecompress, err)
	}
	return out, nil
}

func readHeader(r *binutil.Reader) (size, count uint32, family [4]byte, err error) {
	sig, err := r.Fixed4()
	if err != nil || string(sig[:]) != Signature {
		return 0, 0, family, fmt.Errorf("%w: %q", ErrSignature, sig[:])
	}
	if size, err = r.U32(); err != nil {
		return 0, 0, family, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	if count, err = r.U32(); err != nil {
		return 0, 0, family, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	if family, err = r.Fixed4(); err != nil {
		return 0, 0, family, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	if int(size) > r.Size() || int(size) < headerSize {
		return 0, 0, family, fmt.Errorf("%w: declared size %d, have %d", ErrHeader, size, r.Size())
	}
	if uint64(count)*dirEntrySize > uint64(int(size)-headerSize) {
		return 0, 0, family, fmt.Errorf("%w: %d directory records exceed %d bytes", ErrHeader, count, size)
	}
	return size, count, family, nil
}

type parser struct {
	r       *binutil.Reader
	size    int
	offsets []int
	logger  *slog.Logger
}

// nextOffset returns the smallest directory offset above off, or the file size.
func (p *parser) nextOffset(off int) int {
	i := sort.SearchInts(p.offsets, off+1)
	if i < len(p.offsets) {
		return p.offsets[i]
	}
	return p.size
}

func (p *parser) entry(off int) (*Bitmap, error) {
	r := p.r
	if err := r.Seek(off); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntryHeader, err)
	}

	code, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntryHeader, err)
	}
	w16, err := r.U16()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntryHeader, err)
	}
	h16, err := r.U16()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntryHeader, err)
	}

	bm := &Bitmap{Width: int(w16), Height: int(h16)}
	for i := range bm.Misc {
		if bm.Misc[i], err = r.U16(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEntryHeader, err)
		}
	}

	selector := uint8(code & codeFormatMask)
	if unsupportedRaw(selector) {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedFormat, selector)
	}
	bm.Format = Format(selector)
	if !bm.Format.Valid() {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownFormat, selector)
	}
	if bm.Width == 0 || bm.Height == 0 {
		return nil, fmt.Errorf("%w: zero dimensions", ErrEntryHeader)
	}
	bm.Compressed = code&codeCompressed != 0

	next := p.nextOffset(off)
	section := int(code >> 8)
	pixelEnd := next
	if section != 0 {
		pixelEnd = off + section
	}
	if pixelEnd > next || pixelEnd < off+entryHeaderSize {
		return nil, fmt.Errorf("%w: section length %d at %d", ErrEntryHeader, section, off)
	}

	chain, err := p.attachmentChain(off, section, next)
	if err != nil {
		return nil, err
	}

	payloadStart := off + entryHeaderSize
	avail := pixelEnd - payloadStart
	if !bm.Compressed {
		bm.MipCount, bm.Packed = detectMips(bm.Format, bm.Width, bm.Height, bm.Misc[3], avail)
	}

	if err := p.pixels(bm, payloadStart, avail); err != nil {
		return nil, err
	}

	for i, aOff := range chain {
		end := next
		if i+1 < len(chain) {
			end = chain[i+1]
		}
		a, skipped, err := readAttachment(r, aOff, end)
		if err != nil {
			return nil, err
		}
		if skipped {
			p.logger.Debug("skipped attachment",
				slog.Int("offset", aOff),
				slog.Int("code", int(a.Code)))
			continue
		}
		bm.Attachments = append(bm.Attachments, a)
	}

	return bm, nil
}

// attachmentChain follows section lengths from the entry header and returns
// the offset of every attachment that starts before next.
func (p *parser) attachmentChain(off, section, next int) ([]int, error) {
	var chain []int
	for section != 0 {
		at := off + section
		if at+4 > next {
			break
		}
		word, err := binutil.U32At(p.r.Buffer(), at)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAttachment, err)
		}
		chain = append(chain, at)
		off, section = at, int(word>>8)
	}
	return chain, nil
}

// pixels reads level 0 and fills the bitmap planes.
func (p *parser) pixels(bm *Bitmap, start, avail int) error {
	n := levelLength(bm.Format, bm.Width, bm.Height)

	var payload []byte
	if bm.Compressed {
		packed, err := p.slice(start, avail)
		if err != nil {
			return err
		}
		raw, err := qfs.Decompress(packed)
		if err != nil {
			return fmt.Errorf("%w: entry: %w", ErrDecompress, err)
		}
		if len(raw) < n {
			return fmt.Errorf("%w: expected %d, got %d", ErrPayloadSize, n, len(raw))
		}
		payload = raw[:n]
	} else {
		if n > avail {
			return fmt.Errorf("%w: level needs %d bytes, section has %d", ErrReadPayload, n, avail)
		}
		var err error
		if payload, err = p.slice(start, n); err != nil {
			return err
		}
	}

	if f, ok := blockFormat(bm.Format); ok {
		raster, err := dxt.Decode(payload, bm.Width, bm.Height, f)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrReadPayload, err)
		}
		bm.setPlanes(raster)
		return nil
	}

	bm.setPlanes(rasterFromBGR(payload, bm.Width, bm.Height, bm.Format == FormatRaster32))
	return nil
}

func (p *parser) slice(start, n int) ([]byte, error) {
	if err := p.r.Seek(start); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadPayload, err)
	}
	b, err := p.r.Bytes(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadPayload, err)
	}
	return b, nil
}

// rasterFromBGR converts BGR(A) pixels to a straight-alpha RGBA raster.
func rasterFromBGR(src []byte, width, height int, hasAlpha bool) []byte {
	bpp := 3
	if hasAlpha {
		bpp = 4
	}
	out := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		s := src[i*bpp:]
		out[i*4] = s[2]
		out[i*4+1] = s[1]
		out[i*4+2] = s[0]
		if hasAlpha {
			out[i*4+3] = s[3]
		} else {
			out[i*4+3] = 255
		}
	}
	return out
}
