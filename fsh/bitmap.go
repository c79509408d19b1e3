package fsh

import (
	"fmt"
	"image"
	"image/draw"
)

// Bitmap is one directory entry: a pixel plane pair plus its header fields.
type Bitmap struct {
	Format Format
	Width  int
	Height int

	// Color holds RGB with alpha fixed at 255.
	Color *image.RGBA
	// Alpha holds per-pixel opacity (0-255).
	Alpha *image.Gray

	// MipCount is the number of embedded levels below the base level.
	MipCount int
	// Packed stores the mip chain with a single padding run after the last level.
	Packed bool
	// Compressed stores the entry QFS-compressed. Only single-level bitmaps
	// are written compressed.
	Compressed bool
	// Misc holds the four format-defined header words. Word 4 carries the mip
	// count in its top nibble.
	Misc [4]uint16
	// Name is the 4-byte directory name.
	Name [4]byte

	Attachments []Attachment
}

// NewBitmap splits img into color and alpha planes.
func NewBitmap(img image.Image, format Format) (*Bitmap, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidBitmap)
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	bm := &Bitmap{Format: format, Width: b.Dx(), Height: b.Dy()}
	bm.setPlanes(nrgba.Pix)
	if format == FormatRaster24 {
		fillOpaque(bm.Alpha)
	}
	return bm, nil
}

// SetName sets the 4-byte directory name.
func (bm *Bitmap) SetName(name string) {
	bm.Name = [4]byte{}
	copy(bm.Name[:], name)
}

// Image merges the planes into a single non-premultiplied image.
func (bm *Bitmap) Image() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, bm.Width, bm.Height))
	copy(out.Pix, bm.raster())
	return out
}

// setPlanes splits a tightly packed straight-alpha RGBA raster.
func (bm *Bitmap) setPlanes(raster []byte) {
	bm.Color = image.NewRGBA(image.Rect(0, 0, bm.Width, bm.Height))
	bm.Alpha = image.NewGray(image.Rect(0, 0, bm.Width, bm.Height))

	for y := 0; y < bm.Height; y++ {
		for x := 0; x < bm.Width; x++ {
			src := (y*bm.Width + x) * 4
			c := y*bm.Color.Stride + x*4
			bm.Color.Pix[c] = raster[src]
			bm.Color.Pix[c+1] = raster[src+1]
			bm.Color.Pix[c+2] = raster[src+2]
			bm.Color.Pix[c+3] = 255
			bm.Alpha.Pix[y*bm.Alpha.Stride+x] = raster[src+3]
		}
	}
}

// raster merges the planes into a tightly packed straight-alpha RGBA raster.
func (bm *Bitmap) raster() []byte {
	return mergePlanes(bm.Color, bm.Alpha, bm.Width, bm.Height)
}

func mergePlanes(color *image.RGBA, alpha *image.Gray, width, height int) []byte {
	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dst := (y*width + x) * 4
			c := y*color.Stride + x*4
			copy(out[dst:dst+3], color.Pix[c:c+3])
			out[dst+3] = alpha.Pix[y*alpha.Stride+x]
		}
	}
	return out
}

func fillOpaque(alpha *image.Gray) {
	for i := range alpha.Pix {
		alpha.Pix[i] = 255
	}
}

// validate checks the fields Encode relies on.
func (bm *Bitmap) validate() error {
	if !bm.Format.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownFormat, bm.Format)
	}
	if bm.Width <= 0 || bm.Height <= 0 || bm.Width > 0xFFFF || bm.Height > 0xFFFF {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBitmap, bm.Width, bm.Height)
	}
	if bm.Color == nil || bm.Alpha == nil {
		return fmt.Errorf("%w: missing plane", ErrInvalidBitmap)
	}
	want := image.Rect(0, 0, bm.Width, bm.Height)
	if bm.Color.Rect != want || bm.Alpha.Rect != want {
		return fmt.Errorf("%w: plane bounds %v/%v, want %v", ErrInvalidBitmap, bm.Color.Rect, bm.Alpha.Rect, want)
	}
	if !mipDivisible(bm.Width, bm.Height, bm.MipCount) {
		return fmt.Errorf("%w: %d levels for %dx%d", ErrInvalidMipCount, bm.MipCount, bm.Width, bm.Height)
	}
	for i := range bm.Attachments {
		if err := bm.Attachments[i].validate(); err != nil {
			return fmt.Errorf("attachment %d: %w", i, err)
		}
	}
	return nil
}
