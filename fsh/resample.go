package fsh

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/transform"
)

// Resampler scales src to width x height. It must not modify src.
type Resampler func(src image.Image, width, height int) image.Image

// Resample is the default Resampler: linear filtering via bild.
func Resample(src image.Image, width, height int) image.Image {
	return transform.Resize(src, width, height, transform.Linear)
}

// levelPlanes returns the color and alpha planes for a mip level. Level 0
// returns the bitmap's own planes.
func (bm *Bitmap) levelPlanes(level int, resample Resampler) (*image.RGBA, *image.Gray, int, int) {
	if level == 0 {
		return bm.Color, bm.Alpha, bm.Width, bm.Height
	}

	w := mipDimension(bm.Width, level)
	h := mipDimension(bm.Height, level)

	color := asRGBA(resample(bm.Color, w, h), w, h)
	for i := 3; i < len(color.Pix); i += 4 {
		color.Pix[i] = 255
	}

	scaled := asRGBA(resample(bm.Alpha, w, h), w, h)
	alpha := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			alpha.Pix[y*alpha.Stride+x] = scaled.Pix[y*scaled.Stride+x*4]
		}
	}

	return color, alpha, w, h
}

// asRGBA returns img as an RGBA anchored at the origin with the given size.
func asRGBA(img image.Image, width, height int) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect == image.Rect(0, 0, width, height) {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
