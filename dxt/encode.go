package dxt

import (
	"encoding/binary"
	"fmt"
	"math"
)

// stepIndex maps an interpolation step (0 = first endpoint) to the 2-bit
// palette index the decoder uses for it.
var stepIndex = [2][4]uint8{
	{0, 2, 1, 0}, // 3-level: c0, mid, c1
	{0, 2, 3, 1}, // 4-level: c0, 2/3, 1/3, c1
}

// Encode compresses a tightly strided RGBA raster with the built-in encoder.
// Pixels past the right and bottom edge are padded with transparent black and
// do not influence the endpoint fit.
func Encode(raster []byte, stride, width, height int, format Format) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	size := format.BlockSize()
	if size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err := checkRaster(raster, stride, width, height); err != nil {
		return nil, err
	}

	bw := (width + 3) / 4
	bh := (height + 3) / 4
	out := make([]byte, bw*bh*size)

	var px [64]byte
	offset := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			px = [64]byte{}
			var valid uint16
			for py := 0; py < 4; py++ {
				y := by*4 + py
				if y >= height {
					break
				}
				for pxi := 0; pxi < 4; pxi++ {
					x := bx*4 + pxi
					if x >= width {
						break
					}
					i := py*4 + pxi
					copy(px[i*4:i*4+4], raster[y*stride+x*4:])
					valid |= 1 << i
				}
			}

			EncodeBlock(out[offset:offset+size], &px, valid, format)
			offset += size
		}
	}

	return out, nil
}

func checkRaster(raster []byte, stride, width, height int) error {
	if stride < width*4 {
		return fmt.Errorf("%w: stride %d for width %d", ErrShortRaster, stride, width)
	}
	if need := stride*(height-1) + width*4; len(raster) < need {
		return fmt.Errorf("%w: need %d, have %d", ErrShortRaster, need, len(raster))
	}
	return nil
}

// EncodeBlock encodes 16 RGBA pixels into dst (BlockSize bytes). Bit i of
// valid marks pixel i as inside the image.
func EncodeBlock(dst []byte, px *[64]byte, valid uint16, format Format) {
	if format == DXT3 {
		for i := 0; i < 8; i++ {
			lo := px[(2*i)*4+3] >> 4
			hi := px[(2*i+1)*4+3] >> 4
			dst[i] = lo | hi<<4
		}
		encodeColor(dst[8:16], px, valid, false)
		return
	}
	encodeColor(dst[:8], px, valid, true)
}

// encodeColor writes an 8-byte color block. In DXT1 mode pixels with alpha
// below 128 use the transparent index, which forces 3-level interpolation.
func encodeColor(dst []byte, px *[64]byte, valid uint16, dxt1 bool) {
	var fit [16]int
	nfit := 0
	var transparent uint16
	for i := 0; i < 16; i++ {
		if valid&(1<<i) == 0 {
			continue
		}
		if dxt1 && px[i*4+3] < 128 {
			transparent |= 1 << i
			continue
		}
		fit[nfit] = i
		nfit++
	}

	var distinct [16]uint16
	ndistinct := 0
	for _, i := range fit[:nfit] {
		q := pack565(int(px[i*4]), int(px[i*4+1]), int(px[i*4+2]))
		seen := false
		for _, d := range distinct[:ndistinct] {
			if d == q {
				seen = true
				break
			}
		}
		if !seen {
			distinct[ndistinct] = q
			ndistinct++
		}
	}

	allowFour := transparent == 0
	allowThree := dxt1

	var c0, c1 uint16
	threeLevel := !allowFour

	switch ndistinct {
	case 0:
	case 1:
		c0, c1 = distinct[0], distinct[0]
	default:
		best := math.MaxInt
		var qa, qb uint16
		for a := 0; a < ndistinct; a++ {
			for b := a + 1; b < ndistinct; b++ {
				if allowFour {
					if e := fitError(px, fit[:nfit], distinct[a], distinct[b], 3); e < best {
						best, qa, qb, threeLevel = e, distinct[a], distinct[b], false
					}
				}
				if allowThree {
					if e := fitError(px, fit[:nfit], distinct[a], distinct[b], 2); e < best {
						best, qa, qb, threeLevel = e, distinct[a], distinct[b], true
					}
				}
			}
		}

		c0, c1 = qa, qb
		// 4-level needs c0 > c1, 3-level needs c0 <= c1
		if threeLevel != (c0 <= c1) {
			c0, c1 = c1, c0
		}
	}

	nstep := 3
	if dxt1 && c0 <= c1 {
		nstep = 2
	}
	e0, e1 := unpack565(c0), unpack565(c1)

	var indices uint32
	for i := 0; i < 16; i++ {
		var idx uint8
		switch {
		case transparent&(1<<i) != 0:
			idx = 3
		case valid&(1<<i) == 0:
			idx = 0
		default:
			step := project(px[i*4:i*4+3], e0, e1, nstep)
			idx = stepIndex[nstep-2][step]
		}
		indices |= uint32(idx) << (2 * i)
	}

	binary.LittleEndian.PutUint16(dst[0:], c0)
	binary.LittleEndian.PutUint16(dst[2:], c1)
	binary.LittleEndian.PutUint32(dst[4:], indices)
}

// project returns the interpolation step in [0,nstep] nearest to p on the
// line from e0 to e1.
func project(p []byte, e0, e1 [3]int, nstep int) int {
	var dot, len2 int
	for ch := 0; ch < 3; ch++ {
		d := e1[ch] - e0[ch]
		dot += (int(p[ch]) - e0[ch]) * d
		len2 += d * d
	}
	if len2 == 0 {
		return 0
	}

	step := int(math.Round(float64(dot) * float64(nstep) / float64(len2)))
	if step < 0 {
		return 0
	}
	if step > nstep {
		return nstep
	}
	return step
}

// fitError scores endpoints qa, qb with nstep interpolation steps against the
// fitted pixels as the sum of squared residuals.
func fitError(px *[64]byte, fit []int, qa, qb uint16, nstep int) int {
	e0, e1 := unpack565(qa), unpack565(qb)

	var steps [4][3]int
	for ch := 0; ch < 3; ch++ {
		steps[0][ch] = e0[ch]
		steps[nstep][ch] = e1[ch]
		if nstep == 3 {
			steps[1][ch] = (2*e0[ch] + e1[ch]) / 3
			steps[2][ch] = (e0[ch] + 2*e1[ch]) / 3
		} else {
			steps[1][ch] = (e0[ch] + e1[ch]) / 2
		}
	}

	total := 0
	for _, i := range fit {
		p := px[i*4 : i*4+3]
		s := steps[project(p, e0, e1, nstep)]
		for ch := 0; ch < 3; ch++ {
			d := int(p[ch]) - s[ch]
			total += d * d
		}
	}
	return total
}
