// Package raster converts images into the two-plane bit format used by tri-color e-paper panels.
// Each plane holds one bit per pixel in raster scan order; a set bit in the black (or red) plane
// drives that pixel black (or red), and clear bits in both planes leave the pixel white.
package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// Classification thresholds, applied to the resized pixel. Black takes priority: a saturated
// dark red still renders black because its luminance falls below the black cutoff.
const (
	blackLuminanceCutoff = 85
	redMinR              = 150
	redMaxG              = 100
	redMaxB              = 100
)

// BitPlanes holds the encoded planes for one panel refresh. Planes are immutable once encoded
// and are concatenated black-then-red to form the transfer payload.
type BitPlanes struct {
	Width  int
	Height int
	Black  []byte
	Red    []byte
}

// Payload returns the byte buffer sent to the panel: the black plane followed by the red plane.
func (p *BitPlanes) Payload() []byte {
	out := make([]byte, 0, len(p.Black)+len(p.Red))
	out = append(out, p.Black...)
	out = append(out, p.Red...)
	return out
}

// PlaneLength returns the per-plane byte count for a panel of the given dimensions.
func PlaneLength(width, height int) int {
	return (width*height + 7) / 8
}

// EncodeTriColor resizes src to width x height with averaging interpolation and classifies every
// resized pixel into the black or red plane. Pixels are visited in raster order (row major, left
// to right) and packed MSB first within each plane byte.
//
// A pixel is black if its integer luminance (299R + 587G + 114B) / 1000 is below the black
// cutoff. Otherwise it is red if R, G and B clear the red thresholds. All three channels are
// read from the same resized pixel.
func EncodeTriColor(src image.Image, width, height int) *BitPlanes {
	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(resized, resized.Bounds(), src, src.Bounds(), draw.Src, nil)

	planeLength := PlaneLength(width, height)
	planes := &BitPlanes{
		Width:  width,
		Height: height,
		Black:  make([]byte, planeLength),
		Red:    make([]byte, planeLength),
	}

	index := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := resized.RGBAAt(x, y)
			r, g, b := int(c.R), int(c.G), int(c.B)
			luminance := (299*r + 587*g + 114*b) / 1000

			bit := byte(0x80) >> uint(index%8)
			if luminance < blackLuminanceCutoff {
				planes.Black[index/8] |= bit
			} else if r > redMinR && g < redMaxG && b < redMaxB {
				planes.Red[index/8] |= bit
			}
			index++
		}
	}
	return planes
}
