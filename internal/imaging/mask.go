package imaging

import (
	"image"
	"image/color"
	"math"
)

// maskSamples is the per-axis supersampling factor used to anti-alias the
// rounded corners.
const maskSamples = 4

// roundedMask is an alpha mask covering rect with corners rounded to radius
// pixels. It lives in destination coordinates: At is only opaque inside rect.
//
// Coverage is computed on demand, so a mask costs nothing to build and can
// be shared by concurrent readers.
type roundedMask struct {
	rect   image.Rectangle
	radius float64
}

// newRoundedMask returns the clip for rect. The radius is capped at half of
// the shorter side so opposite corners never overlap.
func newRoundedMask(rect image.Rectangle, radius float64) *roundedMask {
	limit := float64(min(rect.Dx(), rect.Dy())) / 2
	if radius > limit {
		radius = limit
	}
	if radius < 0 || math.IsNaN(radius) {
		radius = 0
	}
	return &roundedMask{rect: rect, radius: radius}
}

func (m *roundedMask) ColorModel() color.Model { return color.AlphaModel }

func (m *roundedMask) Bounds() image.Rectangle { return m.rect }

func (m *roundedMask) At(x, y int) color.Color {
	return color.Alpha{A: m.coverage(x, y)}
}

// coverage returns the fraction of pixel (x, y) inside the rounded
// rectangle, scaled to 0..255.
func (m *roundedMask) coverage(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}).In(m.rect) {
		return 0
	}
	r := m.radius
	if r == 0 {
		return 0xff
	}

	// Pixel position relative to the rect, as floats.
	lx := float64(x - m.rect.Min.X)
	ly := float64(y - m.rect.Min.Y)
	w := float64(m.rect.Dx())
	h := float64(m.rect.Dy())

	// Pick the corner circle this pixel could fall outside of.
	var cx, cy float64
	switch {
	case lx < r && ly < r:
		cx, cy = r, r
	case lx+1 > w-r && ly < r:
		cx, cy = w-r, r
	case lx < r && ly+1 > h-r:
		cx, cy = r, h-r
	case lx+1 > w-r && ly+1 > h-r:
		cx, cy = w-r, h-r
	default:
		return 0xff
	}

	inside := 0
	for sy := 0; sy < maskSamples; sy++ {
		py := ly + (float64(sy)+0.5)/maskSamples
		for sx := 0; sx < maskSamples; sx++ {
			px := lx + (float64(sx)+0.5)/maskSamples
			if insideCorner(px, py, cx, cy, r, w, h) {
				inside++
			}
		}
	}
	return uint8(inside * 0xff / (maskSamples * maskSamples))
}

// insideCorner reports whether sample (px, py) is inside the rounded
// rectangle, given the center of the nearest corner circle.
func insideCorner(px, py, cx, cy, r, w, h float64) bool {
	// Samples between the corner circle and the straight edges are inside.
	if (px >= r && px <= w-r) || (py >= r && py <= h-r) {
		return true
	}
	dx := px - cx
	dy := py - cy
	return dx*dx+dy*dy <= r*r
}
