package composition

import (
	"github.com/ironsheep/collage-mcp/internal/layout"
)

// ComputeCrop returns the region of img, in source pixels, that fills a slot
// with the given width/height ratio.
//
// When the image is relatively wider than the target the crop keeps the full
// height and slides horizontally; otherwise it keeps the full width and
// slides vertically. The crop is centered on the focal point and then clamped
// so it never leaves the image. Focal points outside 0..1 are accepted and
// simply saturate at the nearest edge.
//
// targetAspectRatio must be positive and img must have positive dimensions.
func ComputeCrop(img SourceImage, targetAspectRatio float64) layout.Rect {
	w := float64(img.Width)
	h := float64(img.Height)

	if w/h > targetAspectRatio {
		cropH := h
		cropW := cropH * targetAspectRatio
		x := clampFloat(img.FocalPoint.X*w-cropW/2, 0, w-cropW)
		return layout.Rect{X: x, Y: 0, W: cropW, H: cropH}
	}

	cropW := w
	cropH := cropW / targetAspectRatio
	y := clampFloat(img.FocalPoint.Y*h-cropH/2, 0, h-cropH)
	return layout.Rect{X: 0, Y: y, W: cropW, H: cropH}
}

// clampFloat constrains v to [lo, hi]. The lower bound wins if hi < lo.
func clampFloat(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
