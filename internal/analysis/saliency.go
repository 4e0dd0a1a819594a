package analysis

import (
	"context"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"

	"github.com/ironsheep/collage-mcp/internal/imaging"
	"github.com/ironsheep/collage-mcp/internal/layout"
)

// Saliency estimates the focal point offline as the centroid of edge
// energy. Busy, detailed regions pull the focus; flat sky and walls do not.
// It cannot categorize, so every result is other.
type Saliency struct {
	// MaxSide bounds the working copy; larger images are downscaled first.
	MaxSide int

	// BlurRadius smooths noise before edge detection.
	BlurRadius float64
}

// NewSaliency returns a Saliency analyzer with defaults suited to photos.
func NewSaliency() *Saliency {
	return &Saliency{MaxSide: 256, BlurRadius: 1.5}
}

// saliencyBorder is ignored because edge filters light up image borders.
const saliencyBorder = 2

// Analyze decodes data and returns the edge-energy centroid.
func (s *Saliency) Analyze(ctx context.Context, data []byte, _ string) (Result, error) {
	img, _, err := imaging.DecodeBytes(data, "analysis input")
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{
		FocalPoint:  s.FocalPoint(img),
		Category:    layout.CategoryOther,
		Description: "Saliency estimate",
	}, nil
}

// FocalPoint computes the normalized edge-energy centroid of img. Images
// without any edges get the center.
func (s *Saliency) FocalPoint(img image.Image) layout.Point {
	work := img
	b := img.Bounds()
	if maxSide := max(s.MaxSide, 16); b.Dx() > maxSide || b.Dy() > maxSide {
		w, h := maxSide, maxSide
		if b.Dx() >= b.Dy() {
			h = max(b.Dy()*maxSide/b.Dx(), 1)
		} else {
			w = max(b.Dx()*maxSide/b.Dy(), 1)
		}
		work = transform.Resize(img, w, h, transform.Linear)
	}

	var gray image.Image = effect.Grayscale(work)
	if s.BlurRadius > 0 {
		gray = blur.Gaussian(gray, s.BlurRadius)
	}
	edges := effect.Sobel(gray)

	eb := edges.Bounds()
	var sum, sx, sy float64
	for y := eb.Min.Y + saliencyBorder; y < eb.Max.Y-saliencyBorder; y++ {
		for x := eb.Min.X + saliencyBorder; x < eb.Max.X-saliencyBorder; x++ {
			e := float64(color.GrayModel.Convert(edges.At(x, y)).(color.Gray).Y)
			wgt := e * e
			sum += wgt
			sx += wgt * (float64(x-eb.Min.X) + 0.5)
			sy += wgt * (float64(y-eb.Min.Y) + 0.5)
		}
	}
	if sum == 0 {
		return layout.Center
	}
	return layout.Point{
		X: sx / sum / float64(eb.Dx()),
		Y: sy / sum / float64(eb.Dy()),
	}
}
