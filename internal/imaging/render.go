package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/charmbracelet/log"
	"golang.org/x/image/draw"

	"github.com/ironsheep/collage-mcp/internal/composition"
	"github.com/ironsheep/collage-mcp/internal/layout"
)

// DefaultBaseWidth is the surface width, in pixels, at scale 1.
const DefaultBaseWidth = 1200

// Renderer draws composition jobs onto raster surfaces.
//
// A Renderer holds only configuration and is safe for concurrent use.
type Renderer struct {
	baseWidth  int
	background color.Color
	interp     draw.Interpolator
	rectClip   bool
	logger     *log.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithBaseWidth sets the surface width at scale 1.
func WithBaseWidth(px int) RendererOption {
	return func(r *Renderer) {
		if px > 0 {
			r.baseWidth = px
		}
	}
}

// WithBackground sets the fill shown behind and between slots.
func WithBackground(c color.Color) RendererOption {
	return func(r *Renderer) {
		if c != nil {
			r.background = c
		}
	}
}

// WithInterpolator sets the resampling kernel. The default is CatmullRom.
func WithInterpolator(i draw.Interpolator) RendererOption {
	return func(r *Renderer) {
		if i != nil {
			r.interp = i
		}
	}
}

// WithRectClip disables rounded corners; every slot is clipped to its plain
// rectangle.
func WithRectClip() RendererOption {
	return func(r *Renderer) { r.rectClip = true }
}

// WithLogger makes the renderer report skipped slots at debug level.
func WithLogger(l *log.Logger) RendererOption {
	return func(r *Renderer) { r.logger = l }
}

// NewRenderer returns a renderer with a white background, CatmullRom
// resampling and rounded clipping.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		baseWidth:  DefaultBaseWidth,
		background: color.White,
		interp:     draw.CatmullRom,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseWidth returns the surface width at scale 1.
func (r *Renderer) BaseWidth() int {
	return r.baseWidth
}

// SurfaceSize returns the output dimensions for a composite of the given
// aspect ratio at scale: width is round(base*scale), height is
// round(width/aspect). Neither is ever below one pixel.
func (r *Renderer) SurfaceSize(aspect, scale float64) (int, int) {
	w := max(int(math.Round(float64(r.baseWidth)*scale)), 1)
	h := max(int(math.Round(float64(w)/aspect)), 1)
	return w, h
}

// Render draws job onto a new surface.
//
// Slots are painted in ascending stack order, so later slots cover earlier
// ones where they overlap. A slot without an assignment, or whose image id
// is missing from images, is skipped and shows the background. Each filled
// slot shows its crop region scaled exactly into the slot rectangle, clipped
// to a rectangle with corners rounded by CornerRadius times the surface
// width.
//
// Errors are returned only when the request itself is unusable; missing
// assets never fail a render. Rendering the same job with the same images
// and scale always produces identical pixels.
func (r *Renderer) Render(job composition.Job, tmpl *layout.Template, images Table, scale float64) (*image.RGBA, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("template is required")
	}
	if job.TemplateID != "" && job.TemplateID != tmpl.ID {
		return nil, fmt.Errorf("job %s uses template %s, not %s", job.ID, job.TemplateID, tmpl.ID)
	}
	if !positive(scale) {
		return nil, fmt.Errorf("scale must be a positive number, got %v", scale)
	}
	if !positive(job.AspectRatio) {
		return nil, fmt.Errorf("job %s has invalid aspect ratio %v", job.ID, job.AspectRatio)
	}

	w, h := r.SurfaceSize(job.AspectRatio, scale)
	surface := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(surface, surface.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)

	for _, slot := range tmpl.SlotsByStackOrder() {
		a, ok := job.Assignment(slot.ID)
		if !ok {
			continue
		}
		src, ok := images[a.ImageID]
		if !ok || src == nil {
			r.debug("skipping slot with missing image", "job", job.ID, "slot", slot.ID, "image", a.ImageID)
			continue
		}
		r.drawSlot(surface, slot, src, a.Crop)
	}

	return surface, nil
}

// drawSlot scales the crop region of src into the slot's rectangle.
func (r *Renderer) drawSlot(dst *image.RGBA, slot layout.Slot, src image.Image, crop layout.Rect) {
	bounds := dst.Bounds()
	fw, fh := float64(bounds.Dx()), float64(bounds.Dy())

	dr := image.Rect(
		roundInt(slot.X*fw), roundInt(slot.Y*fh),
		roundInt(slot.Right()*fw), roundInt(slot.Bottom()*fh),
	)
	if dr.Empty() {
		return
	}

	sb := src.Bounds()
	sr := image.Rect(
		roundInt(crop.X), roundInt(crop.Y),
		roundInt(crop.Right()), roundInt(crop.Bottom()),
	).Add(sb.Min).Intersect(sb)
	if sr.Empty() {
		r.debug("skipping slot with empty crop", "slot", slot.ID, "crop", crop.String())
		return
	}

	opts := &draw.Options{}
	if radius := slot.CornerRadius * fw; radius > 0 && !r.rectClip {
		opts.DstMask = newRoundedMask(dr, radius)
	}
	r.interp.Scale(dst, dr, src, sr, draw.Over, opts)
}

func (r *Renderer) debug(msg string, keyvals ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, keyvals...)
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
