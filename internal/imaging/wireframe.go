package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/collage-mcp/internal/layout"
)

// WireframeStyle sets the colors of a template thumbnail.
type WireframeStyle struct {
	Background color.Color
	Fill       color.Color
	Outline    color.Color
	Label      color.Color
}

// DefaultWireframeStyle is a light gray thumbnail with dark slot numbers.
func DefaultWireframeStyle() WireframeStyle {
	fill, _ := ParseColor("#e2e8f0")
	label, _ := ParseColor("#334155")
	return WireframeStyle{
		Background: color.White,
		Fill:       fill,
		Outline:    shade(fill, -0.25),
		Label:      label,
	}
}

// DrawTemplateWireframe renders a thumbnail of tmpl: each slot as a rounded
// box, painted in stack order and labeled with its 1-based position in the
// template's slot list.
func DrawTemplateWireframe(tmpl *layout.Template, width int, aspect float64, style WireframeStyle) (*image.NRGBA, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("template is required")
	}
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", width)
	}
	if !positive(aspect) {
		return nil, fmt.Errorf("aspect ratio must be a positive number, got %v", aspect)
	}

	height := max(roundInt(float64(width)/aspect), 1)
	canvas := imaging.New(width, height, style.Background)
	fw, fh := float64(width), float64(height)

	index := make(map[string]int, len(tmpl.Slots))
	for i, s := range tmpl.Slots {
		index[s.ID] = i + 1
	}

	stroke := max(width/200, 1)
	glyphScale := max(width/120, 1)

	for _, slot := range tmpl.SlotsByStackOrder() {
		r := image.Rect(
			roundInt(slot.X*fw), roundInt(slot.Y*fh),
			roundInt(slot.Right()*fw), roundInt(slot.Bottom()*fh),
		)
		if r.Empty() {
			continue
		}
		radius := slot.CornerRadius * fw
		fillRounded(canvas, r, radius, style.Outline)
		fillRounded(canvas, r.Inset(stroke), radius-float64(stroke), style.Fill)

		label := strconv.Itoa(index[slot.ID])
		lw := len(label) * glyphAdvance * glyphScale
		lh := glyphRows * glyphScale
		center := image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
		drawLabel(canvas, center.X-lw/2, center.Y-lh/2, label, glyphScale, style.Label)
	}

	return canvas, nil
}

func fillRounded(dst draw.Image, r image.Rectangle, radius float64, c color.Color) {
	if r.Empty() {
		return
	}
	mask := newRoundedMask(r, radius)
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, r.Min, draw.Over)
}

const (
	glyphAdvance = 4
	glyphRows    = 5
)

// digitGlyphs is a 3x5 pixel font for slot numbers.
var digitGlyphs = map[rune][glyphRows]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

// drawLabel draws text at (x, y) using the pixel font, each font pixel
// blown up to a scale x scale square. Unknown runes leave a gap.
func drawLabel(img draw.Image, x, y int, text string, scale int, fg color.Color) {
	bounds := img.Bounds()
	cx := x
	for _, ch := range text {
		glyph, ok := digitGlyphs[ch]
		if !ok {
			cx += glyphAdvance * scale
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				cell := image.Rect(cx+col*scale, y+row*scale, cx+(col+1)*scale, y+(row+1)*scale).Intersect(bounds)
				draw.Draw(img, cell, image.NewUniform(fg), image.Point{}, draw.Src)
			}
		}
		cx += glyphAdvance * scale
	}
}
