package layout

import (
	"fmt"
	"math"
)

// Point is a normalized 0..1 coordinate within an image.
type Point struct {
	X float64 `json:"x" toml:"x" yaml:"x"`
	Y float64 `json:"y" toml:"y" yaml:"y"`
}

// Center is the middle of an image, the default focal point.
var Center = Point{X: 0.5, Y: 0.5}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Rect is an axis-aligned rectangle. Slots use normalized units; crop
// regions use source image pixels.
type Rect struct {
	X float64 `json:"x" toml:"x" yaml:"x"`
	Y float64 `json:"y" toml:"y" yaml:"y"`
	W float64 `json:"w" toml:"w" yaml:"w"`
	H float64 `json:"h" toml:"h" yaml:"h"`
}

// Valid reports whether the rectangle has a positive, finite area.
func (r Rect) Valid() bool {
	for _, v := range []float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.W > 0 && r.H > 0
}

// AspectRatio returns W/H.
func (r Rect) AspectRatio() float64 {
	return r.W / r.H
}

// Scale maps a normalized rectangle onto a surface of the given size.
func (r Rect) Scale(width, height float64) Rect {
	return Rect{X: r.X * width, Y: r.Y * height, W: r.W * width, H: r.H * height}
}

// Right returns X+W.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns Y+H.
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) String() string {
	return fmt.Sprintf("(%.2f,%.2f %.2fx%.2f)", r.X, r.Y, r.W, r.H)
}
