package composition

import (
	"github.com/ironsheep/collage-mcp/internal/layout"
)

// CenterFocus is the focal point used when nothing better is known.
var CenterFocus = layout.Center

// SourceImage describes a decoded photograph available for composition.
type SourceImage struct {
	// ID is unique and stable for the lifetime of the session.
	ID string `json:"id" yaml:"id"`

	// Width and Height are the decoded pixel dimensions.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// FocalPoint marks the visually important area in normalized coordinates.
	FocalPoint layout.Point `json:"focal_point" yaml:"focal_point"`

	Category    layout.Category `json:"category" yaml:"category"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewSourceImage returns an image centered on its middle and categorized as
// other, the defaults for images that are not analyzed.
func NewSourceImage(id string, width, height int) SourceImage {
	return SourceImage{
		ID:         id,
		Width:      width,
		Height:     height,
		FocalPoint: CenterFocus,
		Category:   layout.CategoryOther,
	}
}

// AspectRatio returns Width/Height.
func (img SourceImage) AspectRatio() float64 {
	return float64(img.Width) / float64(img.Height)
}
