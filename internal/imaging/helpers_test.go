package imaging

import (
	"image"
	"image/color"
)

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	white = color.RGBA{255, 255, 255, 255}
)

// createInMemoryImage creates a solid in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = red // top-left
			} else if x >= width/2 && y < height/2 {
				c = green // top-right
			} else if x < width/2 && y >= height/2 {
				c = blue // bottom-left
			} else {
				c = white // bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// near reports whether every channel of a is within tol of b.
func near(a color.Color, b color.RGBA, tol uint8) bool {
	c := color.RGBAModel.Convert(a).(color.RGBA)
	diff := func(x, y uint8) bool {
		if x > y {
			return x-y <= tol
		}
		return y-x <= tol
	}
	return diff(c.R, b.R) && diff(c.G, b.G) && diff(c.B, b.B) && diff(c.A, b.A)
}
