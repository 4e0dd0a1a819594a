package imaging

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a hex color such as "#ffffff", "#fff" or "#FF000080".
// The optional last byte of an 8 digit form is alpha.
func ParseColor(hex string) (color.NRGBA, error) {
	s := strings.TrimSpace(hex)
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	alpha := uint8(0xff)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in color %q: %w", hex, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// HexColor formats c as "#rrggbb", dropping alpha.
func HexColor(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		// Fully transparent colors have no meaningful RGB.
		return "#000000"
	}
	return cf.Hex()
}

// shade darkens (negative amount) or lightens c in the Lab space.
func shade(c color.Color, amount float64) color.NRGBA {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return color.NRGBA{}
	}
	l, a, b := cf.Lab()
	l = min(max(l+amount, 0), 1)
	r, g, bl := colorful.Lab(l, a, b).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: 0xff}
}
