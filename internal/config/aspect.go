package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AspectPreset is a named output shape.
type AspectPreset struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Ratio float64 `json:"ratio"`
}

var aspectPresets = []AspectPreset{
	{Name: "1:1", Label: "Square", Ratio: 1},
	{Name: "3:4", Label: "Portrait", Ratio: 3.0 / 4},
	{Name: "4:3", Label: "Landscape", Ratio: 4.0 / 3},
	{Name: "9:16", Label: "Story", Ratio: 9.0 / 16},
	{Name: "16:9", Label: "Cinema", Ratio: 16.0 / 9},
	{Name: "1200x628", Label: "Facebook ad", Ratio: 1200.0 / 628},
	{Name: "900x1600", Label: "Facebook story", Ratio: 900.0 / 1600},
}

// AspectPresets returns the built-in output shapes.
func AspectPresets() []AspectPreset {
	out := make([]AspectPreset, len(aspectPresets))
	copy(out, aspectPresets)
	return out
}

// ParseAspectRatio accepts a preset label ("square", "story"), a ratio
// written as W:H or WxH, or a plain decimal width/height.
func ParseAspectRatio(s string) (float64, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if in == "" {
		return 0, fmt.Errorf("%w: empty aspect ratio", ErrInvalidConfig)
	}
	for _, p := range aspectPresets {
		if in == strings.ToLower(p.Label) || in == p.Name {
			return p.Ratio, nil
		}
	}

	if w, h, ok := strings.Cut(in, ":"); ok {
		return parseRatioParts(s, w, h)
	}
	if w, h, ok := strings.Cut(in, "x"); ok {
		return parseRatioParts(s, w, h)
	}

	v, err := strconv.ParseFloat(in, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid aspect ratio %q", ErrInvalidConfig, s)
	}
	if !positiveFinite(v) {
		return 0, fmt.Errorf("%w: aspect ratio must be positive, got %q", ErrInvalidConfig, s)
	}
	return v, nil
}

func parseRatioParts(orig, w, h string) (float64, error) {
	fw, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid aspect ratio %q", ErrInvalidConfig, orig)
	}
	fh, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid aspect ratio %q", ErrInvalidConfig, orig)
	}
	if !positiveFinite(fw) || !positiveFinite(fh) {
		return 0, fmt.Errorf("%w: aspect ratio sides must be positive, got %q", ErrInvalidConfig, orig)
	}
	return fw / fh, nil
}

// AspectName returns the preset name closest to ratio within 0.001, or the
// ratio formatted with three decimals.
func AspectName(ratio float64) string {
	for _, p := range aspectPresets {
		if math.Abs(p.Ratio-ratio) < 0.001 {
			return p.Name
		}
	}
	return strconv.FormatFloat(ratio, 'f', 3, 64)
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
