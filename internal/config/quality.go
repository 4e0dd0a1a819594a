package config

import (
	"fmt"
	"strconv"
	"strings"
)

// QualityTier is an output width in pixels.
type QualityTier int

const (
	Quality1K QualityTier = 1080
	Quality2K QualityTier = 2160
	Quality4K QualityTier = 3840
)

// PreviewWidth is the width of gallery previews.
const PreviewWidth = 400

// ParseQuality accepts "1k", "2k", "4k" or a pixel width.
func ParseQuality(s string) (QualityTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1k", "1080", "":
		return Quality1K, nil
	case "2k", "2160":
		return Quality2K, nil
	case "4k", "3840":
		return Quality4K, nil
	}
	px, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || px <= 0 {
		return 0, fmt.Errorf("%w: invalid quality %q (want 1k, 2k, 4k or a width)", ErrInvalidConfig, s)
	}
	return QualityTier(px), nil
}

// Scale is the render scale that produces this width from baseWidth.
func (q QualityTier) Scale(baseWidth int) float64 {
	return float64(q) / float64(baseWidth)
}

func (q QualityTier) String() string {
	switch q {
	case Quality1K:
		return "1k"
	case Quality2K:
		return "2k"
	case Quality4K:
		return "4k"
	}
	return strconv.Itoa(int(q)) + "px"
}
