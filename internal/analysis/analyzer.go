// Package analysis estimates where the subject of a photo is and what kind
// of space it shows.
//
// The composition engine only needs a focal point and a category per image.
// Analyzers produce both, either through a vision model (Gemini) or an
// offline edge-energy heuristic (Saliency). WithFallback turns any analyzer
// into one that never fails, which is how the rest of the system uses them.
package analysis

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/collage-mcp/internal/layout"
)

// Descriptions used when no real analysis is available.
const (
	MarkerNoAPIKey = "No API Key"
	MarkerFailed   = "Analysis failed"
	MarkerGallery  = "Gallery Image"
)

// ErrNoAPIKey is returned by analyzers that need credentials they were not
// given.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY environment variable not set")

// Result is what an analyzer learned about one image.
type Result struct {
	FocalPoint  layout.Point    `json:"focal_point"`
	Category    layout.Category `json:"category"`
	Description string          `json:"description"`
}

// Analyzer inspects an encoded image.
type Analyzer interface {
	Analyze(ctx context.Context, data []byte, mimeType string) (Result, error)
}

// Func adapts a plain function to Analyzer.
type Func func(ctx context.Context, data []byte, mimeType string) (Result, error)

func (f Func) Analyze(ctx context.Context, data []byte, mimeType string) (Result, error) {
	return f(ctx, data, mimeType)
}

// Fallback is the centered, uncategorized result used in place of a failed
// analysis. marker becomes the description so callers can tell why.
func Fallback(marker string) Result {
	return Result{
		FocalPoint:  layout.Center,
		Category:    layout.CategoryOther,
		Description: marker,
	}
}

// None is an analyzer that skips analysis and returns the gallery default.
var None Analyzer = Func(func(context.Context, []byte, string) (Result, error) {
	return Fallback(MarkerGallery), nil
})

type fallbackAnalyzer struct {
	next   Analyzer
	logger *log.Logger
}

// WithFallback wraps a so that it never returns an error. A missing API key
// yields Fallback(MarkerNoAPIKey); any other failure yields
// Fallback(MarkerFailed). Failures are logged as warnings.
func WithFallback(a Analyzer, logger *log.Logger) Analyzer {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &fallbackAnalyzer{next: a, logger: logger}
}

func (f *fallbackAnalyzer) Analyze(ctx context.Context, data []byte, mimeType string) (Result, error) {
	res, err := f.next.Analyze(ctx, data, mimeType)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, ErrNoAPIKey) {
		f.logger.Warn("API key missing, using center focus")
		return Fallback(MarkerNoAPIKey), nil
	}
	f.logger.Warn("image analysis failed, using center focus", "err", err)
	return Fallback(MarkerFailed), nil
}
