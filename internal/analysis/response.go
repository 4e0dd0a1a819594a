package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ironsheep/collage-mcp/internal/layout"
)

// Models sometimes wrap JSON in a markdown code block.
var fenceRE = regexp.MustCompile("```(?:json)?\\n?")

type responsePayload struct {
	FocalPoint *struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	} `json:"focalPoint"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ParseResponse decodes a model reply into a Result. Unknown categories
// become other; a missing or non-finite focal point is an error.
func ParseResponse(text string) (Result, error) {
	cleaned := strings.TrimSpace(fenceRE.ReplaceAllString(text, ""))
	if cleaned == "" {
		return Result{}, fmt.Errorf("empty analysis response")
	}

	var p responsePayload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return Result{}, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	if p.FocalPoint == nil || p.FocalPoint.X == nil || p.FocalPoint.Y == nil {
		return Result{}, fmt.Errorf("analysis response has no focal point")
	}

	focal := layout.Point{X: *p.FocalPoint.X, Y: *p.FocalPoint.Y}
	if !focal.IsFinite() {
		return Result{}, fmt.Errorf("analysis response has a non-finite focal point")
	}

	category, err := layout.ParseCategory(p.Category)
	if err != nil {
		category = layout.CategoryOther
	}

	return Result{
		FocalPoint:  focal,
		Category:    category,
		Description: strings.TrimSpace(p.Description),
	}, nil
}
