package analysis

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ironsheep/collage-mcp/internal/layout"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

const geminiPrompt = `Analyze this real estate/product image.
1. Identify the primary focal point (x,y) normalized 0-1.
2. Classify the image into EXACTLY ONE of these categories:
   - 'house' (exterior facade, whole building)
   - 'living_room' (sofa, TV area)
   - 'kitchen' (cooking area, dining)
   - 'bedroom' (bed)
   - 'bathroom' (toilet, shower)
   - 'alley' (street outside, car access, road)
   - 'rooftop' (terrace, balcony, view from top)
   - 'other' (anything else)
3. Provide a 5-word description.`

// Gemini analyzes images with a Google Gemini vision model.
type Gemini struct {
	apiKey      string
	model       string
	temperature float32
}

// NewGemini returns a Gemini analyzer. An empty apiKey falls back to the
// GEMINI_API_KEY environment variable; an empty model to
// DefaultGeminiModel.
func NewGemini(apiKey, model string) *Gemini {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{apiKey: apiKey, model: model, temperature: 0.2}
}

// Model returns the configured model name.
func (g *Gemini) Model() string {
	return g.model
}

// Analyze sends the image to Gemini and decodes its structured reply.
func (g *Gemini) Analyze(ctx context.Context, data []byte, mimeType string) (Result, error) {
	if g.apiKey == "" {
		return Result{}, ErrNoAPIKey
	}
	if len(data) == 0 {
		return Result{}, fmt.Errorf("no image data to analyze")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema()

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(geminiPrompt),
	)
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return Result{}, err
	}
	return ParseResponse(text)
}

// responseSchema constrains the reply to a focal point, one known category
// and a short description.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"focalPoint": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"x": {Type: genai.TypeNumber},
					"y": {Type: genai.TypeNumber},
				},
				Required: []string{"x", "y"},
			},
			"category": {
				Type: genai.TypeString,
				Enum: layout.CategoryNames(),
			},
			"description": {Type: genai.TypeString},
		},
		Required: []string{"focalPoint", "category", "description"},
	}
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return sb.String(), nil
}
