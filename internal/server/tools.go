package server

import "github.com/ironsheep/collage-mcp/internal/layout"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Templates
		{
			Name:        "collage_list_templates",
			Description: "List the collage templates with their slots, hero slot and preferred hero category, plus the available aspect ratio presets.",
			InputSchema: noArgs(),
		},
		{
			Name:        "collage_template_wireframe",
			Description: "Draw a numbered wireframe thumbnail of a template and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template": map[string]interface{}{
						"type":        "string",
						"description": "Template id (see collage_list_templates)",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Thumbnail width in pixels",
						"default":     240,
					},
					"aspect_ratio": map[string]interface{}{
						"type":        "string",
						"description": "Aspect ratio such as 1:1, 16:9, 1200x628 or a decimal",
						"default":     "1:1",
					},
				},
				"required": []string{"template"},
			},
		},

		// Images
		{
			Name:        "collage_set_fixed_image",
			Description: "Set the fixed image that appears in the hero slot of every variation. The image is analyzed for its focal point and scene category. Give either a file path or base64 data.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"data": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image bytes, used when path is empty",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "File name for base64 uploads, used in exported packages",
					},
				},
			},
		},
		{
			Name:        "collage_add_images",
			Description: "Add images to the variable pool. Files that cannot be decoded are reported and skipped; images beyond the pool limit are dropped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of image files",
					},
					"images": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"name": map[string]interface{}{"type": "string"},
								"data": map[string]interface{}{
									"type":        "string",
									"description": "Base64-encoded image bytes",
								},
							},
							"required": []string{"data"},
						},
						"description": "Inline images",
					},
				},
			},
		},
		{
			Name:        "collage_remove_image",
			Description: "Remove one image from the session by id. Removing the fixed image clears it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": map[string]interface{}{
						"type":        "string",
						"description": "Image id returned when the image was added",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "collage_clear_pool",
			Description: "Remove every variable image, keeping the fixed image.",
			InputSchema: noArgs(),
		},
		{
			Name:        "collage_reset",
			Description: "Remove all images and generated variations.",
			InputSchema: noArgs(),
		},
		{
			Name:        "collage_pool_status",
			Description: "Describe the session: fixed image, pool, pool limit, whether generation is possible and how many variations were generated.",
			InputSchema: noArgs(),
		},

		// Generation
		{
			Name:        "collage_generate",
			Description: "Generate variations of a template. The fixed image (or a pool image) fills the hero slot; every other slot gets a distinct pool image with a focal-point crop.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template": map[string]interface{}{
						"type":        "string",
						"description": "Template id",
						"default":     layout.ClassicGrid,
					},
					"aspect_ratio": map[string]interface{}{
						"type":        "string",
						"description": "Aspect ratio such as 1:1, 9:16, 1200x628 or a decimal",
						"default":     "1:1",
					},
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of variations",
						"default":     20,
					},
				},
			},
		},
		{
			Name:        "collage_render_preview",
			Description: "Render one generated variation and return it as base64-encoded JPEG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"job_id": map[string]interface{}{
						"type":        "string",
						"description": "Job id from collage_generate",
					},
					"size": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"thumbnail", "full"},
						"description": "thumbnail is 400px wide, full is the renderer's base width",
						"default":     "thumbnail",
					},
				},
				"required": []string{"job_id"},
			},
		},
		{
			Name:        "collage_export",
			Description: "Write a zip archive. Without job_id every variation is exported as composite_N.jpg with a manifest; with job_id a package holds that composite and its source images.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the zip file to write",
					},
					"job_id": map[string]interface{}{
						"type":        "string",
						"description": "Export a single job as a package",
					},
					"quality": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"1k", "2k", "4k"},
						"description": "Output width tier",
						"default":     "1k",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
