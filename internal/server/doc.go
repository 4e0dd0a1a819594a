// Package server exposes a collage session over MCP (Model Context Protocol)
// and over HTTP.
//
// # Protocol
//
// The MCP server speaks JSON-RPC 2.0, one request per line:
//   - Input: JSON-RPC requests on stdin
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Templates:
//   - collage_list_templates: Templates, hero rules and aspect presets
//   - collage_template_wireframe: Numbered PNG thumbnail of a template
//
// Images:
//   - collage_set_fixed_image: Analyze and set the hero image
//   - collage_add_images: Add images to the variable pool
//   - collage_remove_image: Remove one image
//   - collage_clear_pool: Remove every variable image
//   - collage_reset: Start over
//   - collage_pool_status: Describe the session
//
// Generation:
//   - collage_generate: Produce variations of a template
//   - collage_render_preview: Render one variation as JPEG
//   - collage_export: Write all variations, or one job package, to a zip
//
// # HTTP API
//
// Handler serves the same session for browser clients:
//
//	GET    /healthcheck
//	GET    /api/templates
//	GET    /api/templates/{id}/wireframe.png
//	GET    /api/images
//	POST   /api/images            multipart field "files"
//	POST   /api/images/fixed      multipart field "file"
//	DELETE /api/images/{id}
//	POST   /api/reset
//	POST   /api/generate          {"template", "aspect_ratio", "count"}
//	GET    /api/jobs/{id}/preview.jpg?size=thumbnail|full
//	GET    /api/jobs/{id}/package.zip?quality=1k|2k|4k
//	GET    /api/export.zip?quality=1k|2k|4k
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// HTTP errors are plain text: 404 for unknown templates, images and jobs,
// 400 for everything else.
package server
