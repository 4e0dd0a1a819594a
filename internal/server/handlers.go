package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ironsheep/collage-mcp/internal/imaging"
	"github.com/ironsheep/collage-mcp/internal/layout"
	"github.com/ironsheep/collage-mcp/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "collage_generate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	// Templates
	case "collage_list_templates":
		return s.listTemplates(), nil
	case "collage_template_wireframe":
		return s.handleTemplateWireframe(args)

	// Images
	case "collage_set_fixed_image":
		return s.handleSetFixedImage(ctx, args)
	case "collage_add_images":
		return s.handleAddImages(args)
	case "collage_remove_image":
		return s.handleRemoveImage(args)
	case "collage_clear_pool":
		s.session.ClearPool()
		return s.session.Status(), nil
	case "collage_reset":
		s.session.Reset()
		return s.session.Status(), nil
	case "collage_pool_status":
		return s.session.Status(), nil

	// Generation
	case "collage_generate":
		return s.handleGenerate(args)
	case "collage_render_preview":
		return s.handleRenderPreview(args)
	case "collage_export":
		return s.handleExport(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Template Handlers ===

type wireframeArgs struct {
	Template    string `json:"template"`
	Width       int    `json:"width"`
	AspectRatio string `json:"aspect_ratio"`
}

func (s *Server) handleTemplateWireframe(args json.RawMessage) (interface{}, error) {
	var a wireframeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Template == "" {
		return nil, fmt.Errorf("template is required")
	}
	img, err := s.wireframe(a.Template, a.Width, a.AspectRatio)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBase64(img, imaging.PNG, 90)
}

// === Image Handlers ===

type imageArg struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

type setFixedArgs struct {
	Path string `json:"path"`
	Data string `json:"data"`
	Name string `json:"name"`
}

func (s *Server) handleSetFixedImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a setFixedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	var f session.File
	var err error
	switch {
	case a.Path != "":
		f, err = readFile(a.Path)
	case a.Data != "":
		f, err = decodeInline(imageArg{Name: a.Name, Data: a.Data})
	default:
		err = fmt.Errorf("path or data is required")
	}
	if err != nil {
		return nil, err
	}
	return s.session.SetFixed(ctx, f.Name, f.Data)
}

type addImagesArgs struct {
	Paths  []string   `json:"paths"`
	Images []imageArg `json:"images"`
}

func (s *Server) handleAddImages(args json.RawMessage) (interface{}, error) {
	var a addImagesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 && len(a.Images) == 0 {
		return nil, fmt.Errorf("paths or images is required")
	}

	var files []session.File
	var unreadable []session.FileError
	for _, p := range a.Paths {
		f, err := readFile(p)
		if err != nil {
			unreadable = append(unreadable, session.FileError{Name: p, Error: err.Error()})
			continue
		}
		files = append(files, f)
	}
	for _, img := range a.Images {
		f, err := decodeInline(img)
		if err != nil {
			unreadable = append(unreadable, session.FileError{Name: img.Name, Error: err.Error()})
			continue
		}
		files = append(files, f)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("failed to read any of %d images", len(unreadable))
	}
	res, err := s.session.AddPool(files)
	if err != nil {
		return nil, err
	}
	res.Failed = append(unreadable, res.Failed...)
	return res, nil
}

type removeImageArgs struct {
	ID string `json:"id"`
}

func (s *Server) handleRemoveImage(args json.RawMessage) (interface{}, error) {
	var a removeImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ID == "" {
		return nil, fmt.Errorf("id is required")
	}
	if err := s.session.Remove(a.ID); err != nil {
		return nil, err
	}
	return s.session.Status(), nil
}

// readFile loads an image file from disk, named by its base name.
func readFile(path string) (session.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return session.File{}, fmt.Errorf("failed to read image: %w", err)
	}
	return session.File{Name: filepath.Base(path), Data: data}, nil
}

func decodeInline(img imageArg) (session.File, error) {
	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return session.File{}, fmt.Errorf("invalid base64 image data: %w", err)
	}
	name := img.Name
	if name == "" {
		name = "upload"
	}
	return session.File{Name: name, Data: data}, nil
}

// === Generation Handlers ===

type generateArgs struct {
	Template    string `json:"template"`
	AspectRatio string `json:"aspect_ratio"`
	Count       int    `json:"count"`
}

// generateResult is a generation with the job ids listed up front.
type generateResult struct {
	*session.Generation
	JobIDs []string `json:"job_ids"`
}

func (s *Server) handleGenerate(args json.RawMessage) (interface{}, error) {
	var a generateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	gen, err := s.generate(a.Template, a.AspectRatio, a.Count)
	if err != nil {
		return nil, err
	}
	res := generateResult{Generation: gen, JobIDs: make([]string, len(gen.Jobs))}
	for i, job := range gen.Jobs {
		res.JobIDs[i] = job.ID
	}
	return res, nil
}

type renderPreviewArgs struct {
	JobID string `json:"job_id"`
	Size  string `json:"size"`
}

func (s *Server) handleRenderPreview(args json.RawMessage) (interface{}, error) {
	var a renderPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.JobID == "" {
		return nil, fmt.Errorf("job_id is required")
	}
	width, err := s.previewWidth(a.Size)
	if err != nil {
		return nil, err
	}
	surface, _, err := s.renderJob(a.JobID, width)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBase64(surface, imaging.JPEG, s.cfg.JPEG.Preview)
}

type exportArgs struct {
	Path    string `json:"path"`
	JobID   string `json:"job_id"`
	Quality string `json:"quality"`
}

type exportResult struct {
	Path       string `json:"path"`
	Composites int    `json:"composites"`
	Bytes      int    `json:"bytes"`
}

func (s *Server) handleExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	quality, err := s.qualityOrDefault(a.Quality)
	if err != nil {
		return nil, err
	}

	res := exportResult{Path: a.Path}
	data, err := exportToBuffer(func(w io.Writer) error {
		if a.JobID != "" {
			res.Composites = 1
			return s.writePackage(w, a.JobID, quality)
		}
		n, err := s.writeExport(ctx, w, quality)
		res.Composites = n
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(a.Path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write archive: %w", err)
	}
	res.Bytes = len(data)
	return res, nil
}

// isNotFound reports whether err names something the session does not hold.
func isNotFound(err error) bool {
	return errors.Is(err, session.ErrUnknownImage) || errors.Is(err, session.ErrUnknownJob) ||
		errors.Is(err, layout.ErrUnknownTemplate)
}
