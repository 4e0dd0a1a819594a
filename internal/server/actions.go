package server

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	"github.com/ironsheep/collage-mcp/internal/composition"
	"github.com/ironsheep/collage-mcp/internal/config"
	"github.com/ironsheep/collage-mcp/internal/export"
	"github.com/ironsheep/collage-mcp/internal/imaging"
	"github.com/ironsheep/collage-mcp/internal/layout"
	"github.com/ironsheep/collage-mcp/internal/session"
)

// The actions below are shared by the MCP tools and the HTTP API.

// TemplateInfo is a template as listed to clients.
type TemplateInfo struct {
	*layout.Template
	HeroSlotID            string          `json:"hero_slot_id"`
	PreferredHeroCategory layout.Category `json:"preferred_hero_category,omitempty"`
}

// TemplateList is the answer to a template listing.
type TemplateList struct {
	Templates     []TemplateInfo        `json:"templates"`
	AspectRatios  []config.AspectPreset `json:"aspect_ratios"`
	DefaultID     string                `json:"default_template"`
	QualityLevels []string              `json:"quality_levels"`
}

func (s *Server) listTemplates() TemplateList {
	list := TemplateList{
		AspectRatios:  config.AspectPresets(),
		DefaultID:     s.registry.Default().ID,
		QualityLevels: []string{config.Quality1K.String(), config.Quality2K.String(), config.Quality4K.String()},
	}
	for _, t := range s.registry.All() {
		info := TemplateInfo{Template: t}
		info.HeroSlotID, _ = t.HeroSlotID()
		info.PreferredHeroCategory, _ = t.PreferredHeroCategory()
		list.Templates = append(list.Templates, info)
	}
	return list
}

// templateOrDefault looks up id, or the configured default when id is empty.
func (s *Server) templateOrDefault(id string) (*layout.Template, error) {
	if id == "" {
		id = s.cfg.Template
	}
	if id == "" {
		return s.registry.Default(), nil
	}
	return s.registry.Lookup(id)
}

func (s *Server) aspectOrDefault(v string) (float64, error) {
	if v == "" {
		return s.cfg.Aspect(), nil
	}
	return config.ParseAspectRatio(v)
}

func (s *Server) wireframe(id string, width int, aspect string) (*image.NRGBA, error) {
	tmpl, err := s.registry.Lookup(id)
	if err != nil {
		return nil, err
	}
	ratio, err := s.aspectOrDefault(aspect)
	if err != nil {
		return nil, err
	}
	if width <= 0 {
		width = 240
	}
	return imaging.DrawTemplateWireframe(tmpl, width, ratio, imaging.DefaultWireframeStyle())
}

func (s *Server) generate(templateID, aspect string, count int) (*session.Generation, error) {
	tmpl, err := s.templateOrDefault(templateID)
	if err != nil {
		return nil, err
	}
	ratio, err := s.aspectOrDefault(aspect)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = s.cfg.Count
	}
	return s.session.Generate(tmpl, ratio, count)
}

// renderJob renders a job of the last generation at the given output width.
func (s *Server) renderJob(jobID string, width int) (*image.RGBA, composition.Job, error) {
	job, _, err := s.session.Job(jobID)
	if err != nil {
		return nil, composition.Job{}, err
	}
	tmpl, err := s.registry.Lookup(job.TemplateID)
	if err != nil {
		return nil, job, err
	}
	scale := float64(width) / float64(s.renderer.BaseWidth())
	surface, err := s.renderer.Render(job, tmpl, s.session.Snapshot(), scale)
	if err != nil {
		return nil, job, err
	}
	return surface, job, nil
}

// previewWidth maps a preview size name to an output width.
func (s *Server) previewWidth(size string) (int, error) {
	switch size {
	case "", "thumbnail":
		return config.PreviewWidth, nil
	case "full":
		return s.renderer.BaseWidth(), nil
	}
	return 0, fmt.Errorf("unknown preview size: %s", size)
}

func (s *Server) qualityOrDefault(q string) (config.QualityTier, error) {
	if q == "" {
		return s.cfg.QualityTier(), nil
	}
	return config.ParseQuality(q)
}

// writeExport renders every job of the last generation at quality and
// writes the batch archive to w.
func (s *Server) writeExport(ctx context.Context, w io.Writer, quality config.QualityTier) (int, error) {
	gen, ok := s.session.Last()
	if !ok || len(gen.Jobs) == 0 {
		return 0, fmt.Errorf("nothing to export: generate variations first")
	}
	tmpl, err := s.registry.Lookup(gen.TemplateID)
	if err != nil {
		return 0, err
	}

	scale := quality.Scale(s.renderer.BaseWidth())
	composites := make([]export.Composite, len(gen.Jobs))
	err = imaging.RenderBatch(ctx, s.renderer, gen.Jobs, tmpl, s.session.Snapshot(), scale, s.cfg.Concurrency,
		func(i int, job composition.Job, surface *image.RGBA) error {
			data, err := imaging.EncodeBytes(surface, imaging.JPEG, s.cfg.JPEG.Export)
			if err != nil {
				return err
			}
			composites[i] = export.Composite{Job: job, Data: data}
			return nil
		})
	if err != nil {
		return 0, err
	}

	width, height := s.renderer.SurfaceSize(gen.AspectRatio, scale)
	meta := export.Manifest{
		CreatedAt:   s.now(),
		TemplateID:  gen.TemplateID,
		AspectRatio: gen.AspectRatio,
		Width:       width,
		Height:      height,
	}
	if err := export.WriteComposites(w, composites, meta); err != nil {
		return 0, err
	}
	s.logger.Info("exported composites", "count", len(composites), "quality", quality)
	return len(composites), nil
}

// writePackage renders one job at quality and writes it with its sources.
func (s *Server) writePackage(w io.Writer, jobID string, quality config.QualityTier) error {
	surface, job, err := s.renderJob(jobID, int(quality))
	if err != nil {
		return err
	}
	data, err := imaging.EncodeBytes(surface, imaging.JPEG, s.cfg.JPEG.Package)
	if err != nil {
		return err
	}

	sources := make(map[string]export.SourceFile)
	for id, src := range s.session.Sources() {
		sources[id] = export.SourceFile{Name: src.Name, Data: src.Data}
	}
	if err := export.WritePackage(w, data, job, sources, s.now()); err != nil {
		return err
	}
	s.logger.Info("exported package", "job", job.ID, "quality", quality)
	return nil
}

// exportToBuffer runs one of the writers into memory, so a failed export
// never leaves a partial file behind.
func exportToBuffer(fn func(w io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
