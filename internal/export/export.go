// Package export packages rendered composites into zip archives.
//
// Two layouts are produced: a batch archive holding every composite of a
// generation plus a manifest, and a single-job package holding one
// composite next to the original photos it was made from.
package export

import (
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/collage-mcp/internal/composition"
)

// Archive entry names.
const (
	ManifestName  = "manifest.yaml"
	ResultName    = "composite_result.jpg"
	SourcesFolder = "source_images"
)

// Composite is one rendered, encoded job.
type Composite struct {
	Job  composition.Job
	Data []byte
}

// SourceFile is an original upload.
type SourceFile struct {
	Name string
	Data []byte
}

// Manifest describes the contents of a batch archive.
type Manifest struct {
	CreatedAt   time.Time       `yaml:"created_at"`
	TemplateID  string          `yaml:"template_id"`
	AspectRatio float64         `yaml:"aspect_ratio"`
	Width       int             `yaml:"width,omitempty"`
	Height      int             `yaml:"height,omitempty"`
	Composites  []ManifestEntry `yaml:"composites"`
}

// ManifestEntry is one composite of a batch archive.
type ManifestEntry struct {
	File        string                       `yaml:"file"`
	JobID       string                       `yaml:"job_id"`
	Assignments []composition.SlotAssignment `yaml:"assignments"`
}

// CompositeName returns the archive name of the i-th (0-based) composite.
func CompositeName(i int) string {
	return fmt.Sprintf("composite_%d.jpg", i+1)
}

// WriteComposites writes a zip holding composite_1.jpg ... composite_N.jpg
// in order, followed by a manifest. meta supplies the manifest header; its
// Composites field is filled in here.
func WriteComposites(w io.Writer, composites []Composite, meta Manifest) error {
	zw := zip.NewWriter(w)

	meta.Composites = make([]ManifestEntry, 0, len(composites))
	for i, c := range composites {
		name := CompositeName(i)
		if err := writeEntry(zw, name, c.Data, meta.CreatedAt, zip.Store); err != nil {
			return err
		}
		meta.Composites = append(meta.Composites, ManifestEntry{
			File:        name,
			JobID:       c.Job.ID,
			Assignments: c.Job.Assignments,
		})
	}

	manifest, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := writeEntry(zw, ManifestName, manifest, meta.CreatedAt, zip.Deflate); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

// WritePackage writes a zip with the composite as composite_result.jpg and,
// under source_images/, the original of every assigned image as
// slot_<n>_<slotID>.<ext>, n counting assignments from 1. Assignments whose
// source is unknown are left out.
func WritePackage(w io.Writer, composite []byte, job composition.Job, sources map[string]SourceFile, modified time.Time) error {
	zw := zip.NewWriter(w)

	if err := writeEntry(zw, ResultName, composite, modified, zip.Store); err != nil {
		return err
	}

	for i, a := range job.Assignments {
		src, ok := sources[a.ImageID]
		if !ok {
			continue
		}
		name := path.Join(SourcesFolder, SourceEntryName(i, a.SlotID, src.Name))
		if err := writeEntry(zw, name, src.Data, modified, zip.Store); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

// SourceEntryName names the i-th (0-based) assignment's original inside a
// package. The extension is taken from the upload name, jpg when it has none.
func SourceEntryName(i int, slotID, original string) string {
	ext := "jpg"
	if dot := strings.LastIndex(original, "."); dot >= 0 && dot < len(original)-1 {
		ext = original[dot+1:]
	}
	return fmt.Sprintf("slot_%d_%s.%s", i+1, slotID, ext)
}

// PackageName is the download name of a job package.
func PackageName(jobID string) string {
	return "package_" + jobID + ".zip"
}

// writeEntry adds one file. Already compressed images are stored as is.
func writeEntry(zw *zip.Writer, name string, data []byte, modified time.Time, method uint16) error {
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: modified,
	}
	f, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
