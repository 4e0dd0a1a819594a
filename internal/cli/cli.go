package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/collage-mcp/internal/analysis"
	"github.com/ironsheep/collage-mcp/internal/composition"
	"github.com/ironsheep/collage-mcp/internal/config"
	"github.com/ironsheep/collage-mcp/internal/session"
)

// imageExts are the file extensions picked up from pool directories.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// newAnalyzer returns the analyzer named kind: gemini, saliency or none.
func newAnalyzer(kind string, cfg config.AnalysisConfig) (analysis.Analyzer, error) {
	switch strings.ToLower(kind) {
	case "gemini":
		return analysis.NewGemini("", cfg.Model), nil
	case "saliency":
		return analysis.NewSaliency(), nil
	case "none", "":
		return analysis.None, nil
	}
	return nil, fmt.Errorf("unknown analyzer %q (want gemini, saliency or none)", kind)
}

// newSession builds a session from cfg. A non-nil gen replaces the default
// generator.
func newSession(cfg config.Config, analyzerKind string, gen *composition.Generator, logger *log.Logger) (*session.Session, error) {
	analyzer, err := newAnalyzer(analyzerKind, cfg.Analysis)
	if err != nil {
		return nil, err
	}
	opts := []session.Option{
		session.WithPoolLimit(cfg.PoolLimit),
		session.WithMinImages(cfg.MinImages),
		session.WithLogger(logger),
	}
	if gen != nil {
		opts = append(opts, session.WithGenerator(gen))
	}
	return session.New(analyzer, opts...), nil
}

// collectFiles reads the given files and, for directories, every image
// file directly inside them in name order.
func collectFiles(paths []string) ([]session.File, error) {
	var files []session.File
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		if !info.IsDir() {
			f, err := readImageFile(p)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", p, err)
		}
		var names []string
		for _, e := range entries {
			if e.Type().IsRegular() && imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			f, err := readImageFile(filepath.Join(p, name))
			if err != nil {
				return nil, err
			}
			files = append(files, f)
		}
	}
	return files, nil
}

func readImageFile(path string) (session.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return session.File{}, fmt.Errorf("failed to read image: %w", err)
	}
	return session.File{Name: filepath.Base(path), Data: data}, nil
}
