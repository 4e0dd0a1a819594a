// Package config holds the tunables of collage generation and their
// defaults, optionally overridden from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/collage-mcp/internal/imaging"
)

// ErrInvalidConfig is wrapped by every validation error in this package.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full set of tunables.
type Config struct {
	// Count is the default number of variations per generation.
	Count int `toml:"count"`

	// PoolLimit caps the variable pool; extra images are dropped.
	PoolLimit int `toml:"pool_limit"`

	// MinImages is the fewest images (fixed plus pool) a generation needs.
	MinImages int `toml:"min_images"`

	AspectRatio string `toml:"aspect_ratio"`
	Quality     string `toml:"quality"`
	Template    string `toml:"template"`

	// BaseWidth is the surface width at render scale 1.
	BaseWidth int `toml:"base_width"`

	Background string `toml:"background"`

	// Concurrency bounds parallel renders.
	Concurrency int `toml:"concurrency"`

	JPEG     JPEGConfig     `toml:"jpeg"`
	Analysis AnalysisConfig `toml:"analysis"`
	HTTP     HTTPConfig     `toml:"http"`
}

// JPEGConfig sets the encoder quality per output kind.
type JPEGConfig struct {
	Preview int `toml:"preview"`
	Export  int `toml:"export"`
	Package int `toml:"package"`
}

// AnalysisConfig selects how the fixed image is analyzed.
type AnalysisConfig struct {
	// Analyzer is "gemini", "saliency" or "none".
	Analyzer string `toml:"analyzer"`
	Model    string `toml:"model"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr string `toml:"addr"`

	// MaxUploadMB bounds a multipart upload request.
	MaxUploadMB int64 `toml:"max_upload_mb"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Count:       20,
		PoolLimit:   20,
		MinImages:   3,
		AspectRatio: "1:1",
		Quality:     "1k",
		Template:    "grid-2x2",
		BaseWidth:   imaging.DefaultBaseWidth,
		Background:  "#ffffff",
		Concurrency: runtime.NumCPU(),
		JPEG: JPEGConfig{
			Preview: 85,
			Export:  92,
			Package: 95,
		},
		Analysis: AnalysisConfig{
			Analyzer: "gemini",
		},
		HTTP: HTTPConfig{
			Addr:        ":8080",
			MaxUploadMB: 256,
		},
	}
}

// Load returns the defaults overridden by the TOML file at path. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values generation cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Count <= 0:
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidConfig, c.Count)
	case c.PoolLimit <= 0:
		return fmt.Errorf("%w: pool_limit must be positive, got %d", ErrInvalidConfig, c.PoolLimit)
	case c.MinImages < 1:
		return fmt.Errorf("%w: min_images must be at least 1, got %d", ErrInvalidConfig, c.MinImages)
	case c.BaseWidth <= 0:
		return fmt.Errorf("%w: base_width must be positive, got %d", ErrInvalidConfig, c.BaseWidth)
	case c.Concurrency <= 0:
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConfig, c.Concurrency)
	}
	for name, q := range map[string]int{"preview": c.JPEG.Preview, "export": c.JPEG.Export, "package": c.JPEG.Package} {
		if q < 1 || q > 100 {
			return fmt.Errorf("%w: jpeg.%s quality must be 1-100, got %d", ErrInvalidConfig, name, q)
		}
	}
	if _, err := ParseAspectRatio(c.AspectRatio); err != nil {
		return err
	}
	if _, err := ParseQuality(c.Quality); err != nil {
		return err
	}
	if _, err := imaging.ParseColor(c.Background); err != nil {
		return fmt.Errorf("%w: background: %v", ErrInvalidConfig, err)
	}
	switch c.Analysis.Analyzer {
	case "gemini", "saliency", "none":
	default:
		return fmt.Errorf("%w: unknown analyzer %q", ErrInvalidConfig, c.Analysis.Analyzer)
	}
	return nil
}

// Aspect returns the parsed default aspect ratio.
func (c Config) Aspect() float64 {
	v, err := ParseAspectRatio(c.AspectRatio)
	if err != nil {
		return 1
	}
	return v
}

// QualityTier returns the parsed default quality.
func (c Config) QualityTier() QualityTier {
	q, err := ParseQuality(c.Quality)
	if err != nil {
		return Quality1K
	}
	return q
}
