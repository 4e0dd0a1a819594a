package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/collage-mcp/internal/composition"
	"github.com/ironsheep/collage-mcp/internal/config"
	"github.com/ironsheep/collage-mcp/internal/export"
	"github.com/ironsheep/collage-mcp/internal/imaging"
	"github.com/ironsheep/collage-mcp/internal/layout"
	"github.com/ironsheep/collage-mcp/internal/server"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	fixed    string   // fixed hero image
	pool     []string // pool image files or directories
	template string   // template id
	aspect   string   // aspect ratio preset or W:H
	quality  string   // 1k, 2k, 4k or a pixel width
	count    int      // number of variations
	seed     uint64   // generator seed, used when set
	out      string   // zip archive to write
	dir      string   // directory to write composite_N.jpg into
	analyze  string   // fixed image analyzer
}

func newGenerateCmd(a *app) *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of collages from image files",
		Long: `Generates collage variations from a fixed hero image and a pool of photos
and writes them as JPEG files, either into a directory or into a zip archive
with a manifest.`,
		Example: `  # 20 square collages from a folder, zipped
  collage-mcp generate --fixed front.jpg --pool photos/ --out collages.zip

  # Reproducible story-format batch at 2k into a directory
  collage-mcp generate --pool photos/ --template hero-left --aspect 9:16 \
    --quality 2k --count 5 --seed 42 --dir out/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.out == "" && opts.dir == "" {
				return errors.New("one of --out or --dir is required")
			}
			if len(opts.pool) == 0 && opts.fixed == "" {
				return errors.New("no images given: use --fixed and --pool")
			}
			var gen *composition.Generator
			if cmd.Flags().Changed("seed") {
				gen = composition.NewGenerator(composition.WithSeed(opts.seed))
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), a.cfg, opts, gen)
		},
	}

	cmd.Flags().StringVar(&opts.fixed, "fixed", "", "fixed hero image")
	cmd.Flags().StringSliceVarP(&opts.pool, "pool", "p", nil, "pool images or directories (repeatable)")
	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template id (default from config)")
	cmd.Flags().StringVarP(&opts.aspect, "aspect", "a", "", "aspect ratio, e.g. 1:1, 9:16, 1200x628 (default from config)")
	cmd.Flags().StringVarP(&opts.quality, "quality", "q", "", "output width: 1k, 2k or 4k (default from config)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "number of variations (default from config)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible batches")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "zip archive to write")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "directory to write JPEG files into")
	cmd.Flags().StringVar(&opts.analyze, "analyze", "", "fixed image analyzer: gemini, saliency or none (default from config)")

	return cmd
}

// runGenerate loads the images, generates variations and writes them out,
// reporting the written files to w. A nil gen uses the session's default
// generator.
func runGenerate(ctx context.Context, w io.Writer, cfg config.Config, opts generateOpts, gen *composition.Generator) error {
	logger := loggerFromContext(ctx)

	if opts.template == "" {
		opts.template = cfg.Template
	}
	if opts.aspect == "" {
		opts.aspect = cfg.AspectRatio
	}
	if opts.quality == "" {
		opts.quality = cfg.Quality
	}
	if opts.count <= 0 {
		opts.count = cfg.Count
	}
	if opts.analyze == "" {
		opts.analyze = cfg.Analysis.Analyzer
	}

	reg, err := layout.Builtin()
	if err != nil {
		return err
	}
	tmpl, err := reg.Lookup(opts.template)
	if err != nil {
		return err
	}
	aspect, err := config.ParseAspectRatio(opts.aspect)
	if err != nil {
		return err
	}
	quality, err := config.ParseQuality(opts.quality)
	if err != nil {
		return err
	}

	sess, err := newSession(cfg, opts.analyze, gen, logger)
	if err != nil {
		return err
	}
	if opts.fixed != "" {
		f, err := readImageFile(opts.fixed)
		if err != nil {
			return err
		}
		img, err := sess.SetFixed(ctx, f.Name, f.Data)
		if err != nil {
			return err
		}
		logger.Info("Fixed image", "name", f.Name, "category", img.Category, "description", img.Description)
	}
	if len(opts.pool) > 0 {
		files, err := collectFiles(opts.pool)
		if err != nil {
			return err
		}
		res, err := sess.AddPool(files)
		if err != nil {
			return err
		}
		for _, f := range res.Failed {
			logger.Warn("Skipped image", "name", f.Name, "err", f.Error)
		}
		if res.Notice != "" {
			logger.Warn(res.Notice)
		}
	}

	generation, err := sess.Generate(tmpl, aspect, opts.count)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	renderer := server.NewRenderer(cfg, logger)
	scale := quality.Scale(renderer.BaseWidth())

	if opts.dir != "" {
		if err := os.MkdirAll(opts.dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	composites := make([]export.Composite, len(generation.Jobs))
	err = imaging.RenderBatch(ctx, renderer, generation.Jobs, tmpl, sess.Snapshot(), scale, cfg.Concurrency,
		func(i int, job composition.Job, surface *image.RGBA) error {
			data, err := imaging.EncodeBytes(surface, imaging.JPEG, cfg.JPEG.Export)
			if err != nil {
				return err
			}
			composites[i] = export.Composite{Job: job, Data: data}
			if opts.dir != "" {
				path := filepath.Join(opts.dir, export.CompositeName(i))
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	if opts.out != "" {
		width, height := renderer.SurfaceSize(aspect, scale)
		meta := export.Manifest{
			CreatedAt:   time.Now(),
			TemplateID:  tmpl.ID,
			AspectRatio: aspect,
			Width:       width,
			Height:      height,
		}
		if err := writeArchive(opts.out, composites, meta, logger); err != nil {
			return err
		}
	}

	prog.done(fmt.Sprintf("Rendered %d collages with %s at %s", len(composites), tmpl.Name, quality))
	printSuccess(w, "%d collages", len(composites))
	if opts.dir != "" {
		printFile(w, opts.dir)
	}
	if opts.out != "" {
		printFile(w, opts.out)
	}
	return nil
}

// writeArchive writes the batch zip to path, removing it again on failure.
func writeArchive(path string, composites []export.Composite, meta export.Manifest, logger *log.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if err := export.WriteComposites(f, composites, meta); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	logger.Info("Wrote archive", "path", path)
	return nil
}
