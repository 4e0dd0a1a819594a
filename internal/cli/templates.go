package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/collage-mcp/internal/config"
	"github.com/ironsheep/collage-mcp/internal/imaging"
	"github.com/ironsheep/collage-mcp/internal/layout"
)

func newTemplatesCmd(a *app) *cobra.Command {
	var wireframeDir, aspect string
	var width int

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List collage templates",
		Long: `Lists the built-in collage templates with their slot count, hero slot and
preferred hero category. With --wireframe, a numbered PNG thumbnail of each
template is written to the given directory.`,
		Example: `  collage-mcp templates
  collage-mcp templates --wireframe thumbs/ --aspect 16:9 --width 320`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := layout.Builtin()
			if err != nil {
				return err
			}
			if err := printTemplates(cmd.OutOrStdout(), reg); err != nil {
				return err
			}
			if wireframeDir == "" {
				return nil
			}

			if aspect == "" {
				aspect = a.cfg.AspectRatio
			}
			ratio, err := config.ParseAspectRatio(aspect)
			if err != nil {
				return err
			}
			n, err := writeWireframes(wireframeDir, reg, width, ratio)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Wrote %d wireframes", n)
			printFile(cmd.OutOrStdout(), wireframeDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&wireframeDir, "wireframe", "", "directory to write template thumbnails into")
	cmd.Flags().IntVarP(&width, "width", "w", 240, "thumbnail width in pixels")
	cmd.Flags().StringVarP(&aspect, "aspect", "a", "", "thumbnail aspect ratio (default from config)")

	return cmd
}

// Column widths of the template listing.
const (
	colID    = 18
	colName  = 20
	colSlots = 7
	colHero  = 7
)

func printTemplates(w io.Writer, reg *layout.Registry) error {
	header := column("ID", colID) + column("NAME", colName) + column("SLOTS", colSlots) + column("HERO", colHero) + "PREFERS"
	if _, err := fmt.Fprintln(w, styleTitle.Render(header)); err != nil {
		return err
	}
	for _, t := range reg.All() {
		hero, _ := t.HeroSlotID()
		prefers := "-"
		if c, ok := t.PreferredHeroCategory(); ok {
			prefers = string(c)
		}
		line := column(t.ID, colID) + column(t.Name, colName) +
			column(fmt.Sprint(len(t.Slots)), colSlots) + column(hero, colHero) + styleDim.Render(prefers)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeWireframes writes <id>.png for every template and returns how many
// were written.
func writeWireframes(dir string, reg *layout.Registry, width int, aspect float64) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create wireframe directory: %w", err)
	}
	style := imaging.DefaultWireframeStyle()
	for i, t := range reg.All() {
		img, err := imaging.DrawTemplateWireframe(t, width, aspect, style)
		if err != nil {
			return i, fmt.Errorf("failed to draw %s: %w", t.ID, err)
		}
		data, err := imaging.EncodeBytes(img, imaging.PNG, 90)
		if err != nil {
			return i, err
		}
		path := filepath.Join(dir, t.ID+imaging.PNG.Ext())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return i, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return reg.Len(), nil
}
