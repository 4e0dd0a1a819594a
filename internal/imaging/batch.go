package imaging

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/collage-mcp/internal/composition"
	"github.com/ironsheep/collage-mcp/internal/layout"
)

// RenderFunc receives one finished surface. It may be called from several
// goroutines at once, but never twice for the same index.
type RenderFunc func(i int, job composition.Job, surface *image.RGBA) error

// RenderBatch renders jobs in parallel, at most limit at a time (limit <= 0
// means no bound), and hands each surface to fn.
//
// images is shared read-only by all workers. The first error from a render
// or from fn cancels the remaining, not yet started jobs and is returned.
func RenderBatch(ctx context.Context, r *Renderer, jobs []composition.Job, tmpl *layout.Template, images Table, scale float64, limit int, fn RenderFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			surface, err := r.Render(job, tmpl, images, scale)
			if err != nil {
				return fmt.Errorf("failed to render job %d: %w", i+1, err)
			}
			return fn(i, job, surface)
		})
	}

	return g.Wait()
}
