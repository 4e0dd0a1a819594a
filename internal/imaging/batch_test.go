package imaging

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/ironsheep/collage-mcp/internal/composition"
	"github.com/ironsheep/collage-mcp/internal/layout"
)

func TestRenderBatch(t *testing.T) {
	tmpl := classicGrid(t)
	pool := []composition.SourceImage{
		composition.NewSourceImage("a", 40, 30),
		composition.NewSourceImage("b", 30, 40),
		composition.NewSourceImage("c", 40, 40),
	}
	images := Table{
		"a": createInMemoryImage(40, 30, red),
		"b": createInMemoryImage(30, 40, green),
		"c": createInMemoryImage(40, 40, blue),
	}
	jobs, err := composition.NewGenerator().Generate(composition.Request{
		Pool: pool, Template: tmpl, AspectRatio: 1, Count: 6,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var mu sync.Mutex
	got := make([]*image.RGBA, len(jobs))
	err = RenderBatch(context.Background(), NewRenderer(WithBaseWidth(60)), jobs, tmpl, images, 1, 2,
		func(i int, job composition.Job, surface *image.RGBA) error {
			if job.ID != jobs[i].ID {
				t.Errorf("job %d: got id %s, want %s", i, job.ID, jobs[i].ID)
			}
			mu.Lock()
			got[i] = surface
			mu.Unlock()
			return nil
		})
	if err != nil {
		t.Fatalf("RenderBatch failed: %v", err)
	}

	for i, img := range got {
		if img == nil {
			t.Errorf("job %d was not rendered", i)
			continue
		}
		if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 60 {
			t.Errorf("job %d: size %dx%d, want 60x60", i, b.Dx(), b.Dy())
		}
	}
}

func TestRenderBatch_CallbackError(t *testing.T) {
	tmpl := classicGrid(t)
	jobs := []composition.Job{
		{ID: "1", TemplateID: tmpl.ID, AspectRatio: 1},
		{ID: "2", TemplateID: tmpl.ID, AspectRatio: 1},
	}
	boom := errors.New("disk full")

	err := RenderBatch(context.Background(), NewRenderer(WithBaseWidth(10)), jobs, tmpl, nil, 1, 1,
		func(int, composition.Job, *image.RGBA) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}

func TestRenderBatch_RenderError(t *testing.T) {
	tmpl := classicGrid(t)
	jobs := []composition.Job{{ID: "bad", TemplateID: layout.HeroLeft, AspectRatio: 1}}

	err := RenderBatch(context.Background(), NewRenderer(), jobs, tmpl, nil, 1, 0,
		func(int, composition.Job, *image.RGBA) error { return nil })
	if err == nil {
		t.Error("expected error for mismatched template, got nil")
	}
}

func TestRenderBatch_Canceled(t *testing.T) {
	tmpl := classicGrid(t)
	jobs := []composition.Job{{ID: "1", TemplateID: tmpl.ID, AspectRatio: 1}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := RenderBatch(ctx, NewRenderer(WithBaseWidth(10)), jobs, tmpl, nil, 1, 1,
		func(int, composition.Job, *image.RGBA) error { called = true; return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if called {
		t.Error("callback ran after cancellation")
	}
}
