package composition

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/collage-mcp/internal/layout"
)

// ErrInvalidRequest is wrapped by every validation error returned from
// Generate. Invalid requests are rejected before any job is produced.
var ErrInvalidRequest = errors.New("invalid generation request")

// Request describes one batch of variations.
type Request struct {
	// Fixed, when set, goes into the hero slot of every job. It is not part
	// of Pool and is never consumed from it.
	Fixed *SourceImage

	// Pool is the variable pool images rotate through.
	Pool []SourceImage

	Template *layout.Template

	// AspectRatio is the width/height of the whole composite.
	AspectRatio float64

	// Count is the number of jobs to produce.
	Count int
}

// Generator produces composition jobs. It is safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	nextID func(i int) string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRand sets the random source used to shuffle the pool. Supply a seeded
// source to make generation reproducible.
func WithRand(r *rand.Rand) GeneratorOption {
	return func(g *Generator) { g.rng = r }
}

// WithSeed is shorthand for WithRand with a PCG source seeded from seed.
func WithSeed(seed uint64) GeneratorOption {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithIDFunc sets the function that names job i of a batch.
func WithIDFunc(fn func(i int) string) GeneratorOption {
	return func(g *Generator) { g.nextID = fn }
}

// NewGenerator returns a generator with an unseeded random source and
// UUID job ids unless options say otherwise.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		nextID: func(int) string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns exactly req.Count jobs.
//
// Each job starts from its own copy of the pool. The hero slot gets the fixed
// image when there is one; otherwise it gets the i-th candidate (modulo)
// among pool images of the template's preferred category, falling back to
// the i-th pool image, and that image leaves the job's pool. The rest of the
// pool is shuffled once and the remaining slots take images from its head in
// declaration order until it runs out. An image never fills two slots of the
// same job.
func (g *Generator) Generate(req Request) ([]Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tmpl := req.Template
	heroSlot, hasHero := heroSlotOf(tmpl)
	preferred, hasPreferred := tmpl.PreferredHeroCategory()

	g.mu.Lock()
	defer g.mu.Unlock()

	jobs := make([]Job, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		pool := make([]SourceImage, len(req.Pool))
		copy(pool, req.Pool)

		var assignments []SlotAssignment

		if hasHero {
			var hero *SourceImage
			if req.Fixed != nil {
				hero = req.Fixed
			} else if idx := pickHero(pool, i, preferred, hasPreferred); idx >= 0 {
				picked := pool[idx]
				hero = &picked
				pool = append(pool[:idx], pool[idx+1:]...)
			}
			if hero != nil {
				assignments = append(assignments, assign(heroSlot, *hero, req.AspectRatio))
			}
		}

		g.rng.Shuffle(len(pool), func(a, b int) {
			pool[a], pool[b] = pool[b], pool[a]
		})

		for _, slot := range tmpl.Slots {
			if hasHero && slot.ID == heroSlot.ID {
				continue
			}
			if len(pool) == 0 {
				// Out of images: the slot stays empty rather than
				// repeating an image inside this job.
				continue
			}
			assignments = append(assignments, assign(slot, pool[0], req.AspectRatio))
			pool = pool[1:]
		}

		jobs = append(jobs, Job{
			ID:          g.nextID(i),
			TemplateID:  tmpl.ID,
			AspectRatio: req.AspectRatio,
			Assignments: assignments,
		})
	}

	return jobs, nil
}

// Validate checks the request before any job is produced.
func (req Request) Validate() error {
	if req.Template == nil {
		return fmt.Errorf("%w: template is required", ErrInvalidRequest)
	}
	if math.IsNaN(req.AspectRatio) || math.IsInf(req.AspectRatio, 0) || req.AspectRatio <= 0 {
		return fmt.Errorf("%w: aspect ratio must be a positive number, got %v", ErrInvalidRequest, req.AspectRatio)
	}
	if req.Count <= 0 {
		return fmt.Errorf("%w: job count must be positive, got %d", ErrInvalidRequest, req.Count)
	}

	seen := make(map[string]bool, len(req.Pool))
	for _, img := range req.Pool {
		if err := validateImage(img); err != nil {
			return err
		}
		if seen[img.ID] {
			return fmt.Errorf("%w: duplicate image id %q in pool", ErrInvalidRequest, img.ID)
		}
		seen[img.ID] = true
	}
	if req.Fixed != nil {
		if err := validateImage(*req.Fixed); err != nil {
			return err
		}
		if seen[req.Fixed.ID] {
			return fmt.Errorf("%w: fixed image %q is also in the pool", ErrInvalidRequest, req.Fixed.ID)
		}
	}
	return nil
}

func validateImage(img SourceImage) error {
	if img.ID == "" {
		return fmt.Errorf("%w: image with empty id", ErrInvalidRequest)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: image %s has invalid dimensions %dx%d", ErrInvalidRequest, img.ID, img.Width, img.Height)
	}
	if !img.FocalPoint.IsFinite() {
		return fmt.Errorf("%w: image %s has a non-finite focal point", ErrInvalidRequest, img.ID)
	}
	return nil
}

// heroSlotOf resolves the template's hero slot.
func heroSlotOf(t *layout.Template) (layout.Slot, bool) {
	id, ok := t.HeroSlotID()
	if !ok {
		return layout.Slot{}, false
	}
	return t.Slot(id)
}

// pickHero returns the pool index of the hero for job i, or -1 when the pool
// is empty. Candidates of the preferred category win; the choice cycles
// through them by job index.
func pickHero(pool []SourceImage, i int, preferred layout.Category, hasPreferred bool) int {
	if hasPreferred {
		var candidates []int
		for idx, img := range pool {
			if img.Category == preferred {
				candidates = append(candidates, idx)
			}
		}
		if len(candidates) > 0 {
			return candidates[i%len(candidates)]
		}
	}
	if len(pool) == 0 {
		return -1
	}
	return i % len(pool)
}

func assign(slot layout.Slot, img SourceImage, surfaceAspect float64) SlotAssignment {
	return SlotAssignment{
		SlotID:  slot.ID,
		ImageID: img.ID,
		Crop:    ComputeCrop(img, slot.EffectiveAspectRatio(surfaceAspect)),
	}
}
