package layout

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed templates.toml
var builtinTemplates string

// Template ids of the layouts shipped in templates.toml.
const (
	ClassicGrid     = "grid-2x2"
	HeroLeft        = "hero-left"
	EditorialRight  = "editorial-right"
	ProductShowcase = "product-showcase"
	BottomFocus     = "bottom-focus"
	GallerySix      = "grid-six"
	QuadGallery     = "quad-gallery"
	CenterHero      = "center-hero"
)

// Registry is an immutable, ordered set of templates keyed by id.
//
// A Registry is safe for concurrent use because it never changes after
// construction. Callers must not mutate the templates it returns.
type Registry struct {
	order []string
	byID  map[string]*Template
}

// templateFile mirrors the TOML document layout.
type templateFile struct {
	Templates []templateEntry `toml:"template"`
}

type templateEntry struct {
	ID          string      `toml:"id"`
	Name        string      `toml:"name"`
	Description string      `toml:"description"`
	Hero        *heroEntry  `toml:"hero"`
	Slots       []slotEntry `toml:"slots"`
}

type heroEntry struct {
	Slot     string `toml:"slot"`
	Category string `toml:"category"`
}

type slotEntry struct {
	ID     string  `toml:"id"`
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	W      float64 `toml:"w"`
	H      float64 `toml:"h"`
	Radius float64 `toml:"radius"`
	Z      int     `toml:"z"`
}

// NewRegistry builds a registry from templates, validating each one and
// rejecting duplicate template ids.
func NewRegistry(templates []Template) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Template, len(templates))}
	for i := range templates {
		t := templates[i]
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		t.Slots = append([]Slot(nil), t.Slots...)
		if t.Hero != nil {
			hero := *t.Hero
			t.Hero = &hero
		}
		r.byID[t.ID] = &t
		r.order = append(r.order, t.ID)
	}
	return r, nil
}

// LoadRegistry decodes a TOML template document into a registry.
func LoadRegistry(r io.Reader) (*Registry, error) {
	var doc templateFile
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}

	templates := make([]Template, 0, len(doc.Templates))
	for _, e := range doc.Templates {
		t := Template{ID: e.ID, Name: e.Name, Description: e.Description}
		for _, s := range e.Slots {
			t.Slots = append(t.Slots, Slot{
				Rect:         Rect{X: s.X, Y: s.Y, W: s.W, H: s.H},
				ID:           s.ID,
				CornerRadius: s.Radius,
				StackOrder:   s.Z,
			})
		}
		if e.Hero != nil {
			rule := &HeroRule{SlotID: e.Hero.Slot}
			if e.Hero.Category != "" {
				c, err := ParseCategory(e.Hero.Category)
				if err != nil {
					return nil, fmt.Errorf("template %s: %w", e.ID, err)
				}
				rule.PreferredCategory = c
			}
			t.Hero = rule
		}
		templates = append(templates, t)
	}
	return NewRegistry(templates)
}

var (
	builtinOnce sync.Once
	builtin     *Registry
	builtinErr  error
)

// Builtin returns the registry of layouts embedded in the binary. It is
// decoded once on first use.
func Builtin() (*Registry, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = LoadRegistry(strings.NewReader(builtinTemplates))
	})
	return builtin, builtinErr
}

// MustBuiltin is like Builtin but panics if the embedded data is invalid.
func MustBuiltin() *Registry {
	r, err := Builtin()
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the template with the given id.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// ErrUnknownTemplate is returned by Lookup for an id not in the registry.
var ErrUnknownTemplate = errors.New("unknown template")

// Lookup is like Get but returns a descriptive error for unknown ids.
func (r *Registry) Lookup(id string) (*Template, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return t, nil
}

// Default returns the first template in declaration order, or nil for an
// empty registry.
func (r *Registry) Default() *Template {
	if len(r.order) == 0 {
		return nil
	}
	return r.byID[r.order[0]]
}

// All returns the templates in declaration order.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// IDs returns the template ids in declaration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of templates.
func (r *Registry) Len() int {
	return len(r.order)
}
