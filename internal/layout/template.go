package layout

import (
	"fmt"
	"sort"
)

// Slot is one rectangular region of a template.
type Slot struct {
	Rect

	// ID is unique within its template.
	ID string `json:"id"`

	// CornerRadius is the rounding radius as a fraction of surface width.
	CornerRadius float64 `json:"corner_radius"`

	// StackOrder controls draw order; higher values paint later, on top.
	StackOrder int `json:"stack_order"`
}

// EffectiveAspectRatio is the physical width/height ratio of the slot once
// the template is rendered on a surface with the given aspect ratio.
func (s Slot) EffectiveAspectRatio(surfaceAspect float64) float64 {
	return (s.W / s.H) * surfaceAspect
}

// HeroRule names the slot that receives the most prominent image and the
// category preferred for it.
type HeroRule struct {
	SlotID            string   `json:"slot_id"`
	PreferredCategory Category `json:"preferred_category,omitempty"`
}

// Template is a named, immutable collage layout.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slots       []Slot    `json:"slots"`
	Hero        *HeroRule `json:"hero,omitempty"`
}

// Slot returns the slot with the given id.
func (t *Template) Slot(id string) (Slot, bool) {
	for _, s := range t.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// HeroSlotID resolves the hero slot: the rule's slot when the template has a
// rule, otherwise the first declared slot. It returns false for a template
// without slots.
func (t *Template) HeroSlotID() (string, bool) {
	if t.Hero != nil && t.Hero.SlotID != "" {
		return t.Hero.SlotID, true
	}
	if len(t.Slots) == 0 {
		return "", false
	}
	return t.Slots[0].ID, true
}

// PreferredHeroCategory returns the category preferred for the hero slot, if
// the template defines one.
func (t *Template) PreferredHeroCategory() (Category, bool) {
	if t.Hero == nil || t.Hero.PreferredCategory == "" {
		return "", false
	}
	return t.Hero.PreferredCategory, true
}

// SlotsByStackOrder returns a copy of the slots sorted by ascending
// StackOrder. Slots with equal order keep their declaration order.
func (t *Template) SlotsByStackOrder() []Slot {
	sorted := make([]Slot, len(t.Slots))
	copy(sorted, t.Slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StackOrder < sorted[j].StackOrder
	})
	return sorted
}

// Validate checks the template invariants: non-empty id, unique slot ids,
// positive slot sizes, and a hero rule that points at an existing slot.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template has empty id")
	}
	seen := make(map[string]bool, len(t.Slots))
	for _, s := range t.Slots {
		if s.ID == "" {
			return fmt.Errorf("template %s: slot with empty id", t.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("template %s: duplicate slot id %q", t.ID, s.ID)
		}
		seen[s.ID] = true
		if !s.Rect.Valid() {
			return fmt.Errorf("template %s: slot %s has invalid geometry %s", t.ID, s.ID, s.Rect)
		}
		if s.CornerRadius < 0 || s.CornerRadius > 1 {
			return fmt.Errorf("template %s: slot %s corner radius %.3f outside 0..1", t.ID, s.ID, s.CornerRadius)
		}
	}
	if t.Hero != nil {
		if !seen[t.Hero.SlotID] {
			return fmt.Errorf("template %s: hero rule references unknown slot %q", t.ID, t.Hero.SlotID)
		}
		if t.Hero.PreferredCategory != "" && !t.Hero.PreferredCategory.Valid() {
			return fmt.Errorf("template %s: hero rule has unknown category %q", t.ID, t.Hero.PreferredCategory)
		}
	}
	return nil
}
