package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_LoadsAllTemplates(t *testing.T) {
	reg, err := Builtin()
	require.NoError(t, err)

	assert.Equal(t, []string{
		ClassicGrid, HeroLeft, EditorialRight, ProductShowcase,
		BottomFocus, GallerySix, QuadGallery, CenterHero,
	}, reg.IDs())
	assert.Equal(t, ClassicGrid, reg.Default().ID)
}

func TestBuiltin_ClassicGrid(t *testing.T) {
	tmpl, err := MustBuiltin().Lookup(ClassicGrid)
	require.NoError(t, err)

	assert.Equal(t, "Classic Grid", tmpl.Name)
	require.Len(t, tmpl.Slots, 4)
	assert.Nil(t, tmpl.Hero, "classic grid has no hero rule")

	for _, s := range tmpl.Slots {
		assert.InDelta(t, 0.47, s.W, 1e-9)
		assert.InDelta(t, 0.47, s.H, 1e-9)
		assert.InDelta(t, 0.02, s.CornerRadius, 1e-9)
	}

	hero, ok := tmpl.HeroSlotID()
	require.True(t, ok)
	assert.Equal(t, "s1", hero, "first declared slot is the hero without a rule")
}

func TestBuiltin_HeroRules(t *testing.T) {
	tests := []struct {
		id       string
		slot     string
		category Category
	}{
		{HeroLeft, "hero", CategoryHouse},
		{EditorialRight, "hero", CategoryHouse},
		{ProductShowcase, "top", CategoryLivingRoom},
		{QuadGallery, "top", CategoryLivingRoom},
		{BottomFocus, "bot", CategoryLivingRoom},
		{CenterHero, "center", CategoryHouse},
	}

	reg := MustBuiltin()
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			tmpl, ok := reg.Get(tt.id)
			require.True(t, ok)

			hero, ok := tmpl.HeroSlotID()
			require.True(t, ok)
			assert.Equal(t, tt.slot, hero)

			cat, ok := tmpl.PreferredHeroCategory()
			require.True(t, ok)
			assert.Equal(t, tt.category, cat)
		})
	}
}

func TestBuiltin_HeroLeftStackOrder(t *testing.T) {
	tmpl, _ := MustBuiltin().Get(HeroLeft)

	sorted := tmpl.SlotsByStackOrder()
	ids := make([]string, len(sorted))
	for i, s := range sorted {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"hero", "d1", "d2", "d3"}, ids)
	assert.Equal(t, "hero", tmpl.Slots[0].ID, "sorting must not reorder the template")
}

func TestSlotsByStackOrder_StableAndAscending(t *testing.T) {
	tmpl := Template{
		ID: "t",
		Slots: []Slot{
			{ID: "top", StackOrder: 5, Rect: Rect{W: 1, H: 1}},
			{ID: "a", StackOrder: 1, Rect: Rect{W: 1, H: 1}},
			{ID: "b", StackOrder: 1, Rect: Rect{W: 1, H: 1}},
			{ID: "under", StackOrder: -1, Rect: Rect{W: 1, H: 1}},
		},
	}

	var ids []string
	for _, s := range tmpl.SlotsByStackOrder() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"under", "a", "b", "top"}, ids)
}

func TestSlot_EffectiveAspectRatio(t *testing.T) {
	s := Slot{Rect: Rect{W: 0.65, H: 1.0}}
	assert.InDelta(t, 0.65*16.0/9.0, s.EffectiveAspectRatio(16.0/9.0), 1e-12)

	square := Slot{Rect: Rect{W: 0.47, H: 0.47}}
	assert.InDelta(t, 1.0, square.EffectiveAspectRatio(1), 1e-12)
}

func TestTemplate_HeroSlotID_NoSlots(t *testing.T) {
	tmpl := Template{ID: "empty"}
	_, ok := tmpl.HeroSlotID()
	assert.False(t, ok)
}

func TestTemplate_Validate(t *testing.T) {
	unit := Rect{W: 0.5, H: 0.5}
	tests := []struct {
		name string
		tmpl Template
	}{
		{"empty id", Template{Slots: []Slot{{ID: "a", Rect: unit}}}},
		{"empty slot id", Template{ID: "t", Slots: []Slot{{Rect: unit}}}},
		{"duplicate slot", Template{ID: "t", Slots: []Slot{{ID: "a", Rect: unit}, {ID: "a", Rect: unit}}}},
		{"zero width", Template{ID: "t", Slots: []Slot{{ID: "a", Rect: Rect{W: 0, H: 1}}}}},
		{"negative radius", Template{ID: "t", Slots: []Slot{{ID: "a", Rect: unit, CornerRadius: -0.1}}}},
		{"unknown hero slot", Template{ID: "t", Slots: []Slot{{ID: "a", Rect: unit}}, Hero: &HeroRule{SlotID: "b"}}},
		{"unknown hero category", Template{ID: "t", Slots: []Slot{{ID: "a", Rect: unit}}, Hero: &HeroRule{SlotID: "a", PreferredCategory: "garage"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.tmpl.Validate())
		})
	}
}

func TestNewRegistry_DuplicateTemplate(t *testing.T) {
	tmpl := Template{ID: "t", Slots: []Slot{{ID: "a", Rect: Rect{W: 1, H: 1}}}}
	_, err := NewRegistry([]Template{tmpl, tmpl})
	assert.Error(t, err)
}

func TestNewRegistry_CopiesInput(t *testing.T) {
	input := []Template{{ID: "t", Slots: []Slot{{ID: "a", Rect: Rect{W: 1, H: 1}}}}}
	reg, err := NewRegistry(input)
	require.NoError(t, err)

	input[0].Slots[0].ID = "mutated"
	tmpl, _ := reg.Get("t")
	assert.Equal(t, "a", tmpl.Slots[0].ID)
}

func TestLoadRegistry_InvalidCategory(t *testing.T) {
	doc := `
[[template]]
id = "x"
name = "X"
hero = { slot = "a", category = "garage" }
slots = [ { id = "a", x = 0, y = 0, w = 1, h = 1, radius = 0, z = 1 } ]
`
	_, err := LoadRegistry(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestLoadRegistry_Malformed(t *testing.T) {
	_, err := LoadRegistry(strings.NewReader("[[template]\nid ="))
	assert.Error(t, err)
}

func TestRegistry_LookupUnknown(t *testing.T) {
	_, err := MustBuiltin().Lookup("nope")
	assert.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Living_Room ")
	require.NoError(t, err)
	assert.Equal(t, CategoryLivingRoom, c)

	_, err = ParseCategory("garage")
	assert.Error(t, err)

	assert.Len(t, Categories(), 8)
	assert.Contains(t, CategoryNames(), "rooftop")
}

func TestRect_Valid(t *testing.T) {
	assert.True(t, Rect{W: 1, H: 1}.Valid())
	assert.False(t, Rect{W: 0, H: 1}.Valid())
	assert.False(t, Rect{W: 1, H: -1}.Valid())
}
