package layout

import (
	"fmt"
	"strings"
)

// Category classifies what a source photograph shows. The set is closed.
type Category string

const (
	CategoryHouse      Category = "house"       // exterior facade, whole building
	CategoryLivingRoom Category = "living_room" // sofa, TV area
	CategoryKitchen    Category = "kitchen"     // cooking area, dining
	CategoryBedroom    Category = "bedroom"
	CategoryBathroom   Category = "bathroom"
	CategoryAlley      Category = "alley"   // street outside, car access, road
	CategoryRooftop    Category = "rooftop" // terrace, balcony, view from top
	CategoryOther      Category = "other"
)

var categories = []Category{
	CategoryHouse,
	CategoryLivingRoom,
	CategoryKitchen,
	CategoryBedroom,
	CategoryBathroom,
	CategoryAlley,
	CategoryRooftop,
	CategoryOther,
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryNames returns the category values as plain strings, suitable for
// enum declarations in schemas.
func CategoryNames() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts s into a Category. Matching ignores case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown image category: %q", s)
	}
	return c, nil
}
