package composition

import (
	"github.com/ironsheep/collage-mcp/internal/layout"
)

// SlotAssignment places one image in one slot.
type SlotAssignment struct {
	SlotID  string `json:"slot_id" yaml:"slot_id"`
	ImageID string `json:"image_id" yaml:"image_id"`

	// Crop is the region of the source image, in its pixel space, that is
	// scaled into the slot.
	Crop layout.Rect `json:"crop" yaml:"crop"`
}

// Job is one fully resolved collage: a template plus a slot to image
// assignment. Slots without an assignment render as background.
type Job struct {
	ID          string           `json:"id" yaml:"id"`
	TemplateID  string           `json:"template_id" yaml:"template_id"`
	AspectRatio float64          `json:"aspect_ratio" yaml:"aspect_ratio"`
	Assignments []SlotAssignment `json:"assignments" yaml:"assignments"`
}

// Assignment returns the assignment for slotID.
func (j Job) Assignment(slotID string) (SlotAssignment, bool) {
	for _, a := range j.Assignments {
		if a.SlotID == slotID {
			return a, true
		}
	}
	return SlotAssignment{}, false
}

// ImageIDs returns the assigned image ids in assignment order.
func (j Job) ImageIDs() []string {
	ids := make([]string, len(j.Assignments))
	for i, a := range j.Assignments {
		ids[i] = a.ImageID
	}
	return ids
}

// Filled returns the number of assigned slots.
func (j Job) Filled() int {
	return len(j.Assignments)
}

// Unfilled returns the ids of the template slots this job leaves empty, in
// declaration order.
func (j Job) Unfilled(t *layout.Template) []string {
	var empty []string
	for _, s := range t.Slots {
		if _, ok := j.Assignment(s.ID); !ok {
			empty = append(empty, s.ID)
		}
	}
	return empty
}
