package types

import "time"

// Section is an ordered group of questions inside a template. Sections may
// nest: a non-empty SuperSectionID makes this a subsection of another section
// of the same template, and Depth records how far down the tree it sits
// (1 = top level). Position orders siblings within the same super-section
// scope. Branching marks a section whose questions may redirect the user
// across section boundaries.
type Section struct {
	SectionID      string    `json:"section_id"`
	TemplateID     string    `json:"template_id"`
	SuperSectionID string    `json:"super_section_id,omitempty"`
	Position       int       `json:"position"`
	Depth          int       `json:"depth"`
	Label          string    `json:"label,omitempty"`
	Title          string    `json:"title"`
	Introduction   string    `json:"introduction,omitempty"`
	Branching      bool      `json:"branching,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
