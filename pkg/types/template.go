package types

import "time"

// Template is a versioned questionnaire definition. Version is monotonic per
// lineage; ClonedFrom links a new version back to its source. A nil Published
// timestamp means draft; once published the template is immutable and may
// only be branched via a new version.
type Template struct {
	TemplateID   string     `json:"template_id"`
	Title        string     `json:"title"`
	Abbreviation string     `json:"abbreviation,omitempty"`
	Version      int        `json:"version"`
	AutomatonID  string     `json:"automaton_id,omitempty"`
	Published    *time.Time `json:"published,omitempty"`
	PublishedBy  string     `json:"published_by,omitempty"`
	ClonedFrom   string     `json:"cloned_from,omitempty"`
	AddedBy      string     `json:"added_by,omitempty"`
	ModifiedBy   string     `json:"modified_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsPublished reports whether the template has been published.
func (t *Template) IsPublished() bool {
	return t.Published != nil
}

// Publish marks the template published by the given user. After this the
// authoring operations reject the template. Returns ErrAlreadyPublished if
// the template is already published.
func (t *Template) Publish(user string) error {
	if t.Published != nil {
		return ErrAlreadyPublished
	}
	now := time.Now()
	t.Published = &now
	t.PublishedBy = user
	t.ModifiedBy = user
	t.UpdatedAt = now
	return nil
}
