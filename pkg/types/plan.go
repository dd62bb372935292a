package types

import "time"

// Answer is the stored payload for one answered question. Choice is opaque to
// the navigation engine beyond an equality and non-empty check: a string for
// bool/choice questions, a []any for multichoice, a map for date ranges, and
// whatever the lookup capability returned for lookup questions. Notes carries
// the free-text remark entered alongside the answer.
type Answer struct {
	Choice any    `json:"choice"`
	Notes  string `json:"notes,omitempty"`
}

// IsEmpty reports whether the answer carries no usable choice. Notes alone do
// not make an answer non-empty.
func (a Answer) IsEmpty() bool {
	switch v := a.Choice.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

// Plan is one user's walk through a template. Data holds the current answer
// per question; PreviousData is the last-known snapshot used to pre-fill a
// re-opened but currently unanswered question. Trail records, per question
// actually reached, which question led to it; the previous-question
// resolution consults it before falling back to graph inspection.
// A locked or published plan is read only until a new version reopens it.
type Plan struct {
	PlanID       string            `json:"plan_id"`
	TemplateID   string            `json:"template_id"`
	Title        string            `json:"title"`
	Abbreviation string            `json:"abbreviation,omitempty"`
	Version      int               `json:"version"`
	Data         map[string]Answer `json:"data"`
	PreviousData map[string]Answer `json:"previous_data"`
	Trail        map[string]string `json:"trail,omitempty"`

	VisitedSections []string `json:"visited_sections"`
	Editors         []string `json:"editors,omitempty"`

	Locked      *time.Time `json:"locked,omitempty"`
	LockedBy    string     `json:"locked_by,omitempty"`
	Published   *time.Time `json:"published,omitempty"`
	PublishedBy string     `json:"published_by,omitempty"`
	ClonedFrom  string     `json:"cloned_from,omitempty"`
	AddedBy     string     `json:"added_by,omitempty"`
	ModifiedBy  string     `json:"modified_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsLocked reports whether the plan is locked or published; either makes it
// read only.
func (p *Plan) IsLocked() bool {
	return p.Locked != nil || p.Published != nil
}

// Lock makes the plan read only, recording the acting user.
// Returns ErrPlanLocked if the plan is already locked.
func (p *Plan) Lock(user string) error {
	if p.IsLocked() {
		return ErrPlanLocked
	}
	now := time.Now()
	p.Locked = &now
	p.LockedBy = user
	p.ModifiedBy = user
	p.UpdatedAt = now
	return nil
}

// Publish makes the plan public and undeletable. Publishing implies locking.
// Returns ErrAlreadyPublished if the plan is already published.
func (p *Plan) Publish(user string) error {
	if p.Published != nil {
		return ErrAlreadyPublished
	}
	now := time.Now()
	if p.Locked == nil {
		p.Locked = &now
		p.LockedBy = user
	}
	p.Published = &now
	p.PublishedBy = user
	p.ModifiedBy = user
	p.UpdatedAt = now
	return nil
}

// Visit adds the given section IDs to the visited set. Idempotent: already
// visited sections are not duplicated. Empty IDs are ignored.
func (p *Plan) Visit(sectionIDs ...string) {
	for _, id := range sectionIDs {
		if id == "" || p.HasVisited(id) {
			continue
		}
		p.VisitedSections = append(p.VisitedSections, id)
	}
}

// HasVisited reports whether the section has been visited on this plan.
func (p *Plan) HasVisited(sectionID string) bool {
	for _, id := range p.VisitedSections {
		if id == sectionID {
			return true
		}
	}
	return false
}

// QuestionValidity records whether the stored answer for one question of one
// plan currently passes validation. Records are created lazily, defaulting to
// invalid, the first time a question is visited.
type QuestionValidity struct {
	PlanID        string    `json:"plan_id"`
	QuestionID    string    `json:"question_id"`
	Valid         bool      `json:"valid"`
	LastValidated time.Time `json:"last_validated"`
}

// SectionValidity records whether every obligatory question of one section,
// along the branch path currently selected by the plan's answers, has a valid
// stored answer.
type SectionValidity struct {
	PlanID        string    `json:"plan_id"`
	SectionID     string    `json:"section_id"`
	Valid         bool      `json:"valid"`
	LastValidated time.Time `json:"last_validated"`
}
