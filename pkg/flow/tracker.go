package flow

import (
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/mesh-intelligence/signpost/pkg/types"
)

// Section progress statuses, in the order a wizard renders them.
const (
	SectionNew     = "new"
	SectionVisited = "visited"
	SectionActive  = "active"
)

// SectionStatus is one entry of the per-plan section progress bar: a
// top-level section with its display titles and whether the user has been
// there yet.
type SectionStatus struct {
	SectionID string `json:"section_id"`
	Label     string `json:"label,omitempty"`
	Title     string `json:"title"`
	FullTitle string `json:"full_title"`
	Status    string `json:"status"`
}

// SummaryEntry is one row of the plan summary: a question with its stored
// answer, grouped under its section in walk order.
type SummaryEntry struct {
	Section  *types.Section
	Question *types.Question
	Answer   types.Answer
}

// Tracker drives one plan through one template graph. It owns the plan's
// answer data, previous-answer snapshot, visited sections, and the lazily
// created per-question and per-section validity records.
//
// Trackers are single-writer: each operation runs to completion against the
// plan before the next begins. Two collaborators editing the same plan
// concurrently race at the granularity of one Answer call, last write wins;
// callers that allow multi-editor access must treat simultaneous answers to
// the same question as a documented race, not an error.
type Tracker struct {
	graph *Graph
	plan  *types.Plan

	questionValidity map[string]*types.QuestionValidity
	sectionValidity  map[string]*types.SectionValidity
}

// NewTracker wraps an existing plan for navigation against its template
// graph. Validity records loaded from storage can be handed over with
// LoadValidities; missing records are created lazily, defaulting to invalid.
func NewTracker(g *Graph, plan *types.Plan) *Tracker {
	if plan.Data == nil {
		plan.Data = make(map[string]types.Answer)
	}
	if plan.PreviousData == nil {
		plan.PreviousData = make(map[string]types.Answer)
	}
	if plan.Trail == nil {
		plan.Trail = make(map[string]string)
	}
	return &Tracker{
		graph:            g,
		plan:             plan,
		questionValidity: make(map[string]*types.QuestionValidity),
		sectionValidity:  make(map[string]*types.SectionValidity),
	}
}

// StartPlan creates a fresh plan on a published template. The template must
// have a reachable first question; a template with only empty sections
// cannot be started.
func StartPlan(g *Graph, title, user string) (*types.Plan, error) {
	if !g.template.IsPublished() {
		return nil, types.ErrTemplateDraft
	}
	if _, err := g.FirstQuestion(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &types.Plan{
		PlanID:       uuid.Must(uuid.NewV7()).String(),
		TemplateID:   g.template.TemplateID,
		Title:        title,
		Version:      1,
		Data:         make(map[string]types.Answer),
		PreviousData: make(map[string]types.Answer),
		Trail:        make(map[string]string),
		Editors:      []string{user},
		AddedBy:      user,
		ModifiedBy:   user,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Plan returns the tracked plan.
func (t *Tracker) Plan() *types.Plan {
	return t.plan
}

// Graph returns the template graph the plan is tracked against.
func (t *Tracker) Graph() *Graph {
	return t.graph
}

// LoadValidities hydrates validity records previously persisted for this
// plan. Records for other plans are ignored.
func (t *Tracker) LoadValidities(qv []*types.QuestionValidity, sv []*types.SectionValidity) {
	for _, v := range qv {
		if v.PlanID == t.plan.PlanID {
			t.questionValidity[v.QuestionID] = v
		}
	}
	for _, v := range sv {
		if v.PlanID == t.plan.PlanID {
			t.sectionValidity[v.SectionID] = v
		}
	}
}

// QuestionValidities returns the validity records touched so far, for
// persistence.
func (t *Tracker) QuestionValidities() []*types.QuestionValidity {
	out := make([]*types.QuestionValidity, 0, len(t.questionValidity))
	for _, q := range t.graph.orderedQuestions {
		if v, ok := t.questionValidity[q.QuestionID]; ok {
			out = append(out, v)
		}
	}
	return out
}

// SectionValidities returns the section validity records touched so far, for
// persistence.
func (t *Tracker) SectionValidities() []*types.SectionValidity {
	out := make([]*types.SectionValidity, 0, len(t.sectionValidity))
	for _, s := range t.graph.orderedSections {
		if v, ok := t.sectionValidity[s.SectionID]; ok {
			out = append(out, v)
		}
	}
	return out
}

// FirstQuestion returns the first question of the plan's template.
func (t *Tracker) FirstQuestion() (*types.Question, error) {
	return t.graph.FirstQuestion()
}

// Prefill returns the answer to pre-populate a question's form with: the
// current answer when present, otherwise the last known answer from the
// previous-data snapshot.
func (t *Tracker) Prefill(questionID string) types.Answer {
	if a, ok := t.plan.Data[questionID]; ok && !a.IsEmpty() {
		return a
	}
	return t.plan.PreviousData[questionID]
}

// Answer stores an answer for a question and advances the walk. The payload
// is validated against the question's input type; a failure invalidates the
// question (and its section) and is returned wrapping ErrInvalidAnswer.
// Storing an unchanged payload is a no-op beyond recomputing the result.
// On success the question's section is marked visited, the question is
// marked valid, the section is revalidated if it was not valid yet, and the
// next question under the new data is returned together with the section
// progress. A nil next question means the walk has ended.
func (t *Tracker) Answer(questionID string, ans types.Answer) (*types.Question, []SectionStatus, error) {
	if t.plan.IsLocked() {
		return nil, nil, types.ErrPlanLocked
	}
	q, err := t.graph.Question(questionID)
	if err != nil {
		return nil, nil, err
	}
	section := t.graph.sections[q.SectionID]

	if err := t.graph.ValidateAnswer(q, ans); err != nil {
		t.Invalidate(questionID)
		return nil, nil, err
	}

	stored, answered := t.plan.Data[questionID]
	if !answered || !reflect.DeepEqual(stored, ans) {
		now := time.Now().UTC()
		t.plan.Data[questionID] = ans
		t.plan.PreviousData[questionID] = ans
		t.plan.UpdatedAt = now

		qv := t.ensureQuestionValidity(questionID)
		qv.Valid = true
		qv.LastValidated = now

		sv := t.ensureSectionValidity(section.SectionID)
		if !sv.Valid && t.validateSectionData(section) {
			sv.Valid = true
			sv.LastValidated = now
		}
	}

	t.visitSection(section)

	next, err := t.graph.NextQuestion(questionID, t.plan.Data)
	if err != nil {
		return nil, nil, err
	}
	if next != nil {
		t.plan.Trail[next.QuestionID] = questionID
	}
	return next, t.SectionProgress(section), nil
}

// Previous resolves the question shown before questionID. The trail recorded
// at answer time wins when it still re-derives forward onto this question;
// otherwise the graph's inbound-edge and positional resolution applies.
func (t *Tracker) Previous(questionID string) (*types.Question, error) {
	q, err := t.graph.Question(questionID)
	if err != nil {
		return nil, err
	}
	if fromID, ok := t.plan.Trail[questionID]; ok {
		if from, err := t.graph.Question(fromID); err == nil {
			derived, err := t.graph.NextQuestion(fromID, t.plan.Data)
			if err == nil && derived != nil && derived.QuestionID == q.QuestionID {
				return from, nil
			}
		}
	}
	return t.graph.PrevQuestion(questionID, t.plan.Data)
}

// Invalidate marks a question's stored answer invalid, typically after a
// failed validation. The owning section is invalidated too: a section cannot
// be valid while one of its questions is not.
func (t *Tracker) Invalidate(questionID string) {
	q, ok := t.graph.questions[questionID]
	if !ok {
		return
	}
	now := time.Now().UTC()
	qv := t.ensureQuestionValidity(questionID)
	qv.Valid = false
	qv.LastValidated = now
	sv := t.ensureSectionValidity(q.SectionID)
	sv.Valid = false
	sv.LastValidated = now
}

// ValidateSection recomputes and records a section's validity: true iff
// every obligatory question on the branch path currently selected by the
// plan's answers has a non-empty stored answer.
func (t *Tracker) ValidateSection(sectionID string) (bool, error) {
	section, err := t.graph.Section(sectionID)
	if err != nil {
		return false, err
	}
	valid := t.validateSectionData(section)
	sv := t.ensureSectionValidity(sectionID)
	sv.Valid = valid
	sv.LastValidated = time.Now().UTC()
	return valid, nil
}

// validateSectionData walks the section's questions from its first question,
// following branching edges under the current answers, and checks that every
// obligatory question on the path has a non-empty entry. Questions parked on
// branches not currently taken do not count against the section.
func (t *Tracker) validateSectionData(section *types.Section) bool {
	q := t.graph.FirstQuestionOf(section)
	seen := make(map[string]bool)
	for q != nil && q.SectionID == section.SectionID {
		if seen[q.QuestionID] {
			break
		}
		seen[q.QuestionID] = true
		if q.Obligatory && t.plan.Data[q.QuestionID].IsEmpty() {
			return false
		}
		next, err := t.graph.NextQuestion(q.QuestionID, t.plan.Data)
		if err != nil {
			return false
		}
		q = next
	}
	return true
}

// ValidatePlan revalidates every section and reports whether the whole plan
// is valid.
func (t *Tracker) ValidatePlan() bool {
	valid := true
	for _, s := range t.graph.orderedSections {
		ok, _ := t.ValidateSection(s.SectionID)
		valid = valid && ok
	}
	return valid
}

// Visit marks a section (and its topmost ancestor) visited. Used directly
// when the wizard passes through a section without questions; Answer visits
// implicitly.
func (t *Tracker) Visit(sectionID string) error {
	section, err := t.graph.Section(sectionID)
	if err != nil {
		return err
	}
	t.visitSection(section)
	return nil
}

func (t *Tracker) visitSection(section *types.Section) {
	topmost := t.graph.TopmostSection(section)
	t.plan.Visit(section.SectionID, topmost.SectionID)
}

// SectionProgress returns the progress-bar view over the template's
// top-level sections: visited ones, the active one (the topmost ancestor of
// current), and the rest.
func (t *Tracker) SectionProgress(current *types.Section) []SectionStatus {
	var activeID string
	if current != nil {
		activeID = t.graph.TopmostSection(current).SectionID
	}
	tops := t.graph.TopLevelSections()
	out := make([]SectionStatus, 0, len(tops))
	for _, s := range tops {
		status := SectionNew
		if t.plan.HasVisited(s.SectionID) {
			status = SectionVisited
		}
		if s.SectionID == activeID {
			status = SectionActive
		}
		out = append(out, SectionStatus{
			SectionID: s.SectionID,
			Label:     s.Label,
			Title:     s.Title,
			FullTitle: t.graph.FullTitle(s),
			Status:    status,
		})
	}
	return out
}

// Progress returns the percentage of the template's questions positionally
// before questionID. A display figure only: branching means the actual path
// taken may be shorter.
func (t *Tracker) Progress(questionID string) (float64, error) {
	preceding, err := t.graph.AllPrecedingQuestions(questionID)
	if err != nil {
		return 0, err
	}
	total := len(t.graph.orderedQuestions)
	if total == 0 {
		return 0, nil
	}
	return float64(len(preceding)) / float64(total) * 100, nil
}

// Summary returns every question of the template in walk order with its
// stored answer, grouped under its section, for rendering a finished plan.
func (t *Tracker) Summary() []SummaryEntry {
	var out []SummaryEntry
	for _, s := range t.graph.orderedSections {
		for _, q := range t.graph.sectionQuestions[s.SectionID] {
			out = append(out, SummaryEntry{
				Section:  s,
				Question: q,
				Answer:   t.plan.Data[q.QuestionID],
			})
		}
	}
	return out
}

func (t *Tracker) ensureQuestionValidity(questionID string) *types.QuestionValidity {
	if v, ok := t.questionValidity[questionID]; ok {
		return v
	}
	v := &types.QuestionValidity{
		PlanID:     t.plan.PlanID,
		QuestionID: questionID,
	}
	t.questionValidity[questionID] = v
	return v
}

func (t *Tracker) ensureSectionValidity(sectionID string) *types.SectionValidity {
	if v, ok := t.sectionValidity[sectionID]; ok {
		return v
	}
	v := &types.SectionValidity{
		PlanID:    t.plan.PlanID,
		SectionID: sectionID,
	}
	t.sectionValidity[sectionID] = v
	return v
}
