package sqlite

import (
	"database/sql"
	"time"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

// Compile-time interface check: table must implement types.Table.
var _ types.Table = (*table)(nil)

// table implements types.Table for a single entity type. Each operation
// dispatches on the table name to the entity-specific hydration code.
type table struct {
	name    string
	backend *Backend
}

// Get retrieves an entity by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if no entity exists.
func (t *table) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	switch t.name {
	case types.TemplatesTable:
		return t.getTemplate(id)
	case types.SectionsTable:
		return t.getSection(id)
	case types.QuestionsTable:
		return t.getQuestion(id)
	case types.CannedAnswersTable:
		return t.getCannedAnswer(id)
	case types.AutomatonsTable:
		return t.getAutomaton(id)
	case types.NodesTable:
		return t.getNode(id)
	case types.EdgesTable:
		return t.getEdge(id)
	case types.PlansTable:
		return t.getPlan(id)
	case types.QuestionValidityTable:
		return t.getQuestionValidity(id)
	case types.SectionValidityTable:
		return t.getSectionValidity(id)
	default:
		return nil, types.ErrTableNotFound
	}
}

// Set creates or updates an entity. When id is empty a UUID v7 is generated
// (validity tables derive a composite plan/question id from the data
// instead). Returns the actual ID used.
func (t *table) Set(id string, data any) (string, error) {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	switch t.name {
	case types.TemplatesTable:
		return t.setTemplate(id, data)
	case types.SectionsTable:
		return t.setSection(id, data)
	case types.QuestionsTable:
		return t.setQuestion(id, data)
	case types.CannedAnswersTable:
		return t.setCannedAnswer(id, data)
	case types.AutomatonsTable:
		return t.setAutomaton(id, data)
	case types.NodesTable:
		return t.setNode(id, data)
	case types.EdgesTable:
		return t.setEdge(id, data)
	case types.PlansTable:
		return t.setPlan(id, data)
	case types.QuestionValidityTable:
		return t.setQuestionValidity(data)
	case types.SectionValidityTable:
		return t.setSectionValidity(data)
	default:
		return "", types.ErrTableNotFound
	}
}

// Delete removes an entity by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if no entity exists.
func (t *table) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	if t.name == types.QuestionValidityTable || t.name == types.SectionValidityTable {
		return t.deleteValidity(id)
	}
	column, ok := idColumns[t.name]
	if !ok {
		return types.ErrTableNotFound
	}
	res, err := t.backend.db.Exec("DELETE FROM "+t.name+" WHERE "+column+" = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Fetch returns all entities matching the filter. Parent-id filter keys
// narrow the result; rows come back in position order where the entity has
// one, otherwise by creation time.
func (t *table) Fetch(filter types.Filter) ([]any, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	switch t.name {
	case types.TemplatesTable:
		return t.fetchTemplates(filter)
	case types.SectionsTable:
		return t.fetchSections(filter)
	case types.QuestionsTable:
		return t.fetchQuestions(filter)
	case types.CannedAnswersTable:
		return t.fetchCannedAnswers(filter)
	case types.AutomatonsTable:
		return t.fetchAutomatons(filter)
	case types.NodesTable:
		return t.fetchNodes(filter)
	case types.EdgesTable:
		return t.fetchEdges(filter)
	case types.PlansTable:
		return t.fetchPlans(filter)
	case types.QuestionValidityTable:
		return t.fetchQuestionValidities(filter)
	case types.SectionValidityTable:
		return t.fetchSectionValidities(filter)
	default:
		return nil, types.ErrTableNotFound
	}
}

// idColumns maps table names to their primary key column. The validity
// tables use a composite key encoded as "plan_id/other_id" in Get and
// Delete.
var idColumns = map[string]string{
	types.TemplatesTable:     "template_id",
	types.SectionsTable:      "section_id",
	types.QuestionsTable:     "question_id",
	types.CannedAnswersTable: "answer_id",
	types.AutomatonsTable:    "automaton_id",
	types.NodesTable:         "node_id",
	types.EdgesTable:         "edge_id",
	types.PlansTable:         "plan_id",
}

// stringFilter extracts an optional string filter value.
// Returns ErrInvalidFilter when the key is present with a non-string value.
func stringFilter(filter types.Filter, key string) (string, error) {
	if filter == nil {
		return "", nil
	}
	v, ok := filter[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", types.ErrInvalidFilter
	}
	return s, nil
}

func timeStr(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullTimeStr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeStr(*t)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
