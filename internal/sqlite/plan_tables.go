package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

const planColumns = `plan_id, template_id, title, abbreviation, version, data,
    previous_data, trail, visited_sections, editors, locked, locked_by,
    published, published_by, cloned_from, added_by, modified_by,
    created_at, updated_at`

func (t *table) getPlan(id string) (any, error) {
	row := t.backend.db.QueryRow(
		"SELECT "+planColumns+" FROM plans WHERE plan_id = ?", id)
	return scanPlan(row)
}

func (t *table) setPlan(id string, data any) (string, error) {
	p, ok := data.(*types.Plan)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = newUUID()
	}
	p.PlanID = id
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	answers, err := marshalAnswers(p.Data)
	if err != nil {
		return "", err
	}
	previous, err := marshalAnswers(p.PreviousData)
	if err != nil {
		return "", err
	}
	trail, err := marshalJSON(p.Trail)
	if err != nil {
		return "", err
	}
	visited, err := marshalJSON(p.VisitedSections)
	if err != nil {
		return "", err
	}
	editors, err := marshalJSON(p.Editors)
	if err != nil {
		return "", err
	}

	_, err = t.backend.db.Exec(
		`INSERT OR REPLACE INTO plans (`+planColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PlanID, p.TemplateID, p.Title, p.Abbreviation, p.Version,
		answers, previous, trail, visited, editors,
		nullTimeStr(p.Locked), p.LockedBy, nullTimeStr(p.Published), p.PublishedBy,
		p.ClonedFrom, p.AddedBy, p.ModifiedBy,
		timeStr(p.CreatedAt), timeStr(p.UpdatedAt))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *table) fetchPlans(filter types.Filter) ([]any, error) {
	query := "SELECT " + planColumns + " FROM plans"
	var args []any

	templateID, err := stringFilter(filter, "template_id")
	if err != nil {
		return nil, err
	}
	if templateID != "" {
		query += " WHERE template_id = ?"
		args = append(args, templateID)
	}
	query += " ORDER BY created_at"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPlan(row scanner) (*types.Plan, error) {
	var p types.Plan
	var answers, previous string
	var trail, visited, editors sql.NullString
	var locked, published sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&p.PlanID, &p.TemplateID, &p.Title, &p.Abbreviation, &p.Version,
		&answers, &previous, &trail, &visited, &editors,
		&locked, &p.LockedBy, &published, &p.PublishedBy,
		&p.ClonedFrom, &p.AddedBy, &p.ModifiedBy, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.Data, err = unmarshalAnswers(answers); err != nil {
		return nil, err
	}
	if p.PreviousData, err = unmarshalAnswers(previous); err != nil {
		return nil, err
	}
	if err = unmarshalJSON(trail, &p.Trail); err != nil {
		return nil, err
	}
	if err = unmarshalJSON(visited, &p.VisitedSections); err != nil {
		return nil, err
	}
	if err = unmarshalJSON(editors, &p.Editors); err != nil {
		return nil, err
	}
	if p.Locked, err = parseNullTime(locked); err != nil {
		return nil, err
	}
	if p.Published, err = parseNullTime(published); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validity rows key on (plan, question) or (plan, section). Get and Delete
// address them with a composite "planID/otherID" id.

func splitValidityID(id string) (string, string, error) {
	parts := strings.SplitN(id, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", types.ErrInvalidID
	}
	return parts[0], parts[1], nil
}

func (t *table) getQuestionValidity(id string) (any, error) {
	planID, questionID, err := splitValidityID(id)
	if err != nil {
		return nil, err
	}
	row := t.backend.db.QueryRow(
		`SELECT plan_id, question_id, valid, last_validated FROM question_validities
         WHERE plan_id = ? AND question_id = ?`, planID, questionID)

	var v types.QuestionValidity
	var valid int
	var last string
	err = row.Scan(&v.PlanID, &v.QuestionID, &valid, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v.Valid = valid != 0
	if v.LastValidated, err = parseTime(last); err != nil {
		return nil, err
	}
	return &v, nil
}

func (t *table) setQuestionValidity(data any) (string, error) {
	v, ok := data.(*types.QuestionValidity)
	if !ok {
		return "", types.ErrInvalidData
	}
	if v.PlanID == "" || v.QuestionID == "" {
		return "", types.ErrInvalidID
	}
	_, err := t.backend.db.Exec(
		`INSERT OR REPLACE INTO question_validities (plan_id, question_id, valid, last_validated)
         VALUES (?, ?, ?, ?)`,
		v.PlanID, v.QuestionID, boolInt(v.Valid), timeStr(v.LastValidated))
	if err != nil {
		return "", err
	}
	return v.PlanID + "/" + v.QuestionID, nil
}

func (t *table) fetchQuestionValidities(filter types.Filter) ([]any, error) {
	query := "SELECT plan_id, question_id, valid, last_validated FROM question_validities"
	var args []any

	planID, err := stringFilter(filter, "plan_id")
	if err != nil {
		return nil, err
	}
	if planID != "" {
		query += " WHERE plan_id = ?"
		args = append(args, planID)
	}
	query += " ORDER BY plan_id, question_id"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		var v types.QuestionValidity
		var valid int
		var last string
		if err := rows.Scan(&v.PlanID, &v.QuestionID, &valid, &last); err != nil {
			return nil, err
		}
		v.Valid = valid != 0
		if v.LastValidated, err = parseTime(last); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (t *table) getSectionValidity(id string) (any, error) {
	planID, sectionID, err := splitValidityID(id)
	if err != nil {
		return nil, err
	}
	row := t.backend.db.QueryRow(
		`SELECT plan_id, section_id, valid, last_validated FROM section_validities
         WHERE plan_id = ? AND section_id = ?`, planID, sectionID)

	var v types.SectionValidity
	var valid int
	var last string
	err = row.Scan(&v.PlanID, &v.SectionID, &valid, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v.Valid = valid != 0
	if v.LastValidated, err = parseTime(last); err != nil {
		return nil, err
	}
	return &v, nil
}

func (t *table) setSectionValidity(data any) (string, error) {
	v, ok := data.(*types.SectionValidity)
	if !ok {
		return "", types.ErrInvalidData
	}
	if v.PlanID == "" || v.SectionID == "" {
		return "", types.ErrInvalidID
	}
	_, err := t.backend.db.Exec(
		`INSERT OR REPLACE INTO section_validities (plan_id, section_id, valid, last_validated)
         VALUES (?, ?, ?, ?)`,
		v.PlanID, v.SectionID, boolInt(v.Valid), timeStr(v.LastValidated))
	if err != nil {
		return "", err
	}
	return v.PlanID + "/" + v.SectionID, nil
}

func (t *table) fetchSectionValidities(filter types.Filter) ([]any, error) {
	query := "SELECT plan_id, section_id, valid, last_validated FROM section_validities"
	var args []any

	planID, err := stringFilter(filter, "plan_id")
	if err != nil {
		return nil, err
	}
	if planID != "" {
		query += " WHERE plan_id = ?"
		args = append(args, planID)
	}
	query += " ORDER BY plan_id, section_id"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		var v types.SectionValidity
		var valid int
		var last string
		if err := rows.Scan(&v.PlanID, &v.SectionID, &valid, &last); err != nil {
			return nil, err
		}
		v.Valid = valid != 0
		if v.LastValidated, err = parseTime(last); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (t *table) deleteValidity(id string) error {
	planID, otherID, err := splitValidityID(id)
	if err != nil {
		return err
	}
	column := "question_id"
	if t.name == types.SectionValidityTable {
		column = "section_id"
	}
	res, err := t.backend.db.Exec(
		"DELETE FROM "+t.name+" WHERE plan_id = ? AND "+column+" = ?", planID, otherID)
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

// marshalAnswers serializes a plan's answer map; nil maps become "{}" so the
// NOT NULL data columns always hold valid JSON.
func marshalAnswers(m map[string]types.Answer) (string, error) {
	if m == nil {
		m = map[string]types.Answer{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalAnswers(s string) (map[string]types.Answer, error) {
	out := map[string]types.Answer{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// marshalJSON serializes the nullable JSON columns (trail, visited sections,
// editors); nil values store SQL NULL.
func marshalJSON(v any) (any, error) {
	switch x := v.(type) {
	case map[string]string:
		if x == nil {
			return nil, nil
		}
	case []string:
		if x == nil {
			return nil, nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func unmarshalJSON(s sql.NullString, dst any) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), dst)
}
