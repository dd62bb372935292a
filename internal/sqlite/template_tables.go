package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

const templateColumns = `template_id, title, abbreviation, version, automaton_id,
    published, published_by, cloned_from, added_by, modified_by, created_at, updated_at`

func (t *table) getTemplate(id string) (any, error) {
	row := t.backend.db.QueryRow(
		"SELECT "+templateColumns+" FROM templates WHERE template_id = ?", id)
	return scanTemplate(row)
}

func (t *table) setTemplate(id string, data any) (string, error) {
	tpl, ok := data.(*types.Template)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = newUUID()
	}
	tpl.TemplateID = id
	now := time.Now().UTC()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now

	_, err := t.backend.db.Exec(
		`INSERT OR REPLACE INTO templates (`+templateColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.TemplateID, tpl.Title, tpl.Abbreviation, tpl.Version, tpl.AutomatonID,
		nullTimeStr(tpl.Published), tpl.PublishedBy, tpl.ClonedFrom,
		tpl.AddedBy, tpl.ModifiedBy, timeStr(tpl.CreatedAt), timeStr(tpl.UpdatedAt))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *table) fetchTemplates(filter types.Filter) ([]any, error) {
	query := "SELECT " + templateColumns + " FROM templates"
	var args []any

	lineage, err := stringFilter(filter, "cloned_from")
	if err != nil {
		return nil, err
	}
	if lineage != "" {
		query += " WHERE cloned_from = ?"
		args = append(args, lineage)
	}
	query += " ORDER BY created_at"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func scanTemplate(row scanner) (*types.Template, error) {
	var tpl types.Template
	var published sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&tpl.TemplateID, &tpl.Title, &tpl.Abbreviation, &tpl.Version,
		&tpl.AutomatonID, &published, &tpl.PublishedBy, &tpl.ClonedFrom,
		&tpl.AddedBy, &tpl.ModifiedBy, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if tpl.Published, err = parseNullTime(published); err != nil {
		return nil, err
	}
	if tpl.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if tpl.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &tpl, nil
}

const sectionColumns = `section_id, template_id, super_section_id, position, depth,
    label, title, introduction, branching, created_at, updated_at`

func (t *table) getSection(id string) (any, error) {
	row := t.backend.db.QueryRow(
		"SELECT "+sectionColumns+" FROM sections WHERE section_id = ?", id)
	return scanSection(row)
}

func (t *table) setSection(id string, data any) (string, error) {
	s, ok := data.(*types.Section)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = newUUID()
	}
	s.SectionID = id
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err := t.backend.db.Exec(
		`INSERT OR REPLACE INTO sections (`+sectionColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SectionID, s.TemplateID, s.SuperSectionID, s.Position, s.Depth,
		s.Label, s.Title, s.Introduction, boolInt(s.Branching),
		timeStr(s.CreatedAt), timeStr(s.UpdatedAt))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *table) fetchSections(filter types.Filter) ([]any, error) {
	query := "SELECT " + sectionColumns + " FROM sections"
	var args []any

	templateID, err := stringFilter(filter, "template_id")
	if err != nil {
		return nil, err
	}
	if templateID != "" {
		query += " WHERE template_id = ?"
		args = append(args, templateID)
	}
	query += " ORDER BY depth, position, section_id"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSection(row scanner) (*types.Section, error) {
	var s types.Section
	var branching int
	var createdAt, updatedAt string
	err := row.Scan(&s.SectionID, &s.TemplateID, &s.SuperSectionID, &s.Position,
		&s.Depth, &s.Label, &s.Title, &s.Introduction, &branching,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Branching = branching != 0
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

const questionColumns = `question_id, section_id, position, input_type, label, text,
    framing_text, help_text, obligatory, node_id, created_at, updated_at`

func (t *table) getQuestion(id string) (any, error) {
	row := t.backend.db.QueryRow(
		"SELECT "+questionColumns+" FROM questions WHERE question_id = ?", id)
	return scanQuestion(row)
}

func (t *table) setQuestion(id string, data any) (string, error) {
	q, ok := data.(*types.Question)
	if !ok {
		return "", types.ErrInvalidData
	}
	if !types.KnownInputType(q.InputType) {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = newUUID()
	}
	q.QuestionID = id
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	_, err := t.backend.db.Exec(
		`INSERT OR REPLACE INTO questions (`+questionColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.QuestionID, q.SectionID, q.Position, q.InputType, q.Label, q.Text,
		q.FramingText, q.HelpText, boolInt(q.Obligatory), q.NodeID,
		timeStr(q.CreatedAt), timeStr(q.UpdatedAt))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *table) fetchQuestions(filter types.Filter) ([]any, error) {
	query := "SELECT " + questionColumns + " FROM questions"
	var args []any

	sectionID, err := stringFilter(filter, "section_id")
	if err != nil {
		return nil, err
	}
	if sectionID != "" {
		query += " WHERE section_id = ?"
		args = append(args, sectionID)
	}
	query += " ORDER BY position, question_id"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func scanQuestion(row scanner) (*types.Question, error) {
	var q types.Question
	var obligatory int
	var createdAt, updatedAt string
	err := row.Scan(&q.QuestionID, &q.SectionID, &q.Position, &q.InputType,
		&q.Label, &q.Text, &q.FramingText, &q.HelpText, &obligatory, &q.NodeID,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	q.Obligatory = obligatory != 0
	if q.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if q.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &q, nil
}

const cannedAnswerColumns = `answer_id, question_id, position, choice, canned_text,
    edge_id, created_at, updated_at`

func (t *table) getCannedAnswer(id string) (any, error) {
	row := t.backend.db.QueryRow(
		"SELECT "+cannedAnswerColumns+" FROM canned_answers WHERE answer_id = ?", id)
	return scanCannedAnswer(row)
}

func (t *table) setCannedAnswer(id string, data any) (string, error) {
	ca, ok := data.(*types.CannedAnswer)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = newUUID()
	}
	ca.AnswerID = id
	now := time.Now().UTC()
	if ca.CreatedAt.IsZero() {
		ca.CreatedAt = now
	}
	ca.UpdatedAt = now

	_, err := t.backend.db.Exec(
		`INSERT OR REPLACE INTO canned_answers (`+cannedAnswerColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ca.AnswerID, ca.QuestionID, ca.Position, ca.Choice, ca.CannedText,
		ca.EdgeID, timeStr(ca.CreatedAt), timeStr(ca.UpdatedAt))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *table) fetchCannedAnswers(filter types.Filter) ([]any, error) {
	query := "SELECT " + cannedAnswerColumns + " FROM canned_answers"
	var args []any

	questionID, err := stringFilter(filter, "question_id")
	if err != nil {
		return nil, err
	}
	if questionID != "" {
		query += " WHERE question_id = ?"
		args = append(args, questionID)
	}
	query += " ORDER BY position, answer_id"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		ca, err := scanCannedAnswer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ca)
	}
	return out, rows.Err()
}

func scanCannedAnswer(row scanner) (*types.CannedAnswer, error) {
	var ca types.CannedAnswer
	var createdAt, updatedAt string
	err := row.Scan(&ca.AnswerID, &ca.QuestionID, &ca.Position, &ca.Choice,
		&ca.CannedText, &ca.EdgeID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ca.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if ca.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &ca, nil
}

// scanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}
