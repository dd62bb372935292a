package sqlite

import (
	"errors"
	"time"

	"github.com/mesh-intelligence/signpost/internal/logger"
	"github.com/mesh-intelligence/signpost/pkg/types"
)

// Compile-time interface check: Backend must implement types.Store.
var _ types.Store = (*Backend)(nil)

// SaveBundle persists a whole template bundle in one transaction. Rows
// previously owned by the template (sections, questions, canned answers, and
// the automaton graph) are replaced wholesale, so entities removed from the
// bundle disappear from storage too.
func (b *Backend) SaveBundle(bundle *types.TemplateBundle) error {
	if bundle == nil || bundle.Template == nil {
		return types.ErrInvalidData
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	tpl := bundle.Template
	if tpl.TemplateID == "" {
		tpl.TemplateID = newUUID()
	}
	now := time.Now().UTC()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now

	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Clear the template's current rows before writing the bundle's.
	clears := []struct {
		query string
		arg   string
	}{
		{`DELETE FROM canned_answers WHERE question_id IN (
            SELECT question_id FROM questions WHERE section_id IN (
                SELECT section_id FROM sections WHERE template_id = ?))`, tpl.TemplateID},
		{`DELETE FROM questions WHERE section_id IN (
            SELECT section_id FROM sections WHERE template_id = ?)`, tpl.TemplateID},
		{`DELETE FROM sections WHERE template_id = ?`, tpl.TemplateID},
	}
	if bundle.Automaton != nil {
		aid := bundle.Automaton.AutomatonID
		clears = append(clears,
			struct {
				query string
				arg   string
			}{`DELETE FROM edges WHERE automaton_id = ?`, aid},
			struct {
				query string
				arg   string
			}{`DELETE FROM nodes WHERE automaton_id = ?`, aid},
		)
	}
	for _, c := range clears {
		if _, err := tx.Exec(c.query, c.arg); err != nil {
			return err
		}
	}

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO templates (`+templateColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.TemplateID, tpl.Title, tpl.Abbreviation, tpl.Version, tpl.AutomatonID,
		nullTimeStr(tpl.Published), tpl.PublishedBy, tpl.ClonedFrom,
		tpl.AddedBy, tpl.ModifiedBy, timeStr(tpl.CreatedAt), timeStr(tpl.UpdatedAt))
	if err != nil {
		return err
	}

	for _, s := range bundle.Sections {
		if s.SectionID == "" {
			s.SectionID = newUUID()
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		s.UpdatedAt = now
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO sections (`+sectionColumns+`)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.SectionID, s.TemplateID, s.SuperSectionID, s.Position, s.Depth,
			s.Label, s.Title, s.Introduction, boolInt(s.Branching),
			timeStr(s.CreatedAt), timeStr(s.UpdatedAt))
		if err != nil {
			return err
		}
	}

	for _, q := range bundle.Questions {
		if q.QuestionID == "" {
			q.QuestionID = newUUID()
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		q.UpdatedAt = now
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO questions (`+questionColumns+`)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			q.QuestionID, q.SectionID, q.Position, q.InputType, q.Label, q.Text,
			q.FramingText, q.HelpText, boolInt(q.Obligatory), q.NodeID,
			timeStr(q.CreatedAt), timeStr(q.UpdatedAt))
		if err != nil {
			return err
		}
	}

	for _, ca := range bundle.CannedAnswers {
		if ca.AnswerID == "" {
			ca.AnswerID = newUUID()
		}
		if ca.CreatedAt.IsZero() {
			ca.CreatedAt = now
		}
		ca.UpdatedAt = now
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO canned_answers (`+cannedAnswerColumns+`)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ca.AnswerID, ca.QuestionID, ca.Position, ca.Choice, ca.CannedText,
			ca.EdgeID, timeStr(ca.CreatedAt), timeStr(ca.UpdatedAt))
		if err != nil {
			return err
		}
	}

	if bundle.Automaton != nil {
		a := bundle.Automaton
		if a.AutomatonID == "" {
			a.AutomatonID = newUUID()
		}
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO automatons (`+automatonColumns+`)
             VALUES (?, ?, ?, ?)`,
			a.AutomatonID, a.Slug, a.ClonedFrom, nullTimeStr(a.ClonedAt))
		if err != nil {
			return err
		}
	}

	for _, n := range bundle.Nodes {
		if n.NodeID == "" {
			n.NodeID = newUUID()
		}
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO nodes (`+nodeColumns+`)
             VALUES (?, ?, ?, ?, ?, ?)`,
			n.NodeID, n.AutomatonID, n.Payload, n.DependsOn, n.ClonedFrom,
			nullTimeStr(n.ClonedAt))
		if err != nil {
			return err
		}
	}

	for _, e := range bundle.Edges {
		if e.EdgeID == "" {
			e.EdgeID = newUUID()
		}
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO edges (`+edgeColumns+`)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.EdgeID, e.AutomatonID, e.PrevNodeID, e.NextNodeID, e.Condition,
			e.Payload, e.ClonedFrom, nullTimeStr(e.ClonedAt))
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Get().Debug().
		Str("template", tpl.TemplateID).
		Int("sections", len(bundle.Sections)).
		Int("questions", len(bundle.Questions)).
		Msg("bundle saved")
	return nil
}

// LoadBundle retrieves the template with the given ID together with every
// entity it owns. Returns ErrNotFound if the template does not exist.
func (b *Backend) LoadBundle(templateID string) (*types.TemplateBundle, error) {
	if templateID == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	t := &table{backend: b}
	tplAny, err := t.getTemplate(templateID)
	if err != nil {
		return nil, err
	}
	bundle := &types.TemplateBundle{Template: tplAny.(*types.Template)}

	rows, err := b.db.Query(
		"SELECT "+sectionColumns+" FROM sections WHERE template_id = ? ORDER BY depth, position, section_id",
		templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		bundle.Sections = append(bundle.Sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	qrows, err := b.db.Query(
		`SELECT `+questionColumns+` FROM questions WHERE section_id IN (
            SELECT section_id FROM sections WHERE template_id = ?)
         ORDER BY position, question_id`, templateID)
	if err != nil {
		return nil, err
	}
	defer qrows.Close()
	for qrows.Next() {
		q, err := scanQuestion(qrows)
		if err != nil {
			return nil, err
		}
		bundle.Questions = append(bundle.Questions, q)
	}
	if err := qrows.Err(); err != nil {
		return nil, err
	}

	carows, err := b.db.Query(
		`SELECT `+cannedAnswerColumns+` FROM canned_answers WHERE question_id IN (
            SELECT question_id FROM questions WHERE section_id IN (
                SELECT section_id FROM sections WHERE template_id = ?))
         ORDER BY position, answer_id`, templateID)
	if err != nil {
		return nil, err
	}
	defer carows.Close()
	for carows.Next() {
		ca, err := scanCannedAnswer(carows)
		if err != nil {
			return nil, err
		}
		bundle.CannedAnswers = append(bundle.CannedAnswers, ca)
	}
	if err := carows.Err(); err != nil {
		return nil, err
	}

	if bundle.Template.AutomatonID != "" {
		aAny, err := t.getAutomaton(bundle.Template.AutomatonID)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		if err == nil {
			bundle.Automaton = aAny.(*types.Automaton)

			nrows, err := b.db.Query(
				"SELECT "+nodeColumns+" FROM nodes WHERE automaton_id = ? ORDER BY node_id",
				bundle.Automaton.AutomatonID)
			if err != nil {
				return nil, err
			}
			defer nrows.Close()
			for nrows.Next() {
				n, err := scanNode(nrows)
				if err != nil {
					return nil, err
				}
				bundle.Nodes = append(bundle.Nodes, n)
			}
			if err := nrows.Err(); err != nil {
				return nil, err
			}

			erows, err := b.db.Query(
				"SELECT "+edgeColumns+" FROM edges WHERE automaton_id = ? ORDER BY edge_id",
				bundle.Automaton.AutomatonID)
			if err != nil {
				return nil, err
			}
			defer erows.Close()
			for erows.Next() {
				e, err := scanEdge(erows)
				if err != nil {
					return nil, err
				}
				bundle.Edges = append(bundle.Edges, e)
			}
			if err := erows.Err(); err != nil {
				return nil, err
			}
		}
	}

	return bundle, nil
}
