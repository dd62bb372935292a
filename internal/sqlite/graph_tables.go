package sqlite

import (
	"database/sql"
	"errors"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

const automatonColumns = "automaton_id, slug, cloned_from, cloned_at"

func (t *table) getAutomaton(id string) (any, error) {
	row := t.backend.db.QueryRow(
		"SELECT "+automatonColumns+" FROM automatons WHERE automaton_id = ?", id)
	return scanAutomaton(row)
}

func (t *table) setAutomaton(id string, data any) (string, error) {
	a, ok := data.(*types.Automaton)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = newUUID()
	}
	a.AutomatonID = id

	_, err := t.backend.db.Exec(
		`INSERT OR REPLACE INTO automatons (`+automatonColumns+`)
         VALUES (?, ?, ?, ?)`,
		a.AutomatonID, a.Slug, a.ClonedFrom, nullTimeStr(a.ClonedAt))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *table) fetchAutomatons(filter types.Filter) ([]any, error) {
	query := "SELECT " + automatonColumns + " FROM automatons"
	var args []any

	slug, err := stringFilter(filter, "slug")
	if err != nil {
		return nil, err
	}
	if slug != "" {
		query += " WHERE slug = ?"
		args = append(args, slug)
	}
	query += " ORDER BY automaton_id"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		a, err := scanAutomaton(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAutomaton(row scanner) (*types.Automaton, error) {
	var a types.Automaton
	var clonedAt sql.NullString
	err := row.Scan(&a.AutomatonID, &a.Slug, &a.ClonedFrom, &clonedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.ClonedAt, err = parseNullTime(clonedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

const nodeColumns = "node_id, automaton_id, payload, depends_on, cloned_from, cloned_at"

func (t *table) getNode(id string) (any, error) {
	row := t.backend.db.QueryRow(
		"SELECT "+nodeColumns+" FROM nodes WHERE node_id = ?", id)
	return scanNode(row)
}

func (t *table) setNode(id string, data any) (string, error) {
	n, ok := data.(*types.Node)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = newUUID()
	}
	n.NodeID = id

	_, err := t.backend.db.Exec(
		`INSERT OR REPLACE INTO nodes (`+nodeColumns+`)
         VALUES (?, ?, ?, ?, ?, ?)`,
		n.NodeID, n.AutomatonID, n.Payload, n.DependsOn, n.ClonedFrom,
		nullTimeStr(n.ClonedAt))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *table) fetchNodes(filter types.Filter) ([]any, error) {
	query := "SELECT " + nodeColumns + " FROM nodes"
	var args []any

	automatonID, err := stringFilter(filter, "automaton_id")
	if err != nil {
		return nil, err
	}
	if automatonID != "" {
		query += " WHERE automaton_id = ?"
		args = append(args, automatonID)
	}
	query += " ORDER BY node_id"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNode(row scanner) (*types.Node, error) {
	var n types.Node
	var clonedAt sql.NullString
	err := row.Scan(&n.NodeID, &n.AutomatonID, &n.Payload, &n.DependsOn,
		&n.ClonedFrom, &clonedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if n.ClonedAt, err = parseNullTime(clonedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

const edgeColumns = `edge_id, automaton_id, prev_node_id, next_node_id, condition,
    payload, cloned_from, cloned_at`

func (t *table) getEdge(id string) (any, error) {
	row := t.backend.db.QueryRow(
		"SELECT "+edgeColumns+" FROM edges WHERE edge_id = ?", id)
	return scanEdge(row)
}

func (t *table) setEdge(id string, data any) (string, error) {
	e, ok := data.(*types.Edge)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = newUUID()
	}
	e.EdgeID = id

	_, err := t.backend.db.Exec(
		`INSERT OR REPLACE INTO edges (`+edgeColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EdgeID, e.AutomatonID, e.PrevNodeID, e.NextNodeID, e.Condition,
		e.Payload, e.ClonedFrom, nullTimeStr(e.ClonedAt))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *table) fetchEdges(filter types.Filter) ([]any, error) {
	query := "SELECT " + edgeColumns + " FROM edges"
	var args []any

	automatonID, err := stringFilter(filter, "automaton_id")
	if err != nil {
		return nil, err
	}
	if automatonID != "" {
		query += " WHERE automaton_id = ?"
		args = append(args, automatonID)
	}
	query += " ORDER BY edge_id"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEdge(row scanner) (*types.Edge, error) {
	var e types.Edge
	var clonedAt sql.NullString
	err := row.Scan(&e.EdgeID, &e.AutomatonID, &e.PrevNodeID, &e.NextNodeID,
		&e.Condition, &e.Payload, &e.ClonedFrom, &clonedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if e.ClonedAt, err = parseNullTime(clonedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
