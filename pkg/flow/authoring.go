package flow

import (
	"time"

	"github.com/google/uuid"
	"github.com/mesh-intelligence/signpost/pkg/types"
)

// Authoring operations mutate a template bundle in place. They reject
// published templates; a published template may only be changed by branching
// a new version.

// CreateNode allocates a node in the template's automaton and links the
// question to it. Idempotent: a question that already owns a node keeps it.
// The automaton is created on first use.
func CreateNode(b *types.TemplateBundle, questionID string) (*types.Node, error) {
	if b.Template.IsPublished() {
		return nil, types.ErrTemplatePublished
	}
	q := b.Question(questionID)
	if q == nil {
		return nil, types.ErrUnknownQuestion
	}
	if q.NodeID != "" {
		for _, n := range b.Nodes {
			if n.NodeID == q.NodeID {
				return n, nil
			}
		}
	}
	ensureAutomaton(b)
	node := &types.Node{
		NodeID:      uuid.Must(uuid.NewV7()).String(),
		AutomatonID: b.Automaton.AutomatonID,
		Payload:     q.QuestionID,
	}
	b.Nodes = append(b.Nodes, node)
	q.NodeID = node.NodeID
	q.UpdatedAt = time.Now().UTC()
	return node, nil
}

// CreateEdge allocates an edge for a canned answer: condition from the
// answer's choice, previous node the owning question's node (created on
// demand), and next node defaulting to the positional successor's node when
// one exists. The default target is a starting point for editors, not a
// constraint. Idempotent: an answer that already owns an edge keeps it.
func CreateEdge(b *types.TemplateBundle, answerID string) (*types.Edge, error) {
	if b.Template.IsPublished() {
		return nil, types.ErrTemplatePublished
	}
	ca := findCannedAnswer(b, answerID)
	if ca == nil {
		return nil, types.ErrNotFound
	}
	if ca.EdgeID != "" {
		for _, e := range b.Edges {
			if e.EdgeID == ca.EdgeID {
				return e, nil
			}
		}
	}
	node, err := CreateNode(b, ca.QuestionID)
	if err != nil {
		return nil, err
	}

	edge := &types.Edge{
		EdgeID:      uuid.Must(uuid.NewV7()).String(),
		AutomatonID: b.Automaton.AutomatonID,
		PrevNodeID:  node.NodeID,
		Condition:   ca.Choice,
		Payload:     ca.CannedText,
	}
	if target := defaultEdgeTarget(b, ca.QuestionID); target != "" {
		edge.NextNodeID = target
	}
	b.Edges = append(b.Edges, edge)
	ca.EdgeID = edge.EdgeID
	ca.UpdatedAt = time.Now().UTC()
	return edge, nil
}

// UpdateEdge re-derives an existing edge's condition and payload from the
// current canned-answer state without reallocating its identity. Endpoint
// edits made by editors are preserved.
func UpdateEdge(b *types.TemplateBundle, answerID string) (*types.Edge, error) {
	if b.Template.IsPublished() {
		return nil, types.ErrTemplatePublished
	}
	ca := findCannedAnswer(b, answerID)
	if ca == nil {
		return nil, types.ErrNotFound
	}
	if ca.EdgeID == "" {
		return CreateEdge(b, answerID)
	}
	for _, e := range b.Edges {
		if e.EdgeID == ca.EdgeID {
			e.Condition = ca.Choice
			e.Payload = ca.CannedText
			ca.UpdatedAt = time.Now().UTC()
			return e, nil
		}
	}
	return nil, types.ErrNotFound
}

// defaultEdgeTarget returns the node of the question's positional successor,
// when that successor owns one. Requires a structurally valid bundle.
func defaultEdgeTarget(b *types.TemplateBundle, questionID string) string {
	g, err := NewGraph(b)
	if err != nil {
		return ""
	}
	q, ok := g.questions[questionID]
	if !ok {
		return ""
	}
	next := g.positionalNext(q)
	if next == nil {
		return ""
	}
	return next.NodeID
}

func ensureAutomaton(b *types.TemplateBundle) {
	if b.Automaton != nil {
		return
	}
	b.Automaton = &types.Automaton{
		AutomatonID: uuid.Must(uuid.NewV7()).String(),
		Slug:        b.Template.TemplateID,
	}
	b.Template.AutomatonID = b.Automaton.AutomatonID
}

func findCannedAnswer(b *types.TemplateBundle, answerID string) *types.CannedAnswer {
	for _, ca := range b.CannedAnswers {
		if ca.AnswerID == answerID {
			return ca
		}
	}
	return nil
}
