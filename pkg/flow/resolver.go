package flow

import "github.com/mesh-intelligence/signpost/pkg/types"

// FirstQuestion returns the first question of the first section, in
// depth-first position order, that has at least one question.
// Returns ErrNoFirstQuestion if every section is empty; a plan cannot be
// started on such a template.
func (g *Graph) FirstQuestion() (*types.Question, error) {
	if len(g.orderedQuestions) == 0 {
		return nil, types.ErrNoFirstQuestion
	}
	return g.orderedQuestions[0], nil
}

// NextQuestion resolves the question shown after questionID under the given
// answer data. An edge selected by the stored answer's discriminator takes
// precedence over position; this is what implements branching. When the
// question has no matching edge, the positional successor is used: the next
// question in the section, else the first question of the next section in
// depth-first order. A nil result with nil error is the terminal outcome:
// the walk has ended and the caller should show the plan summary.
func (g *Graph) NextQuestion(questionID string, data map[string]types.Answer) (*types.Question, error) {
	q, ok := g.questions[questionID]
	if !ok {
		return nil, types.ErrUnknownQuestion
	}
	if next, terminal := g.edgeNext(q, data); terminal {
		return nil, nil
	} else if next != nil {
		return next, nil
	}
	return g.positionalNext(q), nil
}

// edgeNext resolves the branching edge selected by the answer stored for q.
// It returns (target, false) when an edge picks a concrete next question,
// (nil, true) when the matched edge is an explicit terminus, and (nil, false)
// when positional fallback applies: no node, no matching canned answer, no
// edge on the chosen answer, or no discriminator in the data.
func (g *Graph) edgeNext(q *types.Question, data map[string]types.Answer) (*types.Question, bool) {
	if q.NodeID == "" {
		return nil, false
	}
	choice, ok := answerDiscriminator(data[q.QuestionID])
	if !ok {
		return nil, false
	}
	for _, ca := range g.canned[q.QuestionID] {
		if ca.Choice != choice || ca.EdgeID == "" {
			continue
		}
		edge := g.edges[ca.EdgeID]
		if edge.NextNodeID == "" {
			// Edge to nowhere: the chosen answer ends the walk.
			return nil, true
		}
		if target, ok := g.questionByNode[edge.NextNodeID]; ok {
			return target, false
		}
		// Target node owns no question; nothing to show, fall back.
		return nil, false
	}
	return nil, false
}

// positionalNext returns the question after q in the template-wide position
// order, or nil when q is the last question of the template.
func (g *Graph) positionalNext(q *types.Question) *types.Question {
	idx := g.questionIndex[q.QuestionID]
	if idx+1 >= len(g.orderedQuestions) {
		return nil
	}
	return g.orderedQuestions[idx+1]
}

// positionalPrev returns the question before q in the template-wide position
// order, or nil when q is the first question of the template.
func (g *Graph) positionalPrev(q *types.Question) *types.Question {
	idx := g.questionIndex[q.QuestionID]
	if idx == 0 {
		return nil
	}
	return g.orderedQuestions[idx-1]
}

// PrevQuestion resolves the question shown before questionID under the given
// answer data. Inbound edges are considered first: a candidate question whose
// edge points at this question's node counts only if re-deriving forward from
// it under the same data actually lands back here. The re-derivation step is
// needed because several answers across different questions may point edges
// at the same node; a naive reverse lookup would be ambiguous. When no
// inbound edge confirms, the positional predecessor is used. A nil result
// with nil error means questionID is the first question of the walk.
func (g *Graph) PrevQuestion(questionID string, data map[string]types.Answer) (*types.Question, error) {
	q, ok := g.questions[questionID]
	if !ok {
		return nil, types.ErrUnknownQuestion
	}
	if q.NodeID != "" {
		for _, e := range g.bundle.Edges {
			if e.NextNodeID != q.NodeID || e.PrevNodeID == "" {
				continue
			}
			candidate, ok := g.questionByNode[e.PrevNodeID]
			if !ok {
				continue
			}
			derived, err := g.NextQuestion(candidate.QuestionID, data)
			if err == nil && derived != nil && derived.QuestionID == q.QuestionID {
				return candidate, nil
			}
		}
	}
	return g.positionalPrev(q), nil
}

// AllPrecedingQuestions returns the questions a user passes through before
// questionID under the positional (non-branching) ordering. This is the
// progress-percentage view only; it must never gate access, since branching
// may skip any of these questions.
func (g *Graph) AllPrecedingQuestions(questionID string) ([]*types.Question, error) {
	idx, ok := g.questionIndex[questionID]
	if !ok {
		return nil, types.ErrUnknownQuestion
	}
	return g.orderedQuestions[:idx], nil
}

// answerDiscriminator extracts the string value an edge condition is matched
// against. Only string-shaped choices can steer branching; every other
// payload shape resolves positionally.
func answerDiscriminator(a types.Answer) (string, bool) {
	s, ok := a.Choice.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
