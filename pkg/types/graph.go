package types

import "time"

// Automaton is the finite-state graph owned by a template. It groups the
// nodes and edges that drive branching and is the unit of cloning.
type Automaton struct {
	AutomatonID string     `json:"automaton_id"`
	Slug        string     `json:"slug"`
	ClonedFrom  string     `json:"cloned_from,omitempty"`
	ClonedAt    *time.Time `json:"cloned_at,omitempty"`
}

// Node belongs to exactly one automaton. A question may own a node; the node
// is then the question's identity inside the graph. DependsOn names another
// node that should have been visited first; it is advisory only and is not
// enforced by the graph walk.
type Node struct {
	NodeID      string     `json:"node_id"`
	AutomatonID string     `json:"automaton_id"`
	Payload     string     `json:"payload,omitempty"`
	DependsOn   string     `json:"depends_on,omitempty"`
	ClonedFrom  string     `json:"cloned_from,omitempty"`
	ClonedAt    *time.Time `json:"cloned_at,omitempty"`
}

// Edge belongs to one automaton. Either endpoint may be unset: an empty
// PrevNodeID means "from nowhere" (entry edge) and an empty NextNodeID means
// "to nowhere" (explicit terminus). Condition is equality-matched against an
// answer's discriminator value.
type Edge struct {
	EdgeID      string     `json:"edge_id"`
	AutomatonID string     `json:"automaton_id"`
	PrevNodeID  string     `json:"prev_node_id,omitempty"`
	NextNodeID  string     `json:"next_node_id,omitempty"`
	Condition   string     `json:"condition,omitempty"`
	Payload     string     `json:"payload,omitempty"`
	ClonedFrom  string     `json:"cloned_from,omitempty"`
	ClonedAt    *time.Time `json:"cloned_at,omitempty"`
}
