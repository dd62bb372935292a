package flow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mesh-intelligence/signpost/pkg/types"
)

// CloneAutomaton deep-copies an automaton with its nodes and edges. Every
// copy gets a fresh ID and records where and when it was cloned from, and
// edge endpoints are remapped so the clone's edges connect the clones of the
// nodes the originals connected. The returned map carries old node and edge
// IDs to their clones' IDs.
//
// A malformed source whose edge references a node outside its own node set
// is a fatal consistency error: nothing is cloned and ErrForeignEndpoint is
// returned.
func CloneAutomaton(a *types.Automaton, nodes []*types.Node, edges []*types.Edge) (*types.Automaton, []*types.Node, []*types.Edge, map[string]string, error) {
	nodeSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.AutomatonID != a.AutomatonID {
			return nil, nil, nil, nil, fmt.Errorf("node %s: %w", n.NodeID, types.ErrForeignEndpoint)
		}
		nodeSet[n.NodeID] = true
	}
	for _, e := range edges {
		if e.AutomatonID != a.AutomatonID {
			return nil, nil, nil, nil, fmt.Errorf("edge %s: %w", e.EdgeID, types.ErrForeignEndpoint)
		}
		if e.PrevNodeID != "" && !nodeSet[e.PrevNodeID] {
			return nil, nil, nil, nil, fmt.Errorf("edge %s prev node: %w", e.EdgeID, types.ErrForeignEndpoint)
		}
		if e.NextNodeID != "" && !nodeSet[e.NextNodeID] {
			return nil, nil, nil, nil, fmt.Errorf("edge %s next node: %w", e.EdgeID, types.ErrForeignEndpoint)
		}
	}

	now := time.Now().UTC()
	idmap := make(map[string]string, len(nodes)+len(edges))

	clone := &types.Automaton{
		AutomatonID: uuid.Must(uuid.NewV7()).String(),
		Slug:        a.Slug,
		ClonedFrom:  a.AutomatonID,
		ClonedAt:    &now,
	}

	clonedNodes := make([]*types.Node, 0, len(nodes))
	for _, n := range nodes {
		c := *n
		c.NodeID = uuid.Must(uuid.NewV7()).String()
		c.AutomatonID = clone.AutomatonID
		c.ClonedFrom = n.NodeID
		c.ClonedAt = &now
		idmap[n.NodeID] = c.NodeID
		clonedNodes = append(clonedNodes, &c)
	}
	// DependsOn names a node by ID; remap it alongside the endpoints.
	for _, c := range clonedNodes {
		if c.DependsOn != "" {
			if mapped, ok := idmap[c.DependsOn]; ok {
				c.DependsOn = mapped
			}
		}
	}

	clonedEdges := make([]*types.Edge, 0, len(edges))
	for _, e := range edges {
		c := *e
		c.EdgeID = uuid.Must(uuid.NewV7()).String()
		c.AutomatonID = clone.AutomatonID
		c.PrevNodeID = idmap[e.PrevNodeID]
		c.NextNodeID = idmap[e.NextNodeID]
		c.ClonedFrom = e.EdgeID
		c.ClonedAt = &now
		idmap[e.EdgeID] = c.EdgeID
		clonedEdges = append(clonedEdges, &c)
	}

	return clone, clonedNodes, clonedEdges, idmap, nil
}

// NewTemplateVersion deep-clones a whole template bundle into the next
// version of its lineage: sections keep their tree shape and positions,
// questions keep their node linkage, canned answers keep their edge linkage,
// with every internal reference remapped onto the clones. The new version is
// a draft regardless of the source's publish state.
//
// The source bundle is validated first; cloning a malformed bundle is
// rejected rather than producing a half-remapped copy.
func NewTemplateVersion(b *types.TemplateBundle, user string) (*types.TemplateBundle, error) {
	if _, err := NewGraph(b); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := &types.TemplateBundle{}

	idmap := make(map[string]string)
	if b.Automaton != nil {
		automaton, nodes, edges, graphIDs, err := CloneAutomaton(b.Automaton, b.Nodes, b.Edges)
		if err != nil {
			return nil, err
		}
		out.Automaton = automaton
		out.Nodes = nodes
		out.Edges = edges
		idmap = graphIDs
	}

	tpl := *b.Template
	tpl.TemplateID = uuid.Must(uuid.NewV7()).String()
	tpl.Version = b.Template.Version + 1
	tpl.Published = nil
	tpl.PublishedBy = ""
	tpl.ClonedFrom = b.Template.TemplateID
	tpl.ModifiedBy = user
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	if out.Automaton != nil {
		tpl.AutomatonID = out.Automaton.AutomatonID
	}
	out.Template = &tpl

	// Sections first, two passes: allocate IDs, then remap the tree.
	secmap := make(map[string]string, len(b.Sections))
	for _, s := range b.Sections {
		c := *s
		c.SectionID = uuid.Must(uuid.NewV7()).String()
		c.TemplateID = tpl.TemplateID
		c.CreatedAt = now
		c.UpdatedAt = now
		secmap[s.SectionID] = c.SectionID
		out.Sections = append(out.Sections, &c)
	}
	for _, c := range out.Sections {
		if c.SuperSectionID != "" {
			c.SuperSectionID = secmap[c.SuperSectionID]
		}
	}

	qmap := make(map[string]string, len(b.Questions))
	for _, q := range b.Questions {
		c := *q
		c.QuestionID = uuid.Must(uuid.NewV7()).String()
		c.SectionID = secmap[q.SectionID]
		c.NodeID = idmap[q.NodeID]
		c.CreatedAt = now
		c.UpdatedAt = now
		qmap[q.QuestionID] = c.QuestionID
		out.Questions = append(out.Questions, &c)
	}

	for _, ca := range b.CannedAnswers {
		c := *ca
		c.AnswerID = uuid.Must(uuid.NewV7()).String()
		c.QuestionID = qmap[ca.QuestionID]
		c.EdgeID = idmap[ca.EdgeID]
		c.CreatedAt = now
		c.UpdatedAt = now
		out.CannedAnswers = append(out.CannedAnswers, &c)
	}

	return out, nil
}

// SaveAs copies the tracked plan into a new plan on the same template: same
// answer data and previous-data snapshot, validity records copied rather
// than recomputed, and ownership reset to the acting user unless keepUsers
// is set. The copy is unlocked and unpublished regardless of the source.
func (t *Tracker) SaveAs(title, user, abbreviation string, keepUsers bool) (*types.Plan, []*types.QuestionValidity, []*types.SectionValidity) {
	now := time.Now().UTC()
	src := t.plan

	copyPlan := &types.Plan{
		PlanID:       uuid.Must(uuid.NewV7()).String(),
		TemplateID:   src.TemplateID,
		Title:        title,
		Abbreviation: abbreviation,
		Version:      1,
		Data:         copyAnswers(src.Data),
		PreviousData: copyAnswers(src.PreviousData),
		Trail:        copyStrings(src.Trail),
		ClonedFrom:   src.PlanID,
		AddedBy:      user,
		ModifiedBy:   user,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	copyPlan.VisitedSections = append(copyPlan.VisitedSections, src.VisitedSections...)
	if keepUsers {
		copyPlan.Editors = append(copyPlan.Editors, src.Editors...)
		if !containsString(copyPlan.Editors, user) {
			copyPlan.Editors = append(copyPlan.Editors, user)
		}
	} else {
		copyPlan.Editors = []string{user}
	}

	var qv []*types.QuestionValidity
	for _, v := range t.QuestionValidities() {
		c := *v
		c.PlanID = copyPlan.PlanID
		qv = append(qv, &c)
	}
	var sv []*types.SectionValidity
	for _, v := range t.SectionValidities() {
		c := *v
		c.PlanID = copyPlan.PlanID
		sv = append(sv, &c)
	}
	return copyPlan, qv, sv
}

// NewPlanVersion reopens a locked or published plan as a fresh mutable plan
// with an incremented version. Returns ErrPlanNotLocked when the plan is
// still editable; editing continues on the original instead.
func NewPlanVersion(src *types.Plan, user string) (*types.Plan, error) {
	if !src.IsLocked() {
		return nil, types.ErrPlanNotLocked
	}
	now := time.Now().UTC()
	next := &types.Plan{
		PlanID:       uuid.Must(uuid.NewV7()).String(),
		TemplateID:   src.TemplateID,
		Title:        src.Title,
		Abbreviation: src.Abbreviation,
		Version:      src.Version + 1,
		Data:         copyAnswers(src.Data),
		PreviousData: copyAnswers(src.PreviousData),
		Trail:        copyStrings(src.Trail),
		ClonedFrom:   src.PlanID,
		AddedBy:      src.AddedBy,
		ModifiedBy:   user,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	next.VisitedSections = append(next.VisitedSections, src.VisitedSections...)
	next.Editors = append(next.Editors, src.Editors...)
	return next, nil
}

func copyAnswers(in map[string]types.Answer) map[string]types.Answer {
	out := make(map[string]types.Answer, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
