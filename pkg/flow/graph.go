package flow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

// Graph is an immutable index over one template bundle. It resolves sections,
// questions, and automaton nodes/edges by ID, keeps siblings in position
// order, and precomputes the depth-first section order that positional
// navigation follows. NewGraph validates the bundle's structural invariants,
// so the resolver and tracker can assume a well-formed graph.
type Graph struct {
	bundle   *types.TemplateBundle
	template *types.Template

	sections  map[string]*types.Section
	questions map[string]*types.Question
	nodes     map[string]*types.Node
	edges     map[string]*types.Edge

	children         map[string][]*types.Section // super-section id ("" = top level) -> ordered siblings
	sectionQuestions map[string][]*types.Question
	canned           map[string][]*types.CannedAnswer
	questionByNode   map[string]*types.Question

	orderedSections  []*types.Section  // depth-first, children before later siblings
	orderedQuestions []*types.Question // positional walk order across the whole template
	questionIndex    map[string]int    // question id -> index in orderedQuestions
}

// NewGraph indexes and validates a template bundle. It rejects structural
// errors: references across templates or automatons, edge endpoints outside
// the automaton's node set, canned-answer edges whose previous node does not
// match the owning question's node, and super-section cycles.
func NewGraph(bundle *types.TemplateBundle) (*Graph, error) {
	if bundle == nil || bundle.Template == nil {
		return nil, types.ErrInvalidData
	}
	g := &Graph{
		bundle:           bundle,
		template:         bundle.Template,
		sections:         make(map[string]*types.Section),
		questions:        make(map[string]*types.Question),
		nodes:            make(map[string]*types.Node),
		edges:            make(map[string]*types.Edge),
		children:         make(map[string][]*types.Section),
		sectionQuestions: make(map[string][]*types.Question),
		canned:           make(map[string][]*types.CannedAnswer),
		questionByNode:   make(map[string]*types.Question),
		questionIndex:    make(map[string]int),
	}

	if err := g.indexSections(); err != nil {
		return nil, err
	}
	if err := g.indexAutomaton(); err != nil {
		return nil, err
	}
	if err := g.indexQuestions(); err != nil {
		return nil, err
	}
	if err := g.indexCannedAnswers(); err != nil {
		return nil, err
	}

	g.orderedSections = g.flattenSections("")
	for _, s := range g.orderedSections {
		for _, q := range g.sectionQuestions[s.SectionID] {
			g.questionIndex[q.QuestionID] = len(g.orderedQuestions)
			g.orderedQuestions = append(g.orderedQuestions, q)
		}
	}
	return g, nil
}

func (g *Graph) indexSections() error {
	for _, s := range g.bundle.Sections {
		if s.TemplateID != g.template.TemplateID {
			return fmt.Errorf("section %s: %w", s.SectionID, types.ErrCrossTemplate)
		}
		g.sections[s.SectionID] = s
	}
	for _, s := range g.bundle.Sections {
		if s.SuperSectionID != "" {
			if _, ok := g.sections[s.SuperSectionID]; !ok {
				return fmt.Errorf("section %s super-section: %w", s.SectionID, types.ErrUnknownSection)
			}
		}
		if err := g.checkSectionCycle(s); err != nil {
			return err
		}
		g.children[s.SuperSectionID] = append(g.children[s.SuperSectionID], s)
	}
	for _, siblings := range g.children {
		sortSections(siblings)
	}
	return nil
}

// checkSectionCycle walks the super-section chain from s. The chain must
// terminate at a top-level section within len(sections) steps.
func (g *Graph) checkSectionCycle(s *types.Section) error {
	seen := map[string]bool{s.SectionID: true}
	for cur := s; cur.SuperSectionID != ""; {
		next, ok := g.sections[cur.SuperSectionID]
		if !ok {
			return nil // missing super-section reported elsewhere
		}
		if seen[next.SectionID] {
			return fmt.Errorf("section %s: %w", s.SectionID, types.ErrSectionCycle)
		}
		seen[next.SectionID] = true
		cur = next
	}
	return nil
}

func (g *Graph) indexAutomaton() error {
	if g.bundle.Automaton == nil {
		if len(g.bundle.Nodes) > 0 || len(g.bundle.Edges) > 0 {
			return fmt.Errorf("nodes without automaton: %w", types.ErrInvalidData)
		}
		return nil
	}
	automatonID := g.bundle.Automaton.AutomatonID
	for _, n := range g.bundle.Nodes {
		if n.AutomatonID != automatonID {
			return fmt.Errorf("node %s: %w", n.NodeID, types.ErrForeignEndpoint)
		}
		g.nodes[n.NodeID] = n
	}
	for _, e := range g.bundle.Edges {
		if e.AutomatonID != automatonID {
			return fmt.Errorf("edge %s: %w", e.EdgeID, types.ErrForeignEndpoint)
		}
		if e.PrevNodeID != "" {
			if _, ok := g.nodes[e.PrevNodeID]; !ok {
				return fmt.Errorf("edge %s prev node: %w", e.EdgeID, types.ErrForeignEndpoint)
			}
		}
		if e.NextNodeID != "" {
			if _, ok := g.nodes[e.NextNodeID]; !ok {
				return fmt.Errorf("edge %s next node: %w", e.EdgeID, types.ErrForeignEndpoint)
			}
		}
		g.edges[e.EdgeID] = e
	}
	return nil
}

func (g *Graph) indexQuestions() error {
	for _, q := range g.bundle.Questions {
		if _, ok := g.sections[q.SectionID]; !ok {
			return fmt.Errorf("question %s section: %w", q.QuestionID, types.ErrUnknownSection)
		}
		if q.NodeID != "" {
			if _, ok := g.nodes[q.NodeID]; !ok {
				return fmt.Errorf("question %s node: %w", q.QuestionID, types.ErrForeignEndpoint)
			}
			g.questionByNode[q.NodeID] = q
		}
		g.questions[q.QuestionID] = q
		g.sectionQuestions[q.SectionID] = append(g.sectionQuestions[q.SectionID], q)
	}
	for _, qs := range g.sectionQuestions {
		sortQuestions(qs)
	}
	return nil
}

func (g *Graph) indexCannedAnswers() error {
	for _, ca := range g.bundle.CannedAnswers {
		q, ok := g.questions[ca.QuestionID]
		if !ok {
			return fmt.Errorf("canned answer %s: %w", ca.AnswerID, types.ErrUnknownQuestion)
		}
		if ca.EdgeID != "" {
			e, ok := g.edges[ca.EdgeID]
			if !ok {
				return fmt.Errorf("canned answer %s edge: %w", ca.AnswerID, types.ErrForeignEndpoint)
			}
			// The edge must leave the owning question's node; this is what
			// lets the resolver trust edge matches without cross-checking.
			if q.NodeID == "" || e.PrevNodeID != q.NodeID {
				return fmt.Errorf("canned answer %s: %w", ca.AnswerID, types.ErrEdgeNodeMismatch)
			}
		}
		g.canned[ca.QuestionID] = append(g.canned[ca.QuestionID], ca)
	}
	for _, cas := range g.canned {
		sortCannedAnswers(cas)
	}
	return nil
}

// flattenSections returns the depth-first section order starting at the
// given super-section scope: each sibling in position order, immediately
// followed by its own subtree.
func (g *Graph) flattenSections(superID string) []*types.Section {
	var out []*types.Section
	for _, s := range g.children[superID] {
		out = append(out, s)
		out = append(out, g.flattenSections(s.SectionID)...)
	}
	return out
}

// Template returns the indexed template.
func (g *Graph) Template() *types.Template {
	return g.template
}

// Bundle returns the underlying template bundle.
func (g *Graph) Bundle() *types.TemplateBundle {
	return g.bundle
}

// Section returns the section with the given ID.
// Returns ErrUnknownSection if the template has no such section.
func (g *Graph) Section(id string) (*types.Section, error) {
	s, ok := g.sections[id]
	if !ok {
		return nil, types.ErrUnknownSection
	}
	return s, nil
}

// Question returns the question with the given ID.
// Returns ErrUnknownQuestion if the template has no such question.
func (g *Graph) Question(id string) (*types.Question, error) {
	q, ok := g.questions[id]
	if !ok {
		return nil, types.ErrUnknownQuestion
	}
	return q, nil
}

// QuestionsOf returns the questions of a section in position order.
func (g *Graph) QuestionsOf(sectionID string) []*types.Question {
	return g.sectionQuestions[sectionID]
}

// CannedAnswersOf returns a question's canned answers in position order.
func (g *Graph) CannedAnswersOf(questionID string) []*types.CannedAnswer {
	return g.canned[questionID]
}

// TopLevelSections returns the template's depth-1 sections in position order.
func (g *Graph) TopLevelSections() []*types.Section {
	return g.children[""]
}

// Sections returns every section in depth-first order.
func (g *Graph) Sections() []*types.Section {
	return g.orderedSections
}

// NextSection returns the sibling section with the next-higher position in
// the same super-section scope, or nil if s is the last sibling.
func (g *Graph) NextSection(s *types.Section) *types.Section {
	siblings := g.children[s.SuperSectionID]
	for i, sib := range siblings {
		if sib.SectionID == s.SectionID && i+1 < len(siblings) {
			return siblings[i+1]
		}
	}
	return nil
}

// PrevSection returns the sibling section with the next-lower position in
// the same super-section scope, or nil if s is the first sibling.
func (g *Graph) PrevSection(s *types.Section) *types.Section {
	siblings := g.children[s.SuperSectionID]
	for i, sib := range siblings {
		if sib.SectionID == s.SectionID && i > 0 {
			return siblings[i-1]
		}
	}
	return nil
}

// TopmostSection walks the super-section chain to the depth-1 ancestor.
// A top-level section is its own topmost section.
func (g *Graph) TopmostSection(s *types.Section) *types.Section {
	cur := s
	for cur.SuperSectionID != "" {
		super, ok := g.sections[cur.SuperSectionID]
		if !ok {
			break
		}
		cur = super
	}
	return cur
}

// FullTitle joins the titles of s and its ancestors, topmost first. Labels
// prefix their title when set. Derived for display, never stored.
func (g *Graph) FullTitle(s *types.Section) string {
	var chain []*types.Section
	for cur := s; cur != nil; {
		chain = append([]*types.Section{cur}, chain...)
		if cur.SuperSectionID == "" {
			break
		}
		cur = g.sections[cur.SuperSectionID]
	}
	parts := make([]string, 0, len(chain))
	for _, sec := range chain {
		if sec.Label != "" {
			parts = append(parts, sec.Label+" "+sec.Title)
		} else {
			parts = append(parts, sec.Title)
		}
	}
	return strings.Join(parts, " / ")
}

// FirstQuestionOf returns the first question of a section by position, or
// nil for a section without questions.
func (g *Graph) FirstQuestionOf(s *types.Section) *types.Question {
	qs := g.sectionQuestions[s.SectionID]
	if len(qs) == 0 {
		return nil
	}
	return qs[0]
}

func sortSections(ss []*types.Section) {
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].Position != ss[j].Position {
			return ss[i].Position < ss[j].Position
		}
		return ss[i].SectionID < ss[j].SectionID
	})
}

func sortQuestions(qs []*types.Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		if qs[i].Position != qs[j].Position {
			return qs[i].Position < qs[j].Position
		}
		return qs[i].QuestionID < qs[j].QuestionID
	})
}

func sortCannedAnswers(cas []*types.CannedAnswer) {
	sort.SliceStable(cas, func(i, j int) bool {
		if cas[i].Position != cas[j].Position {
			return cas[i].Position < cas[j].Position
		}
		return cas[i].AnswerID < cas[j].AnswerID
	})
}
