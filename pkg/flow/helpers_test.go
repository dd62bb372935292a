package flow

import (
	"time"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

// demoBundle builds the two-section branching template used across the flow
// tests: answering "yes" on q1 jumps over q2 straight to q3 in the next
// section, answering "no" continues to q2.
//
//	s1 "Data storage" (branching): q1 (bool, node n1), q2 (text, node n2)
//	s2 "Data sharing":             q3 (text, node n3)
//	e-yes: n1 -> n3 on "yes"    e-no: n1 -> n2 on "no"
//
// The template is a draft; tests needing a published one call publish.
func demoBundle() *types.TemplateBundle {
	tpl := &types.Template{
		TemplateID:  "t1",
		Title:       "Demo Data Management Plan",
		Version:     1,
		AutomatonID: "a1",
	}
	return &types.TemplateBundle{
		Template: tpl,
		Sections: []*types.Section{
			{SectionID: "s1", TemplateID: "t1", Position: 1, Depth: 1, Title: "Data storage", Branching: true},
			{SectionID: "s2", TemplateID: "t1", Position: 2, Depth: 1, Title: "Data sharing"},
		},
		Questions: []*types.Question{
			{QuestionID: "q1", SectionID: "s1", Position: 1, InputType: types.InputBool, Text: "Use existing storage?", Obligatory: true, NodeID: "n1"},
			{QuestionID: "q2", SectionID: "s1", Position: 2, InputType: types.InputText, Text: "Describe the storage.", Obligatory: true, NodeID: "n2"},
			{QuestionID: "q3", SectionID: "s2", Position: 1, InputType: types.InputText, Text: "How is data shared?", Obligatory: true, NodeID: "n3"},
		},
		CannedAnswers: []*types.CannedAnswer{
			{AnswerID: "ca-yes", QuestionID: "q1", Position: 1, Choice: "yes", EdgeID: "e-yes"},
			{AnswerID: "ca-no", QuestionID: "q1", Position: 2, Choice: "no", EdgeID: "e-no"},
		},
		Automaton: &types.Automaton{AutomatonID: "a1", Slug: "demo"},
		Nodes: []*types.Node{
			{NodeID: "n1", AutomatonID: "a1"},
			{NodeID: "n2", AutomatonID: "a1"},
			{NodeID: "n3", AutomatonID: "a1"},
		},
		Edges: []*types.Edge{
			{EdgeID: "e-yes", AutomatonID: "a1", PrevNodeID: "n1", NextNodeID: "n3", Condition: "yes"},
			{EdgeID: "e-no", AutomatonID: "a1", PrevNodeID: "n1", NextNodeID: "n2", Condition: "no"},
		},
	}
}

// publish marks a bundle's template published for tests that need a
// plan-ready template.
func publish(b *types.TemplateBundle) *types.TemplateBundle {
	now := time.Now().UTC()
	b.Template.Published = &now
	b.Template.PublishedBy = "tester"
	return b
}

// nestedBundle builds a template with a subsection tree, no automaton, for
// testing depth-first ordering and titles:
//
//	top1 (pos 1): qa
//	  top1.sub1 (pos 1): qb
//	top2 (pos 2): qc
func nestedBundle() *types.TemplateBundle {
	tpl := &types.Template{TemplateID: "t2", Title: "Nested", Version: 1}
	return &types.TemplateBundle{
		Template: tpl,
		Sections: []*types.Section{
			{SectionID: "top1", TemplateID: "t2", Position: 1, Depth: 1, Label: "1", Title: "Collection"},
			{SectionID: "sub1", TemplateID: "t2", SuperSectionID: "top1", Position: 1, Depth: 2, Label: "1.1", Title: "Formats"},
			{SectionID: "top2", TemplateID: "t2", Position: 2, Depth: 1, Label: "2", Title: "Preservation"},
		},
		Questions: []*types.Question{
			{QuestionID: "qa", SectionID: "top1", Position: 1, InputType: types.InputText, Text: "What data?"},
			{QuestionID: "qb", SectionID: "sub1", Position: 1, InputType: types.InputText, Text: "Which formats?"},
			{QuestionID: "qc", SectionID: "top2", Position: 1, InputType: types.InputText, Text: "Where archived?"},
		},
	}
}
