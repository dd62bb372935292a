package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

func TestNewGraphValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*types.TemplateBundle)
		wantErr error
	}{
		{
			name:   "valid bundle",
			mutate: func(b *types.TemplateBundle) {},
		},
		{
			name: "section from another template",
			mutate: func(b *types.TemplateBundle) {
				b.Sections[0].TemplateID = "other"
			},
			wantErr: types.ErrCrossTemplate,
		},
		{
			name: "unknown super-section",
			mutate: func(b *types.TemplateBundle) {
				b.Sections[1].SuperSectionID = "missing"
			},
			wantErr: types.ErrUnknownSection,
		},
		{
			name: "super-section cycle",
			mutate: func(b *types.TemplateBundle) {
				b.Sections[0].SuperSectionID = "s2"
				b.Sections[1].SuperSectionID = "s1"
			},
			wantErr: types.ErrSectionCycle,
		},
		{
			name: "node from another automaton",
			mutate: func(b *types.TemplateBundle) {
				b.Nodes[0].AutomatonID = "other"
			},
			wantErr: types.ErrForeignEndpoint,
		},
		{
			name: "edge from another automaton",
			mutate: func(b *types.TemplateBundle) {
				b.Edges[0].AutomatonID = "other"
			},
			wantErr: types.ErrForeignEndpoint,
		},
		{
			name: "edge endpoint outside node set",
			mutate: func(b *types.TemplateBundle) {
				b.Edges[0].NextNodeID = "missing"
			},
			wantErr: types.ErrForeignEndpoint,
		},
		{
			name: "question in unknown section",
			mutate: func(b *types.TemplateBundle) {
				b.Questions[0].SectionID = "missing"
			},
			wantErr: types.ErrUnknownSection,
		},
		{
			name: "question linked to unknown node",
			mutate: func(b *types.TemplateBundle) {
				b.Questions[0].NodeID = "missing"
			},
			wantErr: types.ErrForeignEndpoint,
		},
		{
			name: "canned answer for unknown question",
			mutate: func(b *types.TemplateBundle) {
				b.CannedAnswers[0].QuestionID = "missing"
			},
			wantErr: types.ErrUnknownQuestion,
		},
		{
			name: "canned answer edge leaving another node",
			mutate: func(b *types.TemplateBundle) {
				b.Edges[0].PrevNodeID = "n2"
			},
			wantErr: types.ErrEdgeNodeMismatch,
		},
		{
			name: "nodes without automaton",
			mutate: func(b *types.TemplateBundle) {
				b.Automaton = nil
				b.Edges = nil
				b.CannedAnswers = nil
			},
			wantErr: types.ErrInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := demoBundle()
			tt.mutate(bundle)
			_, err := NewGraph(bundle)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGraphSectionOrdering(t *testing.T) {
	g, err := NewGraph(nestedBundle())
	require.NoError(t, err)

	var ids []string
	for _, s := range g.Sections() {
		ids = append(ids, s.SectionID)
	}
	assert.Equal(t, []string{"top1", "sub1", "top2"}, ids,
		"children come before later siblings in depth-first order")

	tops := g.TopLevelSections()
	require.Len(t, tops, 2)
	assert.Equal(t, "top1", tops[0].SectionID)
	assert.Equal(t, "top2", tops[1].SectionID)
}

func TestGraphSectionNavigation(t *testing.T) {
	g, err := NewGraph(nestedBundle())
	require.NoError(t, err)

	top1, err := g.Section("top1")
	require.NoError(t, err)
	sub1, err := g.Section("sub1")
	require.NoError(t, err)
	top2, err := g.Section("top2")
	require.NoError(t, err)

	next := g.NextSection(top1)
	require.NotNil(t, next)
	assert.Equal(t, "top2", next.SectionID, "NextSection stays among siblings")
	assert.Nil(t, g.NextSection(top2))
	assert.Nil(t, g.NextSection(sub1), "only subsection has no later sibling")

	prev := g.PrevSection(top2)
	require.NotNil(t, prev)
	assert.Equal(t, "top1", prev.SectionID)
	assert.Nil(t, g.PrevSection(top1))

	assert.Equal(t, "top1", g.TopmostSection(sub1).SectionID)
	assert.Equal(t, "top2", g.TopmostSection(top2).SectionID)
}

func TestGraphFullTitle(t *testing.T) {
	g, err := NewGraph(nestedBundle())
	require.NoError(t, err)

	sub1, err := g.Section("sub1")
	require.NoError(t, err)
	assert.Equal(t, "1 Collection / 1.1 Formats", g.FullTitle(sub1))

	top2, err := g.Section("top2")
	require.NoError(t, err)
	assert.Equal(t, "2 Preservation", g.FullTitle(top2))
}

func TestGraphLookups(t *testing.T) {
	g, err := NewGraph(demoBundle())
	require.NoError(t, err)

	_, err = g.Section("missing")
	assert.ErrorIs(t, err, types.ErrUnknownSection)
	_, err = g.Question("missing")
	assert.ErrorIs(t, err, types.ErrUnknownQuestion)

	qs := g.QuestionsOf("s1")
	require.Len(t, qs, 2)
	assert.Equal(t, "q1", qs[0].QuestionID)
	assert.Equal(t, "q2", qs[1].QuestionID)

	cas := g.CannedAnswersOf("q1")
	require.Len(t, cas, 2)
	assert.Equal(t, "yes", cas[0].Choice)
	assert.Equal(t, "no", cas[1].Choice)
	assert.Empty(t, g.CannedAnswersOf("q2"))
}
