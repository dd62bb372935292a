package sqlite

import (
	"errors"
	"testing"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

func demoSavedBundle(t *testing.T, b *Backend) *types.TemplateBundle {
	t.Helper()
	bundle, err := Seed(b, "alice")
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	return bundle
}

func TestSaveBundleValidation(t *testing.T) {
	b := attachedBackend(t)

	if err := b.SaveBundle(nil); !errors.Is(err, types.ErrInvalidData) {
		t.Errorf("nil bundle: expected ErrInvalidData, got %v", err)
	}
	if err := b.SaveBundle(&types.TemplateBundle{}); !errors.Is(err, types.ErrInvalidData) {
		t.Errorf("bundle without template: expected ErrInvalidData, got %v", err)
	}
}

func TestSaveBundleGeneratesIDs(t *testing.T) {
	b := attachedBackend(t)

	bundle := &types.TemplateBundle{
		Template: &types.Template{Title: "Fresh", Version: 1},
		Sections: []*types.Section{{Position: 1, Depth: 1, Title: "Only"}},
	}
	if err := b.SaveBundle(bundle); err != nil {
		t.Fatalf("SaveBundle failed: %v", err)
	}
	if bundle.Template.TemplateID == "" {
		t.Error("template id not generated")
	}
	if bundle.Sections[0].SectionID == "" {
		t.Error("section id not generated")
	}
	if bundle.Template.CreatedAt.IsZero() || bundle.Template.UpdatedAt.IsZero() {
		t.Error("template timestamps not stamped")
	}
}

func TestLoadBundleRoundTrip(t *testing.T) {
	b := attachedBackend(t)
	saved := demoSavedBundle(t, b)

	loaded, err := b.LoadBundle(saved.Template.TemplateID)
	if err != nil {
		t.Fatalf("LoadBundle failed: %v", err)
	}

	if loaded.Template.Title != saved.Template.Title {
		t.Errorf("template title mismatch: %q", loaded.Template.Title)
	}
	if !loaded.Template.IsPublished() {
		t.Error("published state lost")
	}
	if len(loaded.Sections) != 2 || len(loaded.Questions) != 3 || len(loaded.CannedAnswers) != 2 {
		t.Fatalf("entity counts mismatch: %d sections, %d questions, %d canned answers",
			len(loaded.Sections), len(loaded.Questions), len(loaded.CannedAnswers))
	}
	if loaded.Automaton == nil {
		t.Fatal("automaton not loaded")
	}
	if len(loaded.Nodes) != 3 || len(loaded.Edges) != 2 {
		t.Fatalf("graph counts mismatch: %d nodes, %d edges", len(loaded.Nodes), len(loaded.Edges))
	}

	// Sections come back in walk order.
	if loaded.Sections[0].Title != "Data storage" || loaded.Sections[1].Title != "Data sharing" {
		t.Errorf("section order mismatch: %q, %q", loaded.Sections[0].Title, loaded.Sections[1].Title)
	}

	// Canned answers stay linked to their edges.
	for _, ca := range loaded.CannedAnswers {
		if ca.EdgeID == "" {
			t.Errorf("canned answer %q lost its edge link", ca.Choice)
		}
	}
}

func TestLoadBundleNotFound(t *testing.T) {
	b := attachedBackend(t)

	if _, err := b.LoadBundle("missing"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := b.LoadBundle(""); !errors.Is(err, types.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestSaveBundleReplacesOwnedRows(t *testing.T) {
	b := attachedBackend(t)
	bundle := demoSavedBundle(t, b)

	// Drop the second section (and its question) from the bundle and save
	// again: the removed rows must disappear from storage.
	bundle.Sections = bundle.Sections[:1]
	keep := bundle.Sections[0].SectionID
	var questions []*types.Question
	for _, q := range bundle.Questions {
		if q.SectionID == keep {
			questions = append(questions, q)
		}
	}
	bundle.Questions = questions

	if err := b.SaveBundle(bundle); err != nil {
		t.Fatalf("second SaveBundle failed: %v", err)
	}

	loaded, err := b.LoadBundle(bundle.Template.TemplateID)
	if err != nil {
		t.Fatalf("LoadBundle failed: %v", err)
	}
	if len(loaded.Sections) != 1 {
		t.Errorf("expected 1 section after replacement, got %d", len(loaded.Sections))
	}
	if len(loaded.Questions) != 2 {
		t.Errorf("expected 2 questions after replacement, got %d", len(loaded.Questions))
	}
	// The graph was saved unchanged.
	if len(loaded.Nodes) != 3 || len(loaded.Edges) != 2 {
		t.Errorf("graph should survive untouched: %d nodes, %d edges",
			len(loaded.Nodes), len(loaded.Edges))
	}
}

func TestLoadBundleToleratesMissingAutomaton(t *testing.T) {
	b := attachedBackend(t)
	bundle := demoSavedBundle(t, b)

	automatons := mustTable(t, b, types.AutomatonsTable)
	if err := automatons.Delete(bundle.Automaton.AutomatonID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	loaded, err := b.LoadBundle(bundle.Template.TemplateID)
	if err != nil {
		t.Fatalf("LoadBundle failed: %v", err)
	}
	if loaded.Automaton != nil {
		t.Error("expected nil automaton after its row was removed")
	}
	if len(loaded.Questions) != 3 {
		t.Errorf("questionnaire content should still load: %d questions", len(loaded.Questions))
	}
}

func TestSeed(t *testing.T) {
	b := attachedBackend(t)
	bundle := demoSavedBundle(t, b)

	if bundle.Template.AddedBy != "alice" || bundle.Template.PublishedBy != "alice" {
		t.Errorf("seed user not recorded: %+v", bundle.Template)
	}

	// The branching wiring: both canned answers of the first question carry
	// edges leaving the same node.
	var yes, no *types.CannedAnswer
	for _, ca := range bundle.CannedAnswers {
		switch ca.Choice {
		case "yes":
			yes = ca
		case "no":
			no = ca
		}
	}
	if yes == nil || no == nil {
		t.Fatal("expected yes and no canned answers")
	}
	edgeByID := map[string]*types.Edge{}
	for _, e := range bundle.Edges {
		edgeByID[e.EdgeID] = e
	}
	yesEdge, noEdge := edgeByID[yes.EdgeID], edgeByID[no.EdgeID]
	if yesEdge == nil || noEdge == nil {
		t.Fatal("canned answers not linked to edges")
	}
	if yesEdge.PrevNodeID != noEdge.PrevNodeID {
		t.Error("both edges should leave the branching question's node")
	}
	if yesEdge.NextNodeID == noEdge.NextNodeID {
		t.Error("yes and no must lead to different nodes")
	}
}
