package sqlite

import (
	"time"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

// Seed installs the built-in demo template: two sections where the first
// question branches. Answering "yes" on the storage question skips the
// storage-details question and jumps straight to the sharing section;
// answering "no" continues in order. The template is saved published so plans
// can start on it immediately. Works against any Store, not just this
// backend's.
func Seed(store types.Store, user string) (*types.TemplateBundle, error) {
	now := time.Now().UTC()

	automaton := &types.Automaton{
		AutomatonID: newUUID(),
		Slug:        "demo-storage-branching",
	}
	n1 := &types.Node{NodeID: newUUID(), AutomatonID: automaton.AutomatonID}
	n2 := &types.Node{NodeID: newUUID(), AutomatonID: automaton.AutomatonID}
	n3 := &types.Node{NodeID: newUUID(), AutomatonID: automaton.AutomatonID}

	yesEdge := &types.Edge{
		EdgeID:      newUUID(),
		AutomatonID: automaton.AutomatonID,
		PrevNodeID:  n1.NodeID,
		NextNodeID:  n3.NodeID,
		Condition:   "yes",
		Payload:     "Existing institutional storage will be used.",
	}
	noEdge := &types.Edge{
		EdgeID:      newUUID(),
		AutomatonID: automaton.AutomatonID,
		PrevNodeID:  n1.NodeID,
		NextNodeID:  n2.NodeID,
		Condition:   "no",
		Payload:     "New storage arrangements are required.",
	}

	template := &types.Template{
		TemplateID:   newUUID(),
		Title:        "Demo Data Management Plan",
		Abbreviation: "demo",
		Version:      1,
		AutomatonID:  automaton.AutomatonID,
		Published:    &now,
		PublishedBy:  user,
		AddedBy:      user,
		ModifiedBy:   user,
	}

	storage := &types.Section{
		SectionID:    newUUID(),
		TemplateID:   template.TemplateID,
		Position:     1,
		Depth:        1,
		Title:        "Data storage",
		Introduction: "Where and how the project's data will be kept.",
		Branching:    true,
	}
	sharing := &types.Section{
		SectionID:    newUUID(),
		TemplateID:   template.TemplateID,
		Position:     2,
		Depth:        1,
		Title:        "Data sharing",
		Introduction: "How the data will be made available to others.",
	}

	q1 := &types.Question{
		QuestionID: newUUID(),
		SectionID:  storage.SectionID,
		Position:   1,
		InputType:  types.InputBool,
		Text:       "Will you use existing institutional storage?",
		HelpText:   "Answer yes if your institution already provides suitable storage.",
		Obligatory: true,
		NodeID:     n1.NodeID,
	}
	q2 := &types.Question{
		QuestionID: newUUID(),
		SectionID:  storage.SectionID,
		Position:   2,
		InputType:  types.InputText,
		Text:       "Describe the storage arrangements you will set up.",
		Obligatory: true,
		NodeID:     n2.NodeID,
	}
	q3 := &types.Question{
		QuestionID: newUUID(),
		SectionID:  sharing.SectionID,
		Position:   1,
		InputType:  types.InputText,
		Text:       "How will the data be shared after the project ends?",
		Obligatory: true,
		NodeID:     n3.NodeID,
	}

	yes := &types.CannedAnswer{
		AnswerID:   newUUID(),
		QuestionID: q1.QuestionID,
		Position:   1,
		Choice:     "yes",
		CannedText: "Existing institutional storage will be used.",
		EdgeID:     yesEdge.EdgeID,
	}
	no := &types.CannedAnswer{
		AnswerID:   newUUID(),
		QuestionID: q1.QuestionID,
		Position:   2,
		Choice:     "no",
		CannedText: "New storage arrangements are required.",
		EdgeID:     noEdge.EdgeID,
	}

	bundle := &types.TemplateBundle{
		Template:      template,
		Sections:      []*types.Section{storage, sharing},
		Questions:     []*types.Question{q1, q2, q3},
		CannedAnswers: []*types.CannedAnswer{yes, no},
		Automaton:     automaton,
		Nodes:         []*types.Node{n1, n2, n3},
		Edges:         []*types.Edge{yesEdge, noEdge},
	}
	if err := store.SaveBundle(bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}
