package types

// TemplateBundle is a template together with every entity it owns: sections,
// questions, canned answers, and the automaton graph. The navigation engine
// operates on bundles, and stores persist them as a unit so cloning is
// all-or-nothing.
type TemplateBundle struct {
	Template      *Template       `json:"template"`
	Sections      []*Section      `json:"sections"`
	Questions     []*Question     `json:"questions"`
	CannedAnswers []*CannedAnswer `json:"canned_answers"`
	Automaton     *Automaton      `json:"automaton,omitempty"`
	Nodes         []*Node         `json:"nodes"`
	Edges         []*Edge         `json:"edges"`
}

// Section returns the section with the given ID, or nil.
func (b *TemplateBundle) Section(id string) *Section {
	for _, s := range b.Sections {
		if s.SectionID == id {
			return s
		}
	}
	return nil
}

// Question returns the question with the given ID, or nil.
func (b *TemplateBundle) Question(id string) *Question {
	for _, q := range b.Questions {
		if q.QuestionID == id {
			return q
		}
	}
	return nil
}
