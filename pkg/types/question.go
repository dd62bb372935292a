package types

import "time"

// Question input types. The input type selects how an answer payload is
// shaped and validated; the branching engine only ever inspects the string
// discriminator of choice-like answers.
const (
	InputBool        = "bool"
	InputChoice      = "choice"
	InputMultiChoice = "multichoice"
	InputText        = "text"
	InputReason      = "reason"
	InputDate        = "date"
	InputDateRange   = "daterange"
	InputURL         = "url"
	InputLookup      = "lookup"
)

// validInputTypes is the set of recognized input type values.
var validInputTypes = map[string]bool{
	InputBool:        true,
	InputChoice:      true,
	InputMultiChoice: true,
	InputText:        true,
	InputReason:      true,
	InputDate:        true,
	InputDateRange:   true,
	InputURL:         true,
	InputLookup:      true,
}

// KnownInputType reports whether s is a recognized input type.
func KnownInputType(s string) bool {
	return validInputTypes[s]
}

// Question belongs to exactly one section. Position orders questions among
// their section siblings. NodeID optionally links the question to a node in
// the template's automaton; only linked questions can be branching sources
// or targets. Obligatory questions must be answered for their section to
// validate.
type Question struct {
	QuestionID  string    `json:"question_id"`
	SectionID   string    `json:"section_id"`
	Position    int       `json:"position"`
	InputType   string    `json:"input_type"`
	Label       string    `json:"label,omitempty"`
	Text        string    `json:"text"`
	FramingText string    `json:"framing_text,omitempty"`
	HelpText    string    `json:"help_text,omitempty"`
	Obligatory  bool      `json:"obligatory"`
	NodeID      string    `json:"node_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CannedAnswer is one of the discrete choices offered by a choice-type
// question. Choice is the stored discriminator value; CannedText is the prose
// used when rendering a finished plan. EdgeID optionally links the choice to
// an edge in the automaton, making it a branching choice.
type CannedAnswer struct {
	AnswerID   string    `json:"answer_id"`
	QuestionID string    `json:"question_id"`
	Position   int       `json:"position"`
	Choice     string    `json:"choice"`
	CannedText string    `json:"canned_text,omitempty"`
	EdgeID     string    `json:"edge_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
