package types

// Standard table names for Store.GetTable.
const (
	TemplatesTable        = "templates"
	SectionsTable         = "sections"
	QuestionsTable        = "questions"
	CannedAnswersTable    = "canned_answers"
	AutomatonsTable       = "automatons"
	NodesTable            = "nodes"
	EdgesTable            = "edges"
	PlansTable            = "plans"
	QuestionValidityTable = "question_validities"
	SectionValidityTable  = "section_validities"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TemplatesTable,
	SectionsTable,
	QuestionsTable,
	CannedAnswersTable,
	AutomatonsTable,
	NodesTable,
	EdgesTable,
	PlansTable,
	QuestionValidityTable,
	SectionValidityTable,
}
