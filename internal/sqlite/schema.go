// Package sqlite implements the SQLite storage backend for Signpost.
package sqlite

// Schema DDL for all tables.
const (
	createTemplates = `CREATE TABLE IF NOT EXISTS templates (
    template_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    abbreviation TEXT,
    version INTEGER NOT NULL,
    automaton_id TEXT,
    published TEXT,
    published_by TEXT,
    cloned_from TEXT,
    added_by TEXT,
    modified_by TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createSections = `CREATE TABLE IF NOT EXISTS sections (
    section_id TEXT PRIMARY KEY,
    template_id TEXT NOT NULL,
    super_section_id TEXT,
    position INTEGER NOT NULL,
    depth INTEGER NOT NULL,
    label TEXT,
    title TEXT NOT NULL,
    introduction TEXT,
    branching INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (template_id) REFERENCES templates(template_id)
);`

	createQuestions = `CREATE TABLE IF NOT EXISTS questions (
    question_id TEXT PRIMARY KEY,
    section_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    input_type TEXT NOT NULL,
    label TEXT,
    text TEXT NOT NULL,
    framing_text TEXT,
    help_text TEXT,
    obligatory INTEGER NOT NULL DEFAULT 0,
    node_id TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (section_id) REFERENCES sections(section_id)
);`

	createCannedAnswers = `CREATE TABLE IF NOT EXISTS canned_answers (
    answer_id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    choice TEXT NOT NULL,
    canned_text TEXT,
    edge_id TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (question_id) REFERENCES questions(question_id)
);`

	createAutomatons = `CREATE TABLE IF NOT EXISTS automatons (
    automaton_id TEXT PRIMARY KEY,
    slug TEXT NOT NULL,
    cloned_from TEXT,
    cloned_at TEXT
);`

	createNodes = `CREATE TABLE IF NOT EXISTS nodes (
    node_id TEXT PRIMARY KEY,
    automaton_id TEXT NOT NULL,
    payload TEXT,
    depends_on TEXT,
    cloned_from TEXT,
    cloned_at TEXT,
    FOREIGN KEY (automaton_id) REFERENCES automatons(automaton_id)
);`

	createEdges = `CREATE TABLE IF NOT EXISTS edges (
    edge_id TEXT PRIMARY KEY,
    automaton_id TEXT NOT NULL,
    prev_node_id TEXT,
    next_node_id TEXT,
    condition TEXT,
    payload TEXT,
    cloned_from TEXT,
    cloned_at TEXT,
    FOREIGN KEY (automaton_id) REFERENCES automatons(automaton_id)
);`

	createPlans = `CREATE TABLE IF NOT EXISTS plans (
    plan_id TEXT PRIMARY KEY,
    template_id TEXT NOT NULL,
    title TEXT NOT NULL,
    abbreviation TEXT,
    version INTEGER NOT NULL,
    data TEXT NOT NULL,
    previous_data TEXT NOT NULL,
    trail TEXT,
    visited_sections TEXT,
    editors TEXT,
    locked TEXT,
    locked_by TEXT,
    published TEXT,
    published_by TEXT,
    cloned_from TEXT,
    added_by TEXT,
    modified_by TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (template_id) REFERENCES templates(template_id)
);`

	createQuestionValidities = `CREATE TABLE IF NOT EXISTS question_validities (
    plan_id TEXT NOT NULL,
    question_id TEXT NOT NULL,
    valid INTEGER NOT NULL DEFAULT 0,
    last_validated TEXT NOT NULL,
    PRIMARY KEY (plan_id, question_id),
    FOREIGN KEY (plan_id) REFERENCES plans(plan_id)
);`

	createSectionValidities = `CREATE TABLE IF NOT EXISTS section_validities (
    plan_id TEXT NOT NULL,
    section_id TEXT NOT NULL,
    valid INTEGER NOT NULL DEFAULT 0,
    last_validated TEXT NOT NULL,
    PRIMARY KEY (plan_id, section_id),
    FOREIGN KEY (plan_id) REFERENCES plans(plan_id)
);`
)

// allSchemas lists every DDL statement executed on Attach.
var allSchemas = []string{
	createTemplates,
	createSections,
	createQuestions,
	createCannedAnswers,
	createAutomatons,
	createNodes,
	createEdges,
	createPlans,
	createQuestionValidities,
	createSectionValidities,
}
