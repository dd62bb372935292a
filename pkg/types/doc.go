// Package types defines the entity model, storage interfaces, and standard
// error values for the Signpost questionnaire system: templates made of
// sections and questions, the automaton graph that drives branching, and the
// plans users fill in by walking a template.
package types
