package types

import "errors"

// Structural errors. These are rejected synchronously at the authoring call
// that would create them and are never stored.
var (
	ErrForeignEndpoint  = errors.New("edge endpoint outside owning automaton")
	ErrEdgeNodeMismatch = errors.New("edge previous node does not match question node")
	ErrSectionCycle     = errors.New("section nesting contains a cycle")
	ErrCrossTemplate    = errors.New("reference crosses template boundary")
)

// Lifecycle errors. Published templates and locked plans are read only.
var (
	ErrTemplatePublished = errors.New("template is published and immutable")
	ErrTemplateDraft     = errors.New("template is not published")
	ErrPlanLocked        = errors.New("plan is locked")
	ErrPlanNotLocked     = errors.New("plan is not locked")
	ErrAlreadyPublished  = errors.New("already published")
)

// Navigation errors. Recoverable; surfaced to the caller as "no such
// question/section". A missing next question is not an error but a valid
// terminal outcome, reported as a nil question.
var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownSection  = errors.New("unknown section")
	ErrNoFirstQuestion = errors.New("template has no first question")
)

// Validation errors. Expected per-answer outcomes; the submitted payload
// fails the question's input-type constraints.
var (
	ErrInvalidAnswer = errors.New("answer fails input-type constraints")
	ErrUnknownInput  = errors.New("unknown input type")
)
