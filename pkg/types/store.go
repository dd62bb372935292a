package types

import "errors"

// Store defines backend-agnostic storage access. Callers attach to a backend,
// access tables by name, and detach when done. Template bundles are saved and
// loaded as a unit so that clone operations commit atomically.
type Store interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Idempotent on first call;
	// returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations on tables return ErrStoreDetached.
	Detach() error

	// SaveBundle persists a whole template bundle in one transaction.
	// Either every entity of the bundle is committed or none of it is.
	SaveBundle(bundle *TemplateBundle) error

	// LoadBundle retrieves the template with the given ID together with its
	// sections, questions, canned answers, and automaton graph.
	// Returns ErrNotFound if the template does not exist.
	LoadBundle(templateID string) (*TemplateBundle, error)
}

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity struct.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. When id is empty a new UUID v7 is
	// generated. Returns the actual ID used (generated or provided).
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id string) error

	// Fetch returns all entities matching the filter, ordered by position
	// where the entity type has one, otherwise by creation time. An empty
	// filter returns every entity in the table.
	Fetch(filter Filter) ([]any, error)
}

// Filter narrows a Table.Fetch. Recognized keys depend on the table; parent
// id keys ("template_id", "section_id", "question_id", "plan_id",
// "automaton_id") are supported wherever the entity has that parent.
type Filter map[string]any

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrTableNotFound   = errors.New("table not found")
)

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter value type")
)
