// Package flow implements the navigation and branching engine: an indexed
// view of a template's section/question tree and automaton graph, the
// resolver that decides the next and previous question under a plan's
// answers, the tracker that maintains a plan's answer data and validity
// records, and the clone operations behind template and plan versioning.
package flow
