package types

import "context"

// LookupEntry is one result from an external metadata registry. The engine
// stores entries opaquely in a plan's answer data and never branches on
// their contents.
type LookupEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source,omitempty"`
}

// LookupProvider is the capability interface for questions whose input type
// is "lookup". Implementations resolve a search term against an external
// vocabulary or registry.
type LookupProvider interface {
	Lookup(ctx context.Context, term string) ([]LookupEntry, error)
}
