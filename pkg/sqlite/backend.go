// Package sqlite exposes the SQLite storage backend as a types.Store.
package sqlite

import (
	"github.com/mesh-intelligence/signpost/internal/sqlite"
	"github.com/mesh-intelligence/signpost/pkg/types"
)

// NewBackend creates a new SQLite-backed Store. The backend is detached;
// call Attach with a Config before use.
func NewBackend() types.Store {
	return sqlite.NewBackend()
}
