// Package storetest opens throwaway SQLite stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/pcrm/internal/config"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
)

// Open creates a store backed by a fresh database file in a temporary directory. The store is
// closed when the test ends.
func Open(t *testing.T) *store.Store {
	t.Helper()
	cfg := config.Database{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "pcrm.db"),
	}
	s, err := store.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err, "failed to open the test store")
	t.Cleanup(func() { s.Close() })
	return s
}

// Count returns the number of rows of a table, for checking side effects.
func Count(t *testing.T, s *store.Store, table string) int {
	t.Helper()
	var count int
	require.NoError(t, s.DB().Get(&count, "SELECT COUNT(*) FROM "+table))
	return count
}
