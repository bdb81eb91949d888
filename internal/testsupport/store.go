package testsupport

import (
	"testing"

	"longtake/internal/config"
	"longtake/internal/journal"
)

// MustOpenStore opens a journal.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
