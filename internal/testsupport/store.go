package testsupport

import (
	"testing"

	"skiprice/internal/config"
	"skiprice/internal/ledger"
)

// MustOpenLedger opens the config's save ledger for tests and registers
// cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
