package db

import (
	"testing"

	"github.com/adamavenir/imsgexport/internal/db/dbtest"
)

func openFixture(t *testing.T, store *dbtest.Store) *SQLiteSource {
	t.Helper()
	src, err := OpenSource(store.Path)
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	t.Cleanup(func() {
		_ = src.Close()
	})
	return src
}
