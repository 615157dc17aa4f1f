// Package test provides a store wired to a throwaway SQLite database for
// driver-backed tests.
package test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/omar251/CinemaTec-sub001/internal/profile"
	"github.com/omar251/CinemaTec-sub001/store"
	"github.com/omar251/CinemaTec-sub001/store/db"
)

// NewTestingStore creates a store backed by a fresh SQLite database under the
// test's temp dir, with the schema applied.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   dir,
		DSN:    fmt.Sprintf("file:%s", filepath.Join(dir, "cinematec_test.db")),
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	t.Cleanup(func() {
		if err := ts.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return ts
}
