// Package testing provides testing utilities and helpers for the turnips project.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/aristath/turnips/internal/database"
)

// NewTestDB creates a migrated file-backed database in a per-test temporary
// directory. The connection is closed when the test ends.
//
// Supported schema names:
//   - "records" - applies records_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}
	return db
}

// NewTestDBWithSchema creates an empty test database and executes schema on it.
func NewTestDBWithSchema(t *testing.T, name string, schema string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileCache,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if schema != "" {
		if _, err := db.Conn().Exec(schema); err != nil {
			t.Fatalf("Failed to execute custom schema for test database %s: %v", name, err)
		}
	}
	return db
}
