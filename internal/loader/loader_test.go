package loader

import (
	"testing"

	"github.com/spf13/afero"
)

func TestReadDir_ConcatenatesInLexicalOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/schema/002_tables.sql", []byte("CREATE TABLE b ();"), 0o644)
	afero.WriteFile(fs, "/schema/001_types.sql", []byte("CREATE TYPE a AS ENUM ('x');"), 0o644)

	sql, err := ReadDir(fs, "/schema")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}

	typeIdx := indexOf(sql, "CREATE TYPE")
	tableIdx := indexOf(sql, "CREATE TABLE")
	if typeIdx == -1 || tableIdx == -1 {
		t.Fatalf("expected both statements present in %q", sql)
	}
	if typeIdx > tableIdx {
		t.Errorf("expected 001_types.sql content before 002_tables.sql content, got %q", sql)
	}
}

func TestReadDir_RecursesIntoSubdirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/schema/public/001_tables.sql", []byte("CREATE TABLE t ();"), 0o644)

	sql, err := ReadDir(fs, "/schema")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if indexOf(sql, "CREATE TABLE") == -1 {
		t.Errorf("expected nested file content in %q", sql)
	}
}

func TestReadDir_IgnoresNonSQLFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/schema/README.md", []byte("not sql"), 0o644)
	afero.WriteFile(fs, "/schema/001.sql", []byte("CREATE TABLE t ();"), 0o644)

	sql, err := ReadDir(fs, "/schema")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if indexOf(sql, "not sql") != -1 {
		t.Errorf("README.md content leaked into result: %q", sql)
	}
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
