// Package loader reads a local directory of .sql files into one
// concatenated schema source, in the fixed order the Object Model's
// load-time declaration-order invariant depends on (spec.md §3, §4.2).
// Takes an afero.Fs rather than touching os directly, following the same
// pattern denisvmedia/inventario's fileblob package uses for its storage
// layer, so tests can swap in an in-memory filesystem.
package loader

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/pgterra/pgterra/internal/ir"
)

// LoadDir walks dir on fs for *.sql files, in lexical path order, and
// loads their concatenation through ir.Load. Lexical order is the
// declaration order contract: files are expected to be prefixed
// 01_, 02_, ... the way a `pgterra init` scaffold in the normal layout
// names them (e.g. public/01_types.sql, public/04_tables.sql).
func LoadDir(fs afero.Fs, dir string) (*ir.Schema, error) {
	sql, err := ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}
	return ir.Load(sql)
}

// ReadDir concatenates every *.sql file under dir in lexical order and
// returns the combined source text.
func ReadDir(fs afero.Fs, dir string) (string, error) {
	paths, err := collectSQLFiles(fs, dir)
	if err != nil {
		return "", err
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		content, err := afero.ReadFile(fs, p)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", p, err)
		}
		b.Write(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func collectSQLFiles(fs afero.Fs, dir string) ([]string, error) {
	var files []string
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			nested, err := collectSQLFiles(fs, full)
			if err != nil {
				return nil, err
			}
			files = append(files, nested...)
			continue
		}
		if strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, full)
		}
	}
	return files, nil
}
