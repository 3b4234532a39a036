package database

import (
	"context"
	"fmt"
	"io/fs"
)

// Migrate applies the schema migration files found in fsys in lexical order.
// Every statement uses IF NOT EXISTS, so applying the full set on each boot
// is safe and no version bookkeeping table is needed.
func (p *Pool) Migrate(ctx context.Context, fsys fs.FS) error {
	sources, err := MigrationSources(fsys)
	if err != nil {
		return err
	}
	for _, src := range sources {
		if _, err := p.db.ExecContext(ctx, src.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", src.Name, err)
		}
	}
	return nil
}

// MigrationSource is one schema migration file, read into memory.
type MigrationSource struct {
	Name string
	SQL  string
}

// MigrationSources reads the *.sql files from fsys in lexical order.
func MigrationSources(fsys fs.FS) ([]MigrationSource, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sources := make([]MigrationSource, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		sources = append(sources, MigrationSource{Name: name, SQL: string(raw)})
	}
	return sources, nil
}
