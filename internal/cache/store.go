package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"importgraph/internal/graph"
	"importgraph/internal/parser"
)

const driverName = "sqlite"

// Store persists a parsed module graph so later report runs can skip the
// parse pass entirely.
type Store struct {
	path string
	db   *sql.DB
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("cache path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("cache path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping cache %q: %w", cleanPath, err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize cache schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save replaces the cached graph with g.
func (s *Store) Save(g *graph.ModuleGraph) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin cache save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"import_records", "module_imports", "modules"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, mod := range g.List() {
		if _, err := tx.Exec(
			`INSERT INTO modules (modname, label, filename) VALUES (?, ?, ?)`,
			mod.Name, mod.Label, mod.Filename,
		); err != nil {
			return fmt.Errorf("save module %s: %w", mod.Name, err)
		}
		for _, target := range mod.SortedImports() {
			if _, err := tx.Exec(
				`INSERT INTO module_imports (modname, target) VALUES (?, ?)`,
				mod.Name, target,
			); err != nil {
				return fmt.Errorf("save edge %s -> %s: %w", mod.Name, target, err)
			}
		}
		if err := saveRecords(tx, mod.Name, mod.ImportedNames, false); err != nil {
			return err
		}
		if err := saveRecords(tx, mod.Name, mod.UnusedNames, true); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache save: %w", err)
	}
	return nil
}

func saveRecords(tx *sql.Tx, modname string, records []parser.ImportRecord, unused bool) error {
	for _, rec := range records {
		if _, err := tx.Exec(
			`INSERT INTO import_records (modname, name, alias, filename, lineno, level, unused)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			modname, rec.Name, rec.Alias, rec.Filename, rec.Line, rec.Level, unused,
		); err != nil {
			return fmt.Errorf("save record %s in %s: %w", rec.Name, modname, err)
		}
	}
	return nil
}

// Load rebuilds the module graph from the cache.
func (s *Store) Load() (*graph.ModuleGraph, error) {
	g := graph.New()

	rows, err := s.db.Query(`SELECT modname, label, filename FROM modules ORDER BY modname`)
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, label, filename string
		if err := rows.Scan(&name, &label, &filename); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		mod := graph.NewModule(name, filename)
		mod.Label = label
		g.Add(mod)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}

	edges, err := s.db.Query(`SELECT modname, target FROM module_imports ORDER BY modname, target`)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	defer edges.Close()
	for edges.Next() {
		var from, to string
		if err := edges.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		if mod, ok := g.Get(from); ok {
			mod.AddImport(to)
		}
	}
	if err := edges.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}

	records, err := s.db.Query(
		`SELECT modname, name, alias, filename, lineno, level, unused
		 FROM import_records ORDER BY modname, lineno, name`)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer records.Close()
	for records.Next() {
		var modname string
		var rec parser.ImportRecord
		var unused bool
		if err := records.Scan(&modname, &rec.Name, &rec.Alias, &rec.Filename, &rec.Line, &rec.Level, &unused); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		mod, ok := g.Get(modname)
		if !ok {
			continue
		}
		if unused {
			mod.UnusedNames = append(mod.UnusedNames, rec)
		} else {
			mod.ImportedNames = append(mod.ImportedNames, rec)
		}
	}
	if err := records.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return g, nil
}
