// Package export persists analysis results to external stores.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/olehluchkiv/javadeps/internal/analysis"
	"github.com/olehluchkiv/javadeps/internal/graph"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	root TEXT NOT NULL,
	files INTEGER NOT NULL,
	units INTEGER NOT NULL,
	failures INTEGER NOT NULL,
	edges INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS types (
	run_id TEXT NOT NULL,
	identity TEXT NOT NULL,
	name TEXT NOT NULL,
	package TEXT NOT NULL,
	kind TEXT NOT NULL,
	modifiers TEXT NOT NULL,
	line INTEGER NOT NULL,
	file TEXT NOT NULL,
	enclosing TEXT NOT NULL,
	PRIMARY KEY (run_id, identity),
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS fields (
	run_id TEXT NOT NULL,
	owner TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	modifiers TEXT NOT NULL,
	line INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS methods (
	run_id TEXT NOT NULL,
	owner TEXT NOT NULL,
	name TEXT NOT NULL,
	signature TEXT NOT NULL,
	return_type TEXT NOT NULL,
	modifiers TEXT NOT NULL,
	line INTEGER NOT NULL,
	body_lines INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS edges (
	run_id TEXT NOT NULL,
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	PRIMARY KEY (run_id, source, target),
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(run_id, target);
`

// SQLite writes runs into a SQLite database file. Each run is stored under
// its run id, so one database can hold the history of many runs.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating when needed) the database at path and applies
// the schema.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLite{db: db, logger: logger.With("component", "export.sqlite")}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Export stores res in a single transaction.
func (s *SQLite) Export(ctx context.Context, res *analysis.Result) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, root, files, units, failures, edges, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Root, res.Files, res.Units, len(res.Failures), res.Graph.Len(),
		res.Duration.Milliseconds(), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err = s.insertTypes(ctx, tx, res); err != nil {
		return err
	}
	if err = insertEdges(ctx, tx, res.RunID, res.Graph); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("run exported", "run_id", res.RunID, "types", len(res.Types), "edges", res.Graph.Len())
	return nil
}

func (s *SQLite) insertTypes(ctx context.Context, tx *sql.Tx, res *analysis.Result) error {
	typeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO types (run_id, identity, name, package, kind, modifiers, line, file, enclosing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare types: %w", err)
	}
	defer typeStmt.Close()

	fieldStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fields (run_id, owner, name, type, modifiers, line)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare fields: %w", err)
	}
	defer fieldStmt.Close()

	methodStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO methods (run_id, owner, name, signature, return_type, modifiers, line, body_lines)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare methods: %w", err)
	}
	defer methodStmt.Close()

	for _, d := range res.Types {
		if _, err := typeStmt.ExecContext(ctx, res.RunID, d.Identity, d.Name, d.Package,
			d.Kind.String(), d.Modifiers.String(), d.Line, d.File, d.Enclosing); err != nil {
			return fmt.Errorf("insert type %s: %w", d.Identity, err)
		}
		for _, f := range d.Fields {
			if _, err := fieldStmt.ExecContext(ctx, res.RunID, d.Identity, f.Name,
				f.Type.Text(), f.Modifiers.String(), f.Line); err != nil {
				return fmt.Errorf("insert field %s.%s: %w", d.Identity, f.Name, err)
			}
		}
		for _, m := range d.Methods {
			if _, err := methodStmt.ExecContext(ctx, res.RunID, d.Identity, m.Name, m.Signature(),
				m.Return.Text(), m.Modifiers.String(), m.Line, m.BodyLines); err != nil {
				return fmt.Errorf("insert method %s.%s: %w", d.Identity, m.Name, err)
			}
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, runID string, g *graph.Graph) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (run_id, source, target) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare edges: %w", err)
	}
	defer stmt.Close()

	for _, e := range g.Edges(graph.Sorted) {
		if _, err := stmt.ExecContext(ctx, runID, e.Source, e.Target); err != nil {
			return fmt.Errorf("insert edge %s -> %s: %w", e.Source, e.Target, err)
		}
	}
	return nil
}

// Dependents returns the sources that depend on target in the given run,
// sorted by name.
func (s *SQLite) Dependents(ctx context.Context, runID, target string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source FROM edges WHERE run_id = ? AND target = ? ORDER BY source`, runID, target)
	if err != nil {
		return nil, fmt.Errorf("query dependents: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// Runs lists the stored run ids, oldest first.
func (s *SQLite) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM runs ORDER BY created_at, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
