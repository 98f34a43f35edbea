// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists knowledge bases in SQLite so that large rule sets
// are parsed once and loaded by name afterwards.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/fol-reasoner/internal/kb"
	"github.com/pdiddy/fol-reasoner/internal/kbfile"
	"github.com/pdiddy/fol-reasoner/internal/parse"
	"github.com/pdiddy/fol-reasoner/pkg/types"
)

const (
	dbFile           = "fol-reasoner.db"
	defaultCacheSize = 16
)

// ErrNotFound is returned for knowledge bases the store does not hold.
var ErrNotFound = errors.New("knowledge base not found")

// Store manages the clause database.
type Store struct {
	db    *sql.DB
	dir   string
	cache *lru.Cache[string, *kb.KnowledgeBase]
}

// NewStore opens or creates the database at cfg.Dir/fol-reasoner.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, *kb.KnowledgeBase](size)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir, cache: cache}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS knowledge_bases (
			name TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			mod_time TEXT,
			clause_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS clauses (
			kb TEXT NOT NULL REFERENCES knowledge_bases(name) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			functor TEXT NOT NULL,
			arity INTEGER NOT NULL,
			line INTEGER,
			text TEXT NOT NULL,
			node_json TEXT NOT NULL,
			PRIMARY KEY (kb, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clauses_signature ON clauses(kb, functor, arity)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one Ingest run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest imports every knowledge base file in dir. Each file becomes a
// knowledge base named after the file without its extension. Files whose
// modification time matches the stored one are skipped; a file that fails
// to load or validate is reported and the run continues.
func (s *Store) Ingest(ctx context.Context, dir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var summary IngestSummary
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !slices.Contains(kbfile.Extensions, ext) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		path := filepath.Join(dir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var stored string
		err = s.db.QueryRowContext(ctx,
			`SELECT mod_time FROM knowledge_bases WHERE name = ?`, name,
		).Scan(&stored)
		if err == nil && stored == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		clauses, err := loadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if err := s.put(ctx, name, path, modTime, clauses); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d clauses)\n", name, len(clauses))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d clauses)\n", name, len(clauses))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

// loadFile reads and validates one knowledge base file.
func loadFile(path string) ([]kb.Clause, error) {
	f, err := kbfile.FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	clauses, err := kbfile.Decode(path, f, data)
	if err != nil {
		return nil, err
	}
	if _, err := kb.New(clauses...); err != nil {
		return nil, err
	}
	return clauses, nil
}

// Put stores clauses as the knowledge base name, replacing any previous
// contents. source describes where the clauses came from.
func (s *Store) Put(ctx context.Context, name, source string, clauses []kb.Clause) error {
	if name == "" {
		return errors.New("knowledge base name is empty")
	}
	if _, err := kb.New(clauses...); err != nil {
		return err
	}
	return s.put(ctx, name, source, "", clauses)
}

func (s *Store) put(ctx context.Context, name, source, modTime string, clauses []kb.Clause) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clauses WHERE kb = ?`, name); err != nil {
		return fmt.Errorf("deleting old clauses: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO knowledge_bases (name, source, mod_time, clause_count) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			source=excluded.source, mod_time=excluded.mod_time, clause_count=excluded.clause_count`,
		name, source, modTime, len(clauses),
	)
	if err != nil {
		return fmt.Errorf("upserting knowledge base: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO clauses (kb, position, functor, arity, line, text, node_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	doc := kbfile.NewDocument(name, clauses)
	for i, c := range clauses {
		nodeJSON, err := json.Marshal(doc.Clauses[i])
		if err != nil {
			return fmt.Errorf("encoding clause %d: %w", i+1, err)
		}
		sig := c.Signature()
		_, err = stmt.ExecContext(ctx,
			name, i, sig.Name, sig.Arity, c.Source.Line, parse.Format(c), string(nodeJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting clause %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.cache.Remove(name)
	return nil
}

// Delete removes the knowledge base name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM knowledge_bases WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting knowledge base: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.cache.Remove(name)
	return nil
}
