// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/fol-reasoner/internal/kb"
	"github.com/pdiddy/fol-reasoner/internal/kbfile"
)

// Info describes one stored knowledge base.
type Info struct {
	Name    string `json:"name" yaml:"name"`
	Source  string `json:"source" yaml:"source"`
	ModTime string `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`
	Clauses int    `json:"clauses" yaml:"clauses"`
}

// List returns every stored knowledge base ordered by name.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, source, mod_time, clause_count FROM knowledge_bases ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge bases: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var (
			info    Info
			modTime sql.NullString
		)
		if err := rows.Scan(&info.Name, &info.Source, &modTime, &info.Clauses); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		info.ModTime = modTime.String
		out = append(out, info)
	}
	return out, rows.Err()
}

// Info returns the record for one knowledge base.
func (s *Store) Info(ctx context.Context, name string) (Info, error) {
	var (
		info    = Info{Name: name}
		modTime sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT source, mod_time, clause_count FROM knowledge_bases WHERE name = ?`, name,
	).Scan(&info.Source, &modTime, &info.Clauses)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Info{}, fmt.Errorf("looking up knowledge base: %w", err)
	}
	info.ModTime = modTime.String
	return info, nil
}

// Clauses returns the clauses of name in their stored order.
func (s *Store) Clauses(ctx context.Context, name string) ([]kb.Clause, error) {
	if _, err := s.Info(ctx, name); err != nil {
		return nil, err
	}
	return s.Find(ctx, FindOptions{KB: name, Arity: AnyArity})
}

// KnowledgeBase returns the built knowledge base name. Built knowledge bases
// are cached until the stored clauses change.
func (s *Store) KnowledgeBase(ctx context.Context, name string) (*kb.KnowledgeBase, error) {
	if k, ok := s.cache.Get(name); ok {
		return k, nil
	}
	clauses, err := s.Clauses(ctx, name)
	if err != nil {
		return nil, err
	}
	k, err := kb.New(clauses...)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}
	s.cache.Add(name, k)
	return k, nil
}

// AnyArity matches clauses of every arity in FindOptions.
const AnyArity = -1

// FindOptions selects stored clauses.
type FindOptions struct {
	// KB restricts results to one knowledge base. Empty searches all.
	KB string

	// Functor restricts results to clauses whose head has this name.
	Functor string

	// Arity restricts results to heads of this arity. AnyArity matches all.
	Arity int

	// Limit caps the result count. Zero means no limit.
	Limit int
}

// Find returns the stored clauses matching opts, ordered by knowledge base
// and position.
func (s *Store) Find(ctx context.Context, opts FindOptions) ([]kb.Clause, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT c.kb, c.line, c.node_json, k.source
		FROM clauses c
		JOIN knowledge_bases k ON k.name = c.kb
		WHERE 1=1`)

	if opts.KB != "" {
		qb.WriteString(` AND c.kb = ?`)
		args = append(args, opts.KB)
	}
	if opts.Functor != "" {
		qb.WriteString(` AND c.functor = ?`)
		args = append(args, opts.Functor)
	}
	if opts.Arity >= 0 {
		qb.WriteString(` AND c.arity = ?`)
		args = append(args, opts.Arity)
	}
	qb.WriteString(` ORDER BY c.kb, c.position`)
	if opts.Limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying clauses: %w", err)
	}
	defer rows.Close()

	var out []kb.Clause
	for rows.Next() {
		var (
			name, nodeJSON, src string
			line                sql.NullInt64
		)
		if err := rows.Scan(&name, &line, &nodeJSON, &src); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		var node kbfile.ClauseNode
		if err := json.Unmarshal([]byte(nodeJSON), &node); err != nil {
			return nil, fmt.Errorf("decoding clause of %s: %w", name, err)
		}
		decoded, err := kbfile.Document{Clauses: []kbfile.ClauseNode{node}}.Clauses(src)
		if err != nil {
			return nil, fmt.Errorf("decoding clause of %s: %w", name, err)
		}
		c := decoded[0]
		c.Source.Line = int(line.Int64)
		out = append(out, c)
	}
	return out, rows.Err()
}
