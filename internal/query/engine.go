// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query is the entry point for asking questions of a knowledge base.
// An Engine binds a query term to the resolver and turns each proof into an
// Answer that mentions only the variables the caller wrote.
package query

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/fol-reasoner/internal/builtin"
	"github.com/pdiddy/fol-reasoner/internal/kb"
	"github.com/pdiddy/fol-reasoner/internal/metrics"
	"github.com/pdiddy/fol-reasoner/internal/resolve"
	"github.com/pdiddy/fol-reasoner/internal/term"
)

// ErrInvalidQuery is returned when the query term is not a predicate
// application. A constant is accepted as a predicate with no arguments.
var ErrInvalidQuery = errors.New("invalid query")

// ErrDepthExceeded is reported by Answers.Err when the search gave up on at
// least one branch at the depth budget.
var ErrDepthExceeded = resolve.ErrDepthExceeded

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth sets the proof depth budget. Values <= 0 select
// resolve.DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(e *Engine) { e.solver.MaxDepth = n }
}

// WithStepLimit stops each run after n goal selections. Zero means no limit.
func WithStepLimit(n int) Option {
	return func(e *Engine) { e.solver.StepLimit = n }
}

// WithBuiltins installs builtin predicates.
func WithBuiltins(r *builtin.Registry) Option {
	return func(e *Engine) { e.solver.Builtins = r }
}

// WithTracer attaches a search tracer to every run.
func WithTracer(t resolve.Tracer) Option {
	return func(e *Engine) { e.solver.Tracer = t }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records query activity in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithDistinct drops answers whose bindings repeat an earlier answer of the
// same traversal. Off by default: every proof yields an answer.
func WithDistinct(on bool) Option {
	return func(e *Engine) { e.distinct = on }
}

// Engine answers queries against one knowledge base. It is safe for
// concurrent use; every query owns its own search state.
type Engine struct {
	solver   resolve.Solver
	distinct bool
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewEngine returns an engine over k.
func NewEngine(k *kb.KnowledgeBase, opts ...Option) *Engine {
	e := &Engine{
		solver:  resolve.Solver{KB: k},
		logger:  zap.NewNop(),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// KnowledgeBase returns the knowledge base the engine queries.
func (e *Engine) KnowledgeBase() *kb.KnowledgeBase {
	return e.solver.KB
}

// Query is QueryContext with a background context.
func (e *Engine) Query(q term.Term) (*Answers, error) {
	return e.QueryContext(context.Background(), q)
}

// QueryContext prepares the answers to q. The search runs lazily as the
// answers are consumed and stops early once ctx is done.
func (e *Engine) QueryContext(ctx context.Context, q term.Term) (*Answers, error) {
	if sig, ok := kb.SignatureOf(q); !ok || sig.Name == "" {
		return nil, fmt.Errorf("%w: %v is not a predicate application", ErrInvalidQuery, q)
	}

	vars := term.Vars(q)
	m := make(map[term.Var]term.Var, len(vars))
	goal := term.Rename(q, m)
	renamed := make([]term.Var, len(vars))
	for i, v := range vars {
		renamed[i] = m[v]
	}

	id := e.newID()
	e.metrics.QueryStarted()
	e.logger.Debug("query started",
		zap.Stringer("query_id", id),
		zap.Stringer("query", q),
	)

	return &Answers{
		engine:  e,
		id:      id,
		query:   q,
		vars:    vars,
		renamed: renamed,
		run:     e.solver.Start(ctx, []term.Term{goal}, term.Substitution{}),
	}, nil
}

func (e *Engine) newID() ulid.ULID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Now(), e.entropy)
}
