// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve implements SLD resolution: depth-first backward chaining
// over a knowledge base, producing one substitution per proof.
package resolve

import (
	"context"
	"errors"
	"iter"

	"github.com/pdiddy/fol-reasoner/internal/builtin"
	"github.com/pdiddy/fol-reasoner/internal/kb"
	"github.com/pdiddy/fol-reasoner/internal/term"
	"github.com/pdiddy/fol-reasoner/internal/unify"
)

// DefaultMaxDepth is the depth budget used when Solver.MaxDepth is not
// positive.
const DefaultMaxDepth = 100

// ctxCheckInterval is how many resolution steps run between context checks.
const ctxCheckInterval = 64

var (
	// ErrDepthExceeded reports that at least one branch of the search was
	// abandoned because a goal reached the depth budget. Answers found on
	// other branches are still valid.
	ErrDepthExceeded = errors.New("depth limit exceeded")

	// ErrStepLimit reports that a run stopped after Solver.StepLimit
	// resolution steps.
	ErrStepLimit = errors.New("step limit exceeded")
)

// Solver proves goal lists against a knowledge base. A Solver holds no
// per-query state and may be shared by concurrent runs.
type Solver struct {
	// KB supplies the clauses. A nil KB has no clauses.
	KB *kb.KnowledgeBase

	// Builtins are consulted before KB for goals with a registered
	// signature. Nil means no builtins.
	Builtins *builtin.Registry

	// MaxDepth bounds the depth of the proof tree. A goal introduced by a
	// clause applied at depth d has depth d+1; goals at depth MaxDepth are
	// cut off. Zero or negative selects DefaultMaxDepth.
	MaxDepth int

	// StepLimit bounds the number of goals selected in one run. Zero means
	// unlimited.
	StepLimit int

	// Tracer, when set, receives an event at every port of the search.
	Tracer Tracer
}

// Solve returns the lazy sequence of substitutions, each extending s, under
// which every goal in goals is provable. Answers follow clause order, depth
// first, left to right. Ranging over the sequence again restarts the search.
func (sv *Solver) Solve(goals []term.Term, s term.Substitution) iter.Seq[term.Substitution] {
	return sv.Start(context.Background(), goals, s).All()
}

// Start prepares a run of goals under s. Nothing is searched until All is
// ranged over. The run stops early when ctx is done.
func (sv *Solver) Start(ctx context.Context, goals []term.Term, s term.Substitution) *Run {
	return &Run{
		solver: sv,
		ctx:    ctx,
		goals:  goals,
		init:   s,
	}
}

func (sv *Solver) maxDepth() int {
	if sv.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return sv.MaxDepth
}

// Run is one search over a fixed goal list. Its counters describe the most
// recent traversal of All. A Run is not safe for concurrent use.
type Run struct {
	solver *Solver
	ctx    context.Context
	goals  []term.Term
	init   term.Substitution

	steps  int
	cutoff bool
	err    error
}

// All returns the answers of the run. Each traversal starts from scratch and
// resets Steps, Cutoff, and Err.
func (r *Run) All() iter.Seq[term.Substitution] {
	return func(yield func(term.Substitution) bool) {
		r.steps = 0
		r.cutoff = false
		r.err = nil
		r.solve(push(r.goals, 0, nil), r.init, yield)
	}
}

// Steps returns the number of goals selected so far.
func (r *Run) Steps() int {
	return r.steps
}

// Cutoff reports whether a branch was abandoned at the depth budget.
func (r *Run) Cutoff() bool {
	return r.cutoff
}

// Err returns the reason the last traversal was incomplete: a context error
// or ErrStepLimit if the run was stopped, otherwise ErrDepthExceeded if a
// branch was cut off. It is nil when the search space was explored in full
// or the consumer stopped early without hitting either limit.
func (r *Run) Err() error {
	if r.err != nil {
		return r.err
	}
	if r.cutoff {
		return ErrDepthExceeded
	}
	return nil
}

// goalList is a persistent stack of pending goals. Branches share tails.
type goalList struct {
	goal  term.Term
	depth int
	next  *goalList
}

// push returns goals ++ rest, every new goal at depth.
func push(goals []term.Term, depth int, rest *goalList) *goalList {
	for i := len(goals) - 1; i >= 0; i-- {
		rest = &goalList{goal: goals[i], depth: depth, next: rest}
	}
	return rest
}

// solve proves gl under s, yielding each answer. It returns false when the
// search must stop: the consumer is done, or a limit was hit.
func (r *Run) solve(gl *goalList, s term.Substitution, yield func(term.Substitution) bool) bool {
	if gl == nil {
		return yield(s)
	}
	if !r.step() {
		return false
	}

	goal := term.Walk(gl.goal, s)
	if gl.depth >= r.solver.maxDepth() {
		r.cutoff = true
		r.trace(Cutoff, goal, s, gl.depth, nil)
		return true
	}

	sig, ok := kb.SignatureOf(goal)
	if !ok {
		// An unbound variable is not a callable goal.
		r.trace(Fail, goal, s, gl.depth, nil)
		return true
	}
	r.trace(Call, goal, s, gl.depth, nil)
	args := argsOf(goal)

	if f, ok := r.solver.Builtins.Lookup(sig); ok {
		next, ok := f(args, s)
		if !ok {
			r.trace(Fail, goal, s, gl.depth, nil)
			return true
		}
		return r.solve(gl.next, next, yield)
	}

	for _, c := range r.solver.KB.LookupSig(sig) {
		head, body := c.Rename()
		next, ok := unify.UnifyArgs(args, argsOf(head), s)
		if !ok {
			continue
		}
		r.trace(Match, goal, next, gl.depth, &c)
		if !r.solve(push(body, gl.depth+1, gl.next), next, yield) {
			return false
		}
	}
	r.trace(Fail, goal, s, gl.depth, nil)
	return true
}

// step counts one goal selection and enforces the step limit and context.
func (r *Run) step() bool {
	if limit := r.solver.StepLimit; limit > 0 && r.steps >= limit {
		r.err = ErrStepLimit
		return false
	}
	r.steps++
	if r.ctx != nil && r.steps%ctxCheckInterval == 1 {
		if err := r.ctx.Err(); err != nil {
			r.err = err
			return false
		}
	}
	return true
}

func (r *Run) trace(kind EventKind, goal term.Term, s term.Substitution, depth int, c *kb.Clause) {
	if r.solver.Tracer == nil {
		return
	}
	r.solver.Tracer.Trace(Event{
		Kind:   kind,
		Goal:   term.Apply(goal, s),
		Depth:  depth,
		Clause: c,
	})
}

func argsOf(t term.Term) []term.Term {
	if c, ok := t.(term.Compound); ok {
		return c.Args
	}
	return nil
}
