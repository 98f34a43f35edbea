// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"errors"
	"iter"
	"strconv"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/fol-reasoner/internal/resolve"
	"github.com/pdiddy/fol-reasoner/internal/term"
)

// Answers is the lazy answer sequence of one query. Use All to range over
// it, or Next and Stop to pull answers one at a time. Answers is not safe for
// concurrent use.
type Answers struct {
	engine  *Engine
	id      ulid.ULID
	query   term.Term
	vars    []term.Var
	renamed []term.Var
	run     *resolve.Run

	next func() (Answer, bool)
	stop func()
}

// ID returns the identifier used for this query in logs.
func (a *Answers) ID() string {
	return a.id.String()
}

// Query returns the query term as the caller wrote it.
func (a *Answers) Query() term.Term {
	return a.query
}

// All returns the answers in proof order. Every range over the sequence
// searches again from the start.
func (a *Answers) All() iter.Seq[Answer] {
	return func(yield func(Answer) bool) {
		var seen map[string]bool
		if a.engine.distinct {
			seen = make(map[string]bool)
		}
		n := 0
		for s := range a.run.All() {
			ans := a.project(s)
			if seen != nil {
				key := ans.String()
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			n++
			a.engine.metrics.Answered()
			if !yield(ans) {
				break
			}
		}
		a.finish(n)
	}
}

// Next returns the next answer, starting a traversal on first use. It
// returns false when the answers are exhausted; Err then tells whether the
// search was complete.
func (a *Answers) Next() (Answer, bool) {
	if a.next == nil {
		a.next, a.stop = iter.Pull(a.All())
	}
	return a.next()
}

// Stop abandons the traversal started by Next. The following Next starts
// over. Stop is a no-op when no traversal is in progress.
func (a *Answers) Stop() {
	if a.stop != nil {
		a.stop()
	}
	a.next, a.stop = nil, nil
}

// Err reports why the most recent traversal was incomplete: a context
// error, resolve.ErrStepLimit, or ErrDepthExceeded. It is nil for a query
// with no proof.
func (a *Answers) Err() error {
	return a.run.Err()
}

// Steps returns the goal selections made by the most recent traversal.
func (a *Answers) Steps() int {
	return a.run.Steps()
}

// Collect runs a fresh traversal and returns up to limit answers, or every
// answer when limit <= 0, together with Err.
func (a *Answers) Collect(limit int) ([]Answer, error) {
	var out []Answer
	for ans := range a.All() {
		out = append(out, ans)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, a.Err()
}

func (a *Answers) project(s term.Substitution) Answer {
	ans := Answer{
		Vars:     make([]string, len(a.vars)),
		Bindings: make(map[string]term.Term, len(a.vars)),
	}
	values := make([]term.Term, len(a.vars))
	r := renamer{names: make(map[term.Var]term.Var, len(a.vars))}
	for i, v := range a.vars {
		values[i] = term.Apply(a.renamed[i], s)
		if u, ok := values[i].(term.Var); ok {
			if _, taken := r.names[u]; !taken {
				r.names[u] = v
			}
		}
	}
	for i, v := range a.vars {
		name := v.String()
		ans.Vars[i] = name
		ans.Bindings[name] = r.restore(values[i])
	}
	return ans
}

// renamer names the unbound variables left in an answer so no clause
// variable escapes it. A variable that is the value of a query variable
// takes the name of the first such query variable; any other becomes _G1,
// _G2, ... in order of appearance.
type renamer struct {
	names        map[term.Var]term.Var
	placeholders int
}

func (r *renamer) restore(t term.Term) term.Term {
	switch x := t.(type) {
	case term.Var:
		if v, ok := r.names[x]; ok {
			return v
		}
		r.placeholders++
		v := term.NewVar("_G" + strconv.Itoa(r.placeholders))
		r.names[x] = v
		return v
	case term.Compound:
		if term.IsGround(x) {
			return x
		}
		args := make([]term.Term, len(x.Args))
		for i, arg := range x.Args {
			args[i] = r.restore(arg)
		}
		return term.Compound{Functor: x.Functor, Args: args}
	}
	return t
}

func (a *Answers) finish(answers int) {
	err := a.run.Err()
	a.engine.metrics.RunFinished(a.run.Steps(), a.run.Cutoff(), errors.Is(err, resolve.ErrStepLimit))

	fields := []zap.Field{
		zap.Stringer("query_id", a.id),
		zap.Int("answers", answers),
		zap.Int("steps", a.run.Steps()),
	}
	if err != nil {
		a.engine.logger.Info("query incomplete", append(fields, zap.Error(err))...)
		return
	}
	a.engine.logger.Debug("query finished", fields...)
}
