// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package builtin provides predicates that are decided by Go code instead of
// knowledge base clauses.
package builtin

import (
	"github.com/pdiddy/fol-reasoner/internal/kb"
	"github.com/pdiddy/fol-reasoner/internal/term"
)

// Func decides a builtin goal. It receives the goal arguments and the
// current substitution and returns the substitution to continue with, or
// false when the goal fails. A builtin succeeds at most once.
type Func func(args []term.Term, s term.Substitution) (term.Substitution, bool)

// Registry maps signatures to builtins. Register everything before handing
// the registry to a solver; lookups are then safe from any goroutine.
type Registry struct {
	funcs map[kb.Signature]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[kb.Signature]Func)}
}

// Register installs f for name/arity, replacing any earlier entry.
func (r *Registry) Register(name string, arity int, f Func) {
	r.funcs[kb.Signature{Name: name, Arity: arity}] = f
}

// Lookup returns the builtin for sig. A nil registry has no builtins.
func (r *Registry) Lookup(sig kb.Signature) (Func, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.funcs[sig]
	return f, ok
}

// Signatures returns the registered signatures.
func (r *Registry) Signatures() []kb.Signature {
	if r == nil {
		return nil
	}
	sigs := make([]kb.Signature, 0, len(r.funcs))
	for sig := range r.funcs {
		sigs = append(sigs, sig)
	}
	return sigs
}

// Default returns a registry with the integer comparisons GreaterThan/2 and
// LessThan/2.
func Default() *Registry {
	r := NewRegistry()
	r.Register("GreaterThan", 2, compare(func(a, b int64) bool { return a > b }))
	r.Register("LessThan", 2, compare(func(a, b int64) bool { return a < b }))
	return r
}

// compare builds a test over two integer constants. Unbound or non-numeric
// arguments make the goal fail.
func compare(test func(a, b int64) bool) Func {
	return func(args []term.Term, s term.Substitution) (term.Substitution, bool) {
		a, ok := intArg(args[0], s)
		if !ok {
			return s, false
		}
		b, ok := intArg(args[1], s)
		if !ok {
			return s, false
		}
		return s, test(a, b)
	}
}

func intArg(t term.Term, s term.Substitution) (int64, bool) {
	c, ok := term.Walk(t, s).(term.Constant)
	if !ok {
		return 0, false
	}
	return c.Int64()
}
