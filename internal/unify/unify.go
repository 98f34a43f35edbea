// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package unify computes most general unifiers of logic terms.
package unify

import (
	"github.com/pdiddy/fol-reasoner/internal/term"
)

// Unify returns the most general substitution that extends s and makes a and
// b identical. The second result is false when no such substitution exists;
// s itself is never modified, so on failure the caller still holds the
// substitution it passed in.
//
// Variables are bound only after an occurs check, so the result never
// contains a cyclic binding.
func Unify(a, b term.Term, s term.Substitution) (term.Substitution, bool) {
	u := unifier{base: s}
	if !u.unify(a, b) {
		return s, false
	}
	return s.Merge(u.added), true
}

// UnifyArgs unifies two argument lists pairwise, left to right.
func UnifyArgs(as, bs []term.Term, s term.Substitution) (term.Substitution, bool) {
	if len(as) != len(bs) {
		return s, false
	}
	u := unifier{base: s}
	for i := range as {
		if !u.unify(as[i], bs[i]) {
			return s, false
		}
	}
	return s.Merge(u.added), true
}

// Occurs reports whether v appears in t once t is dereferenced under s.
func Occurs(v term.Var, t term.Term, s term.Substitution) bool {
	u := unifier{base: s}
	return u.occurs(v, t)
}

// unifier overlays the bindings made during one call on top of the caller's
// substitution, so a successful call copies the base map only once.
type unifier struct {
	base  term.Substitution
	added map[term.Var]term.Term
}

func (u *unifier) lookup(v term.Var) (term.Term, bool) {
	if t, ok := u.added[v]; ok {
		return t, true
	}
	return u.base.Lookup(v)
}

func (u *unifier) walk(t term.Term) term.Term {
	for {
		v, ok := t.(term.Var)
		if !ok {
			return t
		}
		next, ok := u.lookup(v)
		if !ok {
			return t
		}
		t = next
	}
}

func (u *unifier) bind(v term.Var, t term.Term) {
	if u.added == nil {
		u.added = make(map[term.Var]term.Term)
	}
	u.added[v] = t
}

func (u *unifier) unify(a, b term.Term) bool {
	a = u.walk(a)
	b = u.walk(b)

	if va, ok := a.(term.Var); ok {
		if vb, ok := b.(term.Var); ok && va == vb {
			return true
		}
		return u.bindVar(va, b)
	}
	if vb, ok := b.(term.Var); ok {
		return u.bindVar(vb, a)
	}

	switch x := a.(type) {
	case term.Constant:
		y, ok := b.(term.Constant)
		return ok && x == y
	case term.Compound:
		y, ok := b.(term.Compound)
		if !ok || x.Functor != y.Functor || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !u.unify(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func (u *unifier) bindVar(v term.Var, t term.Term) bool {
	if u.occurs(v, t) {
		return false
	}
	u.bind(v, t)
	return true
}

func (u *unifier) occurs(v term.Var, t term.Term) bool {
	t = u.walk(t)
	switch x := t.(type) {
	case term.Var:
		return x == v
	case term.Compound:
		for _, a := range x.Args {
			if u.occurs(v, a) {
				return true
			}
		}
	}
	return false
}
