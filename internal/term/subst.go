// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package term

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// Substitution maps variables to terms. The zero value is the empty
// substitution. A Substitution is never modified in place: Bind and Merge
// return new values, so an older substitution stays valid for backtracking.
//
// Bindings may be chained (X -> Y, Y -> a); Walk and Apply follow chains.
type Substitution struct {
	m map[Var]Term
}

// Lookup returns the term v is directly bound to.
func (s Substitution) Lookup(v Var) (Term, bool) {
	t, ok := s.m[v]
	return t, ok
}

// Len returns the number of bindings.
func (s Substitution) Len() int {
	return len(s.m)
}

// Bind returns s extended with v -> t. It does not check for cycles; callers
// that need that guarantee go through unification.
func (s Substitution) Bind(v Var, t Term) Substitution {
	m := make(map[Var]Term, len(s.m)+1)
	maps.Copy(m, s.m)
	m[v] = t
	return Substitution{m: m}
}

// Merge returns s extended with every binding in extra. Bindings in extra
// win over bindings in s for the same variable.
func (s Substitution) Merge(extra map[Var]Term) Substitution {
	if len(extra) == 0 {
		return s
	}
	m := make(map[Var]Term, len(s.m)+len(extra))
	maps.Copy(m, s.m)
	maps.Copy(m, extra)
	return Substitution{m: m}
}

// Vars returns the bound variables ordered by name, then generation.
func (s Substitution) Vars() []Var {
	vs := slices.Collect(maps.Keys(s.m))
	slices.SortFunc(vs, func(a, b Var) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Gen, b.Gen)
	})
	return vs
}

// String renders the bindings as {X = a, Y = f(b)} in Vars order.
func (s Substitution) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range s.Vars() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
		b.WriteString(" = ")
		b.WriteString(s.m[v].String())
	}
	b.WriteByte('}')
	return b.String()
}

// Walk dereferences t: while t is a bound variable it is replaced by its
// binding. The result is a non-variable term or an unbound variable.
// Arguments of compound terms are left untouched.
func Walk(t Term, s Substitution) Term {
	for {
		v, ok := t.(Var)
		if !ok {
			return t
		}
		next, ok := s.m[v]
		if !ok {
			return t
		}
		t = next
	}
}

// Apply replaces every bound variable in t by its value, following chains
// transitively. Unbound variables are kept.
func Apply(t Term, s Substitution) Term {
	if len(s.m) == 0 {
		return t
	}
	t = Walk(t, s)
	c, ok := t.(Compound)
	if !ok || len(c.Args) == 0 {
		return t
	}
	args := make([]Term, len(c.Args))
	for i, a := range c.Args {
		args[i] = Apply(a, s)
	}
	return Compound{Functor: c.Functor, Args: args}
}

// Compose returns the substitution equivalent to applying s1 and then s2:
// the range of s1 is resolved through s1 and s2, and bindings of s2 for
// variables s1 leaves unbound are added. The law
//
//	Apply(Apply(t, s1), s2) == Apply(t, Compose(s1, s2))
//
// holds whenever the range of s2 does not mention variables bound by s1,
// which is the case for substitutions produced by successive unifications.
// Bindings that would map a variable to itself are dropped.
func Compose(s1, s2 Substitution) Substitution {
	m := make(map[Var]Term, len(s1.m)+len(s2.m))
	for v, t := range s1.m {
		if u := Apply(Apply(t, s1), s2); u != Term(v) {
			m[v] = u
		}
	}
	for v, t := range s2.m {
		if _, ok := s1.m[v]; !ok && t != Term(v) {
			m[v] = t
		}
	}
	return Substitution{m: m}
}
