// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package unify

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fol-reasoner/internal/term"
)

var termCmp = cmp.Comparer(func(a, b term.Term) bool { return term.Equal(a, b) })

var (
	x = term.NewVar("X")
	y = term.NewVar("Y")
	z = term.NewVar("Z")
	a = term.Atom("a")
	b = term.Atom("b")
)

func f(args ...term.Term) term.Compound { return term.Comp("f", args...) }
func g(args ...term.Term) term.Compound { return term.Comp("g", args...) }

func TestUnify(t *testing.T) {
	tests := []struct {
		name string
		a, b term.Term
		ok   bool
	}{
		{"equal constants", a, a, true},
		{"different constants", a, b, false},
		{"var and constant", x, a, true},
		{"constant and var", a, x, true},
		{"var and itself", x, x, true},
		{"two vars", x, y, true},
		{"compound args", f(x, b), f(a, y), true},
		{"functor mismatch", f(x), g(x), false},
		{"arity mismatch", f(x), f(x, y), false},
		{"constant and compound", a, term.Comp("a"), false},
		{"zero arity", term.Comp("raining"), term.Comp("raining"), true},
		{"shared var consistent", f(x, x), f(a, a), true},
		{"shared var conflict", f(x, x), f(a, b), false},
		{"nested", f(g(x), y), f(g(a), g(b)), true},
		{"chain through var", f(x, y, x), f(y, a, a), true},
		{"chain conflict", f(x, y, x), f(y, a, b), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Unify(tt.a, tt.b, term.Substitution{})
			require.Equal(t, tt.ok, ok)
			if ok {
				assertUnifies(t, tt.a, tt.b, s)
			} else {
				assert.Equal(t, 0, s.Len(), "failed unification must return the input substitution")
			}
		})
	}
}

func assertUnifies(t *testing.T, a, b term.Term, s term.Substitution) {
	t.Helper()
	if diff := cmp.Diff(term.Apply(a, s), term.Apply(b, s), termCmp); diff != "" {
		t.Errorf("Apply(%s) != Apply(%s) under %s:\n%s", a, b, s, diff)
	}
}

func TestUnify_Reflexive(t *testing.T) {
	for _, tt := range []term.Term{a, x, f(x, g(y, a)), term.Comp("raining")} {
		s, ok := Unify(tt, tt, term.Substitution{})
		require.True(t, ok, "%s", tt)
		assert.Equal(t, 0, s.Len(), "%s unified with itself bound variables", tt)
	}
}

func TestUnify_OccursCheck(t *testing.T) {
	_, ok := Unify(x, f(x), term.Substitution{})
	assert.False(t, ok)

	_, ok = Unify(f(x, y), f(y, g(x)), term.Substitution{})
	assert.False(t, ok)

	s := term.Substitution{}.Bind(y, f(x))
	_, ok = Unify(x, y, s)
	assert.False(t, ok)
}

func TestUnify_ExtendsInput(t *testing.T) {
	s0 := term.Substitution{}.Bind(z, b)
	s, ok := Unify(f(x, z), f(a, y), s0)
	require.True(t, ok)

	assert.Equal(t, 1, s0.Len(), "input substitution must not change")
	assert.True(t, term.Equal(a, term.Apply(x, s)))
	assert.True(t, term.Equal(b, term.Apply(y, s)))
	assert.True(t, term.Equal(b, term.Apply(z, s)))
}

func TestUnify_FailureKeepsInput(t *testing.T) {
	s0 := term.Substitution{}.Bind(x, a)
	s, ok := Unify(f(x, y), f(a, b, z), s0)
	require.False(t, ok)
	assert.Equal(t, s0, s)

	s, ok = Unify(f(y, x), f(a, b), s0)
	require.False(t, ok)
	_, bound := s.Lookup(y)
	assert.False(t, bound, "partial bindings leaked from a failed unification")
}

func TestUnifyArgs(t *testing.T) {
	s, ok := UnifyArgs([]term.Term{x, b}, []term.Term{a, y}, term.Substitution{})
	require.True(t, ok)
	assert.True(t, term.Equal(a, term.Apply(x, s)))
	assert.True(t, term.Equal(b, term.Apply(y, s)))

	_, ok = UnifyArgs([]term.Term{x}, []term.Term{a, b}, term.Substitution{})
	assert.False(t, ok)

	_, ok = UnifyArgs(nil, nil, term.Substitution{})
	assert.True(t, ok)
}

func TestOccurs(t *testing.T) {
	assert.True(t, Occurs(x, f(g(x)), term.Substitution{}))
	assert.False(t, Occurs(x, f(g(y)), term.Substitution{}))
	assert.True(t, Occurs(x, f(y), term.Substitution{}.Bind(y, g(x))))
}

// TestUnify_SoundGenerated checks soundness over a generated corpus: every
// successful unification makes both sides identical, and the result never
// binds a variable to a term containing it.
func TestUnify_SoundGenerated(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	vars := []term.Term{x, y, z}
	consts := []term.Term{a, b}

	var gen func(depth int) term.Term
	gen = func(depth int) term.Term {
		switch n := rng.IntN(10); {
		case n < 3:
			return vars[rng.IntN(len(vars))]
		case n < 5 || depth == 0:
			return consts[rng.IntN(len(consts))]
		default:
			args := make([]term.Term, rng.IntN(3))
			for i := range args {
				args[i] = gen(depth - 1)
			}
			return term.Comp([]string{"f", "g"}[rng.IntN(2)], args...)
		}
	}

	successes := 0
	for i := range 2000 {
		l, r := gen(3), gen(3)
		s, ok := Unify(l, r, term.Substitution{})
		if !ok {
			continue
		}
		successes++
		t.Run(fmt.Sprintf("case%d", i), func(t *testing.T) {
			assertUnifies(t, l, r, s)
			for _, v := range s.Vars() {
				bound, _ := s.Lookup(v)
				assert.False(t, Occurs(v, bound, s), "cyclic binding %s = %s", v, bound)
			}
		})
	}
	assert.Positive(t, successes)
}
