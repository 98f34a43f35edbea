// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package term

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

var termCmp = cmp.Comparer(func(a, b Term) bool { return Equal(a, b) })

func TestAtom_Interned(t *testing.T) {
	assert.True(t, Atom("kitchen") == Atom("kitchen"))
	assert.False(t, Atom("kitchen") == Atom("bedroom"))
	assert.Equal(t, "kitchen", Atom("kitchen").Name())
	assert.Equal(t, "", Constant{}.Name())
}

func TestConstant_Int64(t *testing.T) {
	n, ok := Int(30).Int64()
	require.True(t, ok)
	assert.Equal(t, int64(30), n)

	_, ok = Atom("kitchen").Int64()
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want string
	}{
		{"atom", Atom("kitchen"), "kitchen"},
		{"integer", Int(-4), "-4"},
		{"quoted", Atom("Hot Room"), `"Hot Room"`},
		{"var", NewVar("X"), "X"},
		{"renamed var", Var{Name: "X", Gen: 7}, "X_7"},
		{"compound", Comp("Temperature", Atom("kitchen"), Int(30)), "Temperature(kitchen, 30)"},
		{"nested", Comp("f", Comp("g", NewVar("X"))), "f(g(X))"},
		{"zero arity", Comp("raining"), "raining()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.term.String())
		})
	}
}

func TestEqual(t *testing.T) {
	x := NewVar("X")
	assert.True(t, Equal(Comp("f", x, Atom("a")), Comp("f", x, Atom("a"))))
	assert.False(t, Equal(Comp("f", x), Comp("f", NewVar("Y"))))
	assert.False(t, Equal(Comp("f", x), Comp("g", x)))
	assert.False(t, Equal(Comp("f", x), Comp("f", x, x)))
	assert.False(t, Equal(Atom("a"), Comp("a")))
	assert.False(t, Equal(x, Var{Name: "X", Gen: 1}))
}

func TestIsGround(t *testing.T) {
	assert.True(t, IsGround(Comp("Room", Atom("kitchen"))))
	assert.False(t, IsGround(Comp("f", Comp("g", NewVar("X")))))
	assert.True(t, IsGround(Comp("raining")))
}

func TestVars_FirstOccurrence(t *testing.T) {
	x, y := NewVar("X"), NewVar("Y")
	got := Vars(Comp("f", y, Comp("g", x, y), x))
	assert.Equal(t, []Var{y, x}, got)
}

func TestFresh_Unique(t *testing.T) {
	a, b := Fresh("X"), Fresh("X")
	assert.NotEqual(t, a, b)
	assert.NotZero(t, a.Gen)
}

func TestRename_Consistent(t *testing.T) {
	x, y := NewVar("X"), NewVar("Y")
	m := make(map[Var]Var)
	head := Rename(Comp("P", x, y), m).(Compound)
	body := Rename(Comp("Q", y, x), m).(Compound)

	require.Len(t, m, 2)
	assert.Equal(t, m[x], head.Args[0])
	assert.Equal(t, m[y], head.Args[1])
	assert.Equal(t, head.Args[1], body.Args[0])
	assert.Equal(t, head.Args[0], body.Args[1])
	assert.NotEqual(t, x, m[x])
	assert.NotEqual(t, m[x], m[y])
}

func TestRename_SameNameDifferentGen(t *testing.T) {
	a, b := Var{Name: "X", Gen: 1}, Var{Name: "X", Gen: 2}
	m := make(map[Var]Var)
	out := Rename(Comp("f", a, b), m).(Compound)
	assert.NotEqual(t, out.Args[0], out.Args[1])
}

func TestRename_Ground(t *testing.T) {
	in := Comp("Room", Atom("kitchen"))
	m := make(map[Var]Var)
	assert.True(t, Equal(in, Rename(in, m)))
	assert.Empty(t, m)
}

func TestSubstitution_BindIsPersistent(t *testing.T) {
	x := NewVar("X")
	var empty Substitution
	s := empty.Bind(x, Atom("a"))

	_, ok := empty.Lookup(x)
	assert.False(t, ok)
	got, ok := s.Lookup(x)
	require.True(t, ok)
	assert.Equal(t, Term(Atom("a")), got)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 1, s.Len())
}

func TestApply_FollowsChains(t *testing.T) {
	x, y, z := NewVar("X"), NewVar("Y"), NewVar("Z")
	s := Substitution{}.Bind(x, y).Bind(y, Comp("f", z)).Bind(z, Atom("a"))

	got := Apply(Comp("P", x, NewVar("W")), s)
	want := Comp("P", Comp("f", Atom("a")), NewVar("W"))
	if diff := cmp.Diff(Term(want), got, termCmp); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_Shallow(t *testing.T) {
	x, y := NewVar("X"), NewVar("Y")
	s := Substitution{}.Bind(x, Comp("f", y)).Bind(y, Atom("a"))
	got := Walk(x, s)
	assert.True(t, Equal(Comp("f", y), got))
	assert.Equal(t, Term(NewVar("Q")), Walk(NewVar("Q"), s))
}

func TestCompose_Law(t *testing.T) {
	x, y, z, w := NewVar("X"), NewVar("Y"), NewVar("Z"), NewVar("W")
	s1 := Substitution{}.Bind(x, Comp("f", y)).Bind(z, w)
	s2 := Substitution{}.Bind(y, Atom("a")).Bind(w, Comp("g", Atom("b")))

	terms := []Term{
		Comp("P", x, y, z, w),
		Comp("Q", Comp("h", x), NewVar("V")),
		x,
	}
	composed := Compose(s1, s2)
	for _, tt := range terms {
		want := Apply(Apply(tt, s1), s2)
		got := Apply(tt, composed)
		if diff := cmp.Diff(want, got, termCmp); diff != "" {
			t.Errorf("Compose law broken for %s (-want +got):\n%s", tt, diff)
		}
	}
}

func TestCompose_DropsIdentityBindings(t *testing.T) {
	x, y := NewVar("X"), NewVar("Y")
	composed := Compose(Substitution{}.Bind(x, y), Substitution{}.Bind(y, x))

	_, ok := composed.Lookup(x)
	assert.False(t, ok, "X = X must not be kept")
	assert.Equal(t, x, Walk(x, composed))
	assert.Equal(t, x, Walk(y, composed))
	assert.Equal(t, 1, composed.Len())
}

func TestSubstitution_String(t *testing.T) {
	s := Substitution{}.Bind(NewVar("Y"), Int(30)).Bind(NewVar("X"), Atom("kitchen"))
	assert.Equal(t, "{X = kitchen, Y = 30}", s.String())
	assert.Equal(t, "{}", Substitution{}.String())
}

func TestNode_RoundTrip(t *testing.T) {
	in := Comp("Temperature", Atom("kitchen"), Int(30), Comp("at", NewVar("T")), Comp("raining"))
	n := Encode(in)

	data, err := json.Marshal(n)
	require.NoError(t, err)
	var fromJSON Node
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	gotJSON, err := fromJSON.Decode()
	require.NoError(t, err)
	if diff := cmp.Diff(Term(in), gotJSON, termCmp); diff != "" {
		t.Errorf("JSON round trip (-want +got):\n%s", diff)
	}

	data, err = yaml.Marshal(n)
	require.NoError(t, err)
	var fromYAML Node
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	gotYAML, err := fromYAML.Decode()
	require.NoError(t, err)
	if diff := cmp.Diff(Term(in), gotYAML, termCmp); diff != "" {
		t.Errorf("YAML round trip (-want +got):\n%s", diff)
	}
}

func TestNode_EmptyConstant(t *testing.T) {
	empty := ""
	got, err := Node{Const: &empty}.Decode()
	require.NoError(t, err)
	assert.Equal(t, Term(Atom("")), got)
}

func TestNode_DecodeInvalid(t *testing.T) {
	a := "a"
	tests := []struct {
		name string
		node Node
	}{
		{"empty", Node{}},
		{"two kinds", Node{Var: "X", Functor: "f"}},
		{"var with args", Node{Var: "X", Args: []Node{{Var: "Y"}}}},
		{"const with args", Node{Const: &a, Args: []Node{{Var: "Y"}}}},
		{"bad argument", Node{Functor: "f", Args: []Node{{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.node.Decode()
			assert.ErrorIs(t, err, ErrInvalidNode)
		})
	}
}
