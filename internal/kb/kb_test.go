// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fol-reasoner/internal/term"
)

func room(name string) term.Term { return term.Comp("Room", term.Atom(name)) }

func sampleClauses() []Clause {
	x, t := term.NewVar("X"), term.NewVar("T")
	return []Clause{
		Fact(room("kitchen")),
		Fact(term.Comp("Temperature", term.Atom("kitchen"), term.Int(30))),
		Fact(room("bedroom")),
		Rule(term.Comp("NeedsCooling", x),
			term.Comp("Room", x),
			term.Comp("Temperature", x, t),
			term.Comp("GreaterThan", t, term.Int(25)),
		),
	}
}

func TestNew_LookupPreservesOrder(t *testing.T) {
	k, err := New(sampleClauses()...)
	require.NoError(t, err)

	rooms := k.Lookup("Room", 1)
	require.Len(t, rooms, 2)
	assert.True(t, term.Equal(room("kitchen"), rooms[0].Head))
	assert.True(t, term.Equal(room("bedroom"), rooms[1].Head))

	assert.Empty(t, k.Lookup("Room", 2))
	assert.Empty(t, k.Lookup("Missing", 0))
	assert.Len(t, k.LookupSig(Signature{Name: "NeedsCooling", Arity: 1}), 1)
	assert.Equal(t, 4, k.Len())
}

func TestSignatures_Sorted(t *testing.T) {
	k, err := New(sampleClauses()...)
	require.NoError(t, err)
	assert.Equal(t, []Signature{
		{Name: "NeedsCooling", Arity: 1},
		{Name: "Room", Arity: 1},
		{Name: "Temperature", Arity: 2},
	}, k.Signatures())
}

func TestClauses_Copy(t *testing.T) {
	k, err := New(sampleClauses()...)
	require.NoError(t, err)
	all := k.Clauses()
	all[0] = Fact(room("attic"))
	assert.True(t, term.Equal(room("kitchen"), k.Clauses()[0].Head))
}

func TestStats(t *testing.T) {
	k, err := New(sampleClauses()...)
	require.NoError(t, err)
	assert.Equal(t, Stats{Facts: 3, Rules: 1, Predicates: 3}, k.Stats())
}

func TestNilKnowledgeBase(t *testing.T) {
	var k *KnowledgeBase
	assert.Nil(t, k.Lookup("Room", 1))
	assert.Nil(t, k.Signatures())
	assert.Nil(t, k.Clauses())
	assert.Zero(t, k.Len())
	assert.Equal(t, Stats{}, k.Stats())
}

func TestValidate(t *testing.T) {
	x := term.NewVar("X")
	tests := []struct {
		name   string
		clause Clause
		ok     bool
	}{
		{"fact", Fact(room("kitchen")), true},
		{"zero arity fact", Fact(term.Comp("raining")), true},
		{"rule with atom goal", Rule(term.Comp("Wet", x), term.Atom("raining")), true},
		{"head is a constant", Fact(term.Atom("kitchen")), false},
		{"head is a variable", Fact(x), false},
		{"nil head", Clause{}, false},
		{"empty functor", Fact(term.Comp("")), false},
		{"variable goal", Rule(term.Comp("P", x), x), false},
		{"nil goal", Rule(term.Comp("P", x), nil), false},
		{"empty functor goal", Rule(term.Comp("P", x), term.Comp("")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.clause)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformedClause)
			}
		})
	}
}

func TestBuilder_JoinsErrors(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddFact(room("kitchen")))
	bad1 := b.AddFact(term.Atom("kitchen"))
	bad2 := b.Add(Clause{
		Head:   term.Comp("P", term.NewVar("X")),
		Body:   []term.Term{term.NewVar("X")},
		Source: Source{File: "rooms.fol", Line: 7},
	})
	require.Error(t, bad1)
	require.Error(t, bad2)
	assert.Contains(t, bad2.Error(), "rooms.fol:7")
	assert.Equal(t, 1, b.Len())

	k, err := b.Build()
	assert.Nil(t, k)
	require.ErrorIs(t, err, ErrMalformedClause)
	assert.True(t, errors.Is(err, ErrMalformedClause))
	assert.Contains(t, err.Error(), "kitchen")
	assert.Contains(t, err.Error(), "rooms.fol:7")
}

func TestClause_Rename(t *testing.T) {
	c := sampleClauses()[3]
	head, body := c.Rename()

	hv := term.Vars(head)
	require.Len(t, hv, 1)
	assert.NotEqual(t, term.NewVar("X"), hv[0])
	assert.Equal(t, hv[0], body[0].(term.Compound).Args[0])
	assert.Equal(t, hv[0], body[1].(term.Compound).Args[0])
	tv := body[1].(term.Compound).Args[1]
	assert.Equal(t, tv, body[2].(term.Compound).Args[0])

	head2, _ := c.Rename()
	assert.NotEqual(t, hv[0], term.Vars(head2)[0], "each application must get fresh variables")

	assert.True(t, term.Equal(term.NewVar("X"), c.Head.(term.Compound).Args[0]), "renaming must not touch the stored clause")
}

func TestClause_String(t *testing.T) {
	c := sampleClauses()[3]
	assert.Equal(t, "NeedsCooling(X) :- Room(X), Temperature(X, T), GreaterThan(T, 25).", c.String())
	assert.Equal(t, "Room(kitchen).", Fact(room("kitchen")).String())
	assert.Equal(t, "NeedsCooling/1", c.Signature().String())
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "", Source{}.String())
	assert.Equal(t, "a.fol", Source{File: "a.fol"}.String())
	assert.Equal(t, "a.fol:3", Source{File: "a.fol", Line: 3}.String())
}
