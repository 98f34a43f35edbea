// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fol-reasoner/internal/kb"
	"github.com/pdiddy/fol-reasoner/internal/term"
)

var termCmp = cmp.Comparer(func(a, b term.Term) bool { return term.Equal(a, b) })

const smartHome = `% SmartHome knowledge base
Room(kitchen).
Room(living_room).   % trailing comment
Temperature(kitchen, 30).
Temperature(living_room, 28).

NeedsCooling(X) :-
    Room(X),
    Temperature(X, T),
    GreaterThan(T, 25).
TurnOnAC(X) :- NeedsCooling(X).
`

func TestParse_SmartHome(t *testing.T) {
	clauses, err := Parse("kb.fol", smartHome)
	require.NoError(t, err)
	require.Len(t, clauses, 6)

	x, tv := term.NewVar("X"), term.NewVar("T")
	want := kb.Clause{
		Head: term.Comp("NeedsCooling", x),
		Body: []term.Term{
			term.Comp("Room", x),
			term.Comp("Temperature", x, tv),
			term.Comp("GreaterThan", tv, term.Int(25)),
		},
		Source: kb.Source{File: "kb.fol", Line: 7},
	}
	if diff := cmp.Diff(want, clauses[4], termCmp); diff != "" {
		t.Errorf("rule mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, kb.Source{File: "kb.fol", Line: 2}, clauses[0].Source)
	assert.Equal(t, kb.Source{File: "kb.fol", Line: 3}, clauses[1].Source)
	assert.True(t, clauses[3].IsFact())
	assert.Equal(t, "Temperature(living_room, 28).", Format(clauses[3]))

	_, err = kb.New(clauses...)
	assert.NoError(t, err)
}

func TestParse_Terms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want term.Term
	}{
		{"atom", "kitchen", term.Atom("kitchen")},
		{"variable", "Temp", term.NewVar("Temp")},
		{"underscore variable", "_Room", term.NewVar("_Room")},
		{"integer", "30", term.Int(30)},
		{"negative integer", "-7", term.Int(-7)},
		{"string", `"Hot Room"`, term.Atom("Hot Room")},
		{"nested", "f(g(X), a)", term.Comp("f", term.Comp("g", term.NewVar("X")), term.Atom("a"))},
		{"zero arity", "raining()", term.Comp("raining")},
		{"spaces", "  f ( a ,b )  ", term.Comp("f", term.Atom("a"), term.Atom("b"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTerm(tt.src)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, termCmp); diff != "" {
				t.Errorf("ParseTerm(%q) (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestParse_BareNameGoals(t *testing.T) {
	clauses, err := Parse("", "raining.\nWet(lawn) :- raining, cloudy().\n")
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	assert.True(t, term.Equal(term.Comp("raining"), clauses[0].Head))
	assert.True(t, term.Equal(term.Comp("raining"), clauses[1].Body[0]))
	assert.True(t, term.Equal(term.Comp("cloudy"), clauses[1].Body[1]))
}

func TestParse_AnonymousVariables(t *testing.T) {
	clauses, err := Parse("", "HasReading(R) :- Temperature(R, _), Humidity(R, _).")
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	a := clauses[0].Body[0].(term.Compound).Args[1]
	b := clauses[0].Body[1].(term.Compound).Args[1]
	assert.NotEqual(t, a, b, "each _ is a distinct variable")
}

func TestParse_Empty(t *testing.T) {
	clauses, err := Parse("empty.fol", "% nothing here\n\n")
	require.NoError(t, err)
	assert.Empty(t, clauses)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"missing period", "Room(kitchen).\nRoom(bedroom)\n", 2},
		{"unclosed paren", "Room(kitchen).\n\nRoom(bedroom.\n", 3},
		{"empty body", "P(X) :- .", 1},
		{"garbage", "Room(kitchen).\n?? what\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.fol", tt.src)
			require.ErrorIs(t, err, ErrSyntax)
			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, "bad.fol", perr.File)
			assert.Contains(t, err.Error(), "bad.fol:")
		})
	}
}

func TestParse_NegationUnsupported(t *testing.T) {
	for _, src := range []string{
		"Comfortable(X) :- Room(X), not(NeedsCooling(X)).",
		"Comfortable(X) :- Room(X), not NeedsCooling(X).",
		"Comfortable(X) :- Room(X), \\+ NeedsCooling(X).",
		"Comfortable(X) :- Room(X), \\+NeedsCooling(X).",
	} {
		_, err := Parse("neg.fol", "Room(kitchen).\n"+src)
		require.ErrorIs(t, err, ErrUnsupported, src)
		var perr *Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 2, perr.Line)
	}

	clauses, err := Parse("", "nothing(a).\nnotable(b).")
	require.NoError(t, err, "names that merely start with not are fine")
	assert.Len(t, clauses, 2)
}

func TestParseQuery_NegationUnsupported(t *testing.T) {
	_, err := ParseQuery(`\+ Room(attic)?`)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorContains(t, err, `negated goal \+ Room(attic)`)
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		src  string
		want term.Term
	}{
		{"NeedsCooling(X)?", term.Comp("NeedsCooling", term.NewVar("X"))},
		{"  GreaterThan(29, 25) ? ", term.Comp("GreaterThan", term.Int(29), term.Int(25))},
		{"Room(kitchen).", term.Comp("Room", term.Atom("kitchen"))},
		{"raining", term.Comp("raining")},
	}
	for _, tt := range tests {
		got, err := ParseQuery(tt.src)
		require.NoError(t, err, tt.src)
		if diff := cmp.Diff(tt.want, got, termCmp); diff != "" {
			t.Errorf("ParseQuery(%q) (-want +got):\n%s", tt.src, diff)
		}
	}

	_, err := ParseQuery("not(Room(X))?")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = ParseQuery("Room(X")
	assert.ErrorIs(t, err, ErrSyntax)
	_, err = ParseQuery("")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestFormat_RoundTrip(t *testing.T) {
	clauses, err := Parse("kb.fol", smartHome)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, clauses))
	assert.True(t, strings.HasPrefix(buf.String(), "% kb.fol\n"))

	again, err := Parse("kb.fol", buf.String())
	require.NoError(t, err)
	require.Len(t, again, len(clauses))
	for i := range clauses {
		assert.Equal(t, Format(clauses[i]), Format(again[i]))
	}
}

func TestParseReader(t *testing.T) {
	clauses, err := ParseReader("r.fol", strings.NewReader("Room(kitchen)."))
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Equal(t, "r.fol", clauses[0].Source.File)
}
