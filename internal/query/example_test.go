// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query_test

import (
	"errors"
	"fmt"

	"github.com/pdiddy/fol-reasoner/internal/builtin"
	"github.com/pdiddy/fol-reasoner/internal/kb"
	"github.com/pdiddy/fol-reasoner/internal/query"
	"github.com/pdiddy/fol-reasoner/internal/term"
)

func Example() {
	x, t := term.NewVar("X"), term.NewVar("T")
	k, err := kb.New(
		kb.Fact(term.Comp("Room", term.Atom("kitchen"))),
		kb.Fact(term.Comp("Room", term.Atom("bedroom"))),
		kb.Fact(term.Comp("Temperature", term.Atom("kitchen"), term.Int(30))),
		kb.Fact(term.Comp("Temperature", term.Atom("bedroom"), term.Int(20))),
		kb.Rule(term.Comp("NeedsCooling", x),
			term.Comp("Room", x),
			term.Comp("Temperature", x, t),
			term.Comp("GreaterThan", t, term.Int(25)),
		),
	)
	if err != nil {
		panic(err)
	}

	e := query.NewEngine(k, query.WithBuiltins(builtin.Default()))
	ans, err := e.Query(term.Comp("Room", term.NewVar("R")))
	if err != nil {
		panic(err)
	}
	for a := range ans.All() {
		fmt.Println(a)
	}

	ans, _ = e.Query(term.Comp("NeedsCooling", term.NewVar("R")))
	for a := range ans.All() {
		fmt.Println("cool", a)
	}
	// Output:
	// R = kitchen
	// R = bedroom
	// cool R = kitchen
}

func ExampleAnswers_Err() {
	x := term.NewVar("X")
	k, _ := kb.New(kb.Rule(term.Comp("Loop", x), term.Comp("Loop", x)))
	e := query.NewEngine(k, query.WithMaxDepth(50))

	ans, _ := e.Query(term.Comp("Loop", term.Atom("a")))
	got, err := ans.Collect(0)
	fmt.Println(len(got), errors.Is(err, query.ErrDepthExceeded))
	// Output:
	// 0 true
}
