// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package term defines the logic terms the reasoner works on: variables,
// constants, and compound terms, together with substitutions over them.
//
// Terms are values. Nothing in this package mutates a term after it is
// built, so terms may be shared freely between goroutines and between
// branches of a proof search.
package term

import (
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"
	"unique"
)

// Term is a variable, a constant, or a compound term.
type Term interface {
	String() string
	isTerm()
}

// Var is a logic variable. Two variables are the same only if both Name and
// Gen match. Gen 0 is the namespace of terms written by callers; variables
// produced by Rename or Fresh carry a process-unique Gen.
type Var struct {
	Name string
	Gen  uint64
}

// generation issues variable identities for standardizing apart.
var generation atomic.Uint64

// Fresh returns a variable named name that differs from every variable
// created before it.
func Fresh(name string) Var {
	return Var{Name: name, Gen: generation.Add(1)}
}

// NewVar returns the caller-namespace variable called name.
func NewVar(name string) Var {
	return Var{Name: name}
}

func (Var) isTerm() {}

// String renders the variable; renamed variables print as Name_Gen.
func (v Var) String() string {
	if v.Gen == 0 {
		return v.Name
	}
	return v.Name + "_" + strconv.FormatUint(v.Gen, 10)
}

// Constant is an interned atomic symbol. Constants with the same name are
// equal under ==.
type Constant struct {
	h unique.Handle[string]
}

// Atom returns the constant called name.
func Atom(name string) Constant {
	return Constant{h: unique.Make(name)}
}

// Int returns the constant spelling the decimal integer n.
func Int(n int64) Constant {
	return Atom(strconv.FormatInt(n, 10))
}

func (Constant) isTerm() {}

// Name returns the symbol text.
func (c Constant) Name() string {
	if c.h == (unique.Handle[string]{}) {
		return ""
	}
	return c.h.Value()
}

// Int64 reports the integer value of c when its name is a decimal integer.
func (c Constant) Int64() (int64, bool) {
	n, err := strconv.ParseInt(c.Name(), 10, 64)
	return n, err == nil
}

// String renders the constant, quoting names that would otherwise read as a
// variable or fail to parse as a symbol.
func (c Constant) String() string {
	name := c.Name()
	if isPlainSymbol(name) {
		return name
	}
	if _, ok := c.Int64(); ok {
		return name
	}
	return strconv.Quote(name)
}

func isPlainSymbol(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsLower(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// Compound is a functor applied to an ordered list of arguments. Predicate
// applications, including zero-argument ones, are compounds.
type Compound struct {
	Functor string
	Args    []Term
}

// Comp builds a compound term.
func Comp(functor string, args ...Term) Compound {
	return Compound{Functor: functor, Args: args}
}

func (Compound) isTerm() {}

// Arity returns the number of arguments.
func (c Compound) Arity() int {
	return len(c.Args)
}

// String renders the compound as Functor(arg, ...). Zero-arity compounds
// render with empty parentheses.
func (c Compound) String() string {
	var b strings.Builder
	b.WriteString(c.Functor)
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Term) bool {
	switch x := a.(type) {
	case Var:
		y, ok := b.(Var)
		return ok && x == y
	case Constant:
		y, ok := b.(Constant)
		return ok && x == y
	case Compound:
		y, ok := b.(Compound)
		if !ok || x.Functor != y.Functor || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}

// IsGround reports whether t contains no variables.
func IsGround(t Term) bool {
	switch x := t.(type) {
	case Var:
		return false
	case Compound:
		for _, a := range x.Args {
			if !IsGround(a) {
				return false
			}
		}
	}
	return true
}

// Vars returns the distinct variables of t in order of first occurrence.
func Vars(t Term) []Var {
	var out []Var
	seen := make(map[Var]bool)
	var walk func(Term)
	walk = func(t Term) {
		switch x := t.(type) {
		case Var:
			if !seen[x] {
				seen[x] = true
				out = append(out, x)
			}
		case Compound:
			for _, a := range x.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}

// Rename returns a copy of t in which every variable is replaced by a fresh
// one. m maps original variables to their replacements; it is consulted and
// extended, so renaming several terms with the same map gives them a
// consistent set of fresh variables.
func Rename(t Term, m map[Var]Var) Term {
	switch x := t.(type) {
	case Var:
		if nv, ok := m[x]; ok {
			return nv
		}
		nv := Fresh(x.Name)
		m[x] = nv
		return nv
	case Compound:
		if len(x.Args) == 0 {
			return x
		}
		args := make([]Term, len(x.Args))
		for i, a := range x.Args {
			args[i] = Rename(a, m)
		}
		return Compound{Functor: x.Functor, Args: args}
	}
	return t
}
