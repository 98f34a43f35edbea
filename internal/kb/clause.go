// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kb

import (
	"fmt"
	"strings"

	"github.com/pdiddy/fol-reasoner/internal/term"
)

// Signature identifies a predicate by name and argument count.
type Signature struct {
	Name  string `json:"name" yaml:"name"`
	Arity int    `json:"arity" yaml:"arity"`
}

// String renders the signature as Name/Arity.
func (s Signature) String() string {
	return fmt.Sprintf("%s/%d", s.Name, s.Arity)
}

// SignatureOf returns the signature of a goal term. Constants are treated as
// zero-arity predicates. ok is false for variables.
func SignatureOf(t term.Term) (Signature, bool) {
	switch x := t.(type) {
	case term.Compound:
		return Signature{Name: x.Functor, Arity: len(x.Args)}, true
	case term.Constant:
		return Signature{Name: x.Name()}, true
	}
	return Signature{}, false
}

// Source records where a clause was read from. The zero value means unknown.
type Source struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// String renders the source as file:line.
func (s Source) String() string {
	if s.File == "" && s.Line == 0 {
		return ""
	}
	if s.Line == 0 {
		return s.File
	}
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// Clause is a fact (empty Body) or a rule whose Head holds when every goal in
// Body holds. Head must be a compound term; New and Builder reject anything
// else.
type Clause struct {
	Head   term.Term
	Body   []term.Term
	Source Source
}

// Fact builds a clause with an empty body.
func Fact(head term.Term) Clause {
	return Clause{Head: head}
}

// Rule builds a clause head :- body.
func Rule(head term.Term, body ...term.Term) Clause {
	return Clause{Head: head, Body: body}
}

// IsFact reports whether the clause has no body.
func (c Clause) IsFact() bool {
	return len(c.Body) == 0
}

// Signature returns the signature of the clause head.
func (c Clause) Signature() Signature {
	sig, _ := SignatureOf(c.Head)
	return sig
}

// Rename returns the head and body with every variable replaced by a fresh
// one. Head and body share one renaming map, so a variable that occurs in
// both gets the same replacement.
func (c Clause) Rename() (term.Term, []term.Term) {
	m := make(map[term.Var]term.Var)
	head := term.Rename(c.Head, m)
	if len(c.Body) == 0 {
		return head, nil
	}
	body := make([]term.Term, len(c.Body))
	for i, g := range c.Body {
		body[i] = term.Rename(g, m)
	}
	return head, body
}

// String renders the clause in rule notation, e.g. "P(X) :- Q(X), R(X).".
func (c Clause) String() string {
	var b strings.Builder
	b.WriteString(termString(c.Head))
	if len(c.Body) > 0 {
		b.WriteString(" :- ")
		for i, g := range c.Body {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(termString(g))
		}
	}
	b.WriteByte('.')
	return b.String()
}

func termString(t term.Term) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
