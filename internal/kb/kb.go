// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package kb holds the clause index the resolver searches: facts and rules
// grouped by predicate signature, in load order.
package kb

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/pdiddy/fol-reasoner/internal/term"
)

// ErrMalformedClause is wrapped by every clause validation error.
var ErrMalformedClause = errors.New("malformed clause")

// KnowledgeBase is an immutable index from signature to clauses. Clause order
// within a signature is the order the clauses were added, which is the order
// the resolver tries them in. A KnowledgeBase is safe for concurrent use.
type KnowledgeBase struct {
	index   map[Signature][]Clause
	clauses []Clause
}

// New validates clauses and builds a knowledge base from them. If any clause
// is malformed, New returns nil and an error describing every bad clause.
func New(clauses ...Clause) (*KnowledgeBase, error) {
	b := NewBuilder()
	for _, c := range clauses {
		b.Add(c)
	}
	return b.Build()
}

// Lookup returns the clauses for name/arity in load order. The slice is
// shared with the knowledge base and must not be modified. A nil knowledge
// base has no clauses.
func (k *KnowledgeBase) Lookup(name string, arity int) []Clause {
	return k.LookupSig(Signature{Name: name, Arity: arity})
}

// LookupSig is Lookup keyed by a Signature.
func (k *KnowledgeBase) LookupSig(sig Signature) []Clause {
	if k == nil {
		return nil
	}
	return k.index[sig]
}

// Signatures returns every signature with at least one clause, sorted by
// name then arity. Like the other accessors it is safe on a nil knowledge
// base.
func (k *KnowledgeBase) Signatures() []Signature {
	if k == nil {
		return nil
	}
	sigs := slices.Collect(maps.Keys(k.index))
	slices.SortFunc(sigs, func(a, b Signature) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Arity, b.Arity)
	})
	return sigs
}

// Clauses returns all clauses in load order.
func (k *KnowledgeBase) Clauses() []Clause {
	if k == nil {
		return nil
	}
	return slices.Clone(k.clauses)
}

// Len returns the number of clauses.
func (k *KnowledgeBase) Len() int {
	if k == nil {
		return 0
	}
	return len(k.clauses)
}

// Stats summarizes the knowledge base.
type Stats struct {
	Facts      int `json:"facts" yaml:"facts"`
	Rules      int `json:"rules" yaml:"rules"`
	Predicates int `json:"predicates" yaml:"predicates"`
}

// Stats counts facts, rules, and distinct predicates.
func (k *KnowledgeBase) Stats() Stats {
	var st Stats
	if k == nil {
		return st
	}
	for _, c := range k.clauses {
		if c.IsFact() {
			st.Facts++
		} else {
			st.Rules++
		}
	}
	st.Predicates = len(k.index)
	return st
}

// Builder accumulates clauses for a KnowledgeBase. It is not safe for
// concurrent use; the KnowledgeBase it builds is.
type Builder struct {
	clauses []Clause
	errs    []error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add validates c and queues it. A malformed clause is not added; the error
// is returned and also reported again by Build.
func (b *Builder) Add(c Clause) error {
	if err := Validate(c); err != nil {
		b.errs = append(b.errs, err)
		return err
	}
	b.clauses = append(b.clauses, c)
	return nil
}

// AddFact adds head as a fact.
func (b *Builder) AddFact(head term.Term) error {
	return b.Add(Fact(head))
}

// AddRule adds head :- body.
func (b *Builder) AddRule(head term.Term, body ...term.Term) error {
	return b.Add(Rule(head, body...))
}

// Len returns the number of valid clauses added so far.
func (b *Builder) Len() int {
	return len(b.clauses)
}

// Build returns the knowledge base, or the joined validation errors if any
// Add call failed.
func (b *Builder) Build() (*KnowledgeBase, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	k := &KnowledgeBase{
		index:   make(map[Signature][]Clause),
		clauses: slices.Clone(b.clauses),
	}
	for _, c := range k.clauses {
		sig := c.Signature()
		k.index[sig] = append(k.index[sig], c)
	}
	return k, nil
}

// Validate checks that c can be resolved against: the head is a compound
// with a functor name, and every body goal is a compound or a constant.
func Validate(c Clause) error {
	head, ok := c.Head.(term.Compound)
	if !ok {
		return malformed(c, fmt.Sprintf("head %s is not a predicate application", termString(c.Head)))
	}
	if head.Functor == "" {
		return malformed(c, "head has an empty predicate name")
	}
	for i, g := range c.Body {
		switch x := g.(type) {
		case term.Compound:
			if x.Functor == "" {
				return malformed(c, fmt.Sprintf("body goal %d has an empty predicate name", i+1))
			}
		case term.Constant:
			if x.Name() == "" {
				return malformed(c, fmt.Sprintf("body goal %d has an empty predicate name", i+1))
			}
		case term.Var:
			return malformed(c, fmt.Sprintf("body goal %d is the variable %s", i+1, x))
		default:
			return malformed(c, fmt.Sprintf("body goal %d is missing", i+1))
		}
	}
	return nil
}

func malformed(c Clause, reason string) error {
	if src := c.Source.String(); src != "" {
		return fmt.Errorf("%w at %s: %s: %s", ErrMalformedClause, src, c, reason)
	}
	return fmt.Errorf("%w: %s: %s", ErrMalformedClause, c, reason)
}
