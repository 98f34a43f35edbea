// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package term

import (
	"errors"
	"fmt"
)

// ErrInvalidNode is returned when a Node does not describe exactly one kind
// of term.
var ErrInvalidNode = errors.New("invalid term node")

// Node is the serialized form of a Term used in YAML and JSON documents.
// Exactly one of Var, Const, or Functor is set:
//
//	{var: X}
//	{const: kitchen}
//	{functor: Temperature, args: [{const: kitchen}, {const: "30"}]}
type Node struct {
	Var     string  `json:"var,omitempty" yaml:"var,omitempty"`
	Const   *string `json:"const,omitempty" yaml:"const,omitempty"`
	Functor string  `json:"functor,omitempty" yaml:"functor,omitempty"`
	Args    []Node  `json:"args,omitempty" yaml:"args,omitempty"`
}

// Encode converts t into its serialized form. Renamed variables keep their
// printed name (Name_Gen) so the node decodes to a distinct variable.
func Encode(t Term) Node {
	switch x := t.(type) {
	case Var:
		return Node{Var: x.String()}
	case Constant:
		name := x.Name()
		return Node{Const: &name}
	case Compound:
		n := Node{Functor: x.Functor}
		if len(x.Args) > 0 {
			n.Args = make([]Node, len(x.Args))
			for i, a := range x.Args {
				n.Args[i] = Encode(a)
			}
		}
		return n
	}
	return Node{}
}

// Decode converts the node back into a Term.
func (n Node) Decode() (Term, error) {
	kinds := 0
	if n.Var != "" {
		kinds++
	}
	if n.Const != nil {
		kinds++
	}
	if n.Functor != "" {
		kinds++
	}
	if kinds != 1 {
		return nil, fmt.Errorf("%w: want exactly one of var, const, functor", ErrInvalidNode)
	}

	switch {
	case n.Var != "":
		if len(n.Args) > 0 {
			return nil, fmt.Errorf("%w: variable %s has arguments", ErrInvalidNode, n.Var)
		}
		return NewVar(n.Var), nil
	case n.Const != nil:
		if len(n.Args) > 0 {
			return nil, fmt.Errorf("%w: constant %s has arguments", ErrInvalidNode, *n.Const)
		}
		return Atom(*n.Const), nil
	}

	var args []Term
	if len(n.Args) > 0 {
		args = make([]Term, len(n.Args))
	}
	for i, a := range n.Args {
		t, err := a.Decode()
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i+1, n.Functor, err)
		}
		args[i] = t
	}
	return Compound{Functor: n.Functor, Args: args}, nil
}
