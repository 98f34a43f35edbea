// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"encoding/json"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/fol-reasoner/internal/term"
)

// Answer is one solution of a query: the value of each query variable.
// Vars lists the variable names in order of first occurrence in the query.
// A binding may itself contain variables when the proof left them open.
type Answer struct {
	Vars     []string
	Bindings map[string]term.Term
}

// Get returns the binding for the variable called name.
func (a Answer) Get(name string) (term.Term, bool) {
	t, ok := a.Bindings[name]
	return t, ok
}

// String renders the answer as "X = kitchen, T = 30", or "yes" for a query
// without variables.
func (a Answer) String() string {
	if len(a.Vars) == 0 {
		return "yes"
	}
	var b strings.Builder
	for i, name := range a.Vars {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(" = ")
		b.WriteString(a.Bindings[name].String())
	}
	return b.String()
}

// MarshalJSON encodes the answer as an object from variable name to the
// rendered value.
func (a Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.rendered())
}

// MarshalYAML encodes the answer as a mapping in variable order.
func (a Answer) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range a.Vars {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: a.Bindings[name].String()},
		)
	}
	return n, nil
}

func (a Answer) rendered() map[string]string {
	out := make(map[string]string, len(a.Vars))
	for _, name := range a.Vars {
		out[name] = a.Bindings[name].String()
	}
	return out
}
