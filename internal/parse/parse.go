// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse reads knowledge bases and queries written in clause
// notation:
//
//	% rooms and their readings
//	Room(kitchen).
//	Temperature(kitchen, 30).
//	NeedsCooling(X) :- Room(X), Temperature(X, T), GreaterThan(T, 25).
//
// Names starting with an uppercase letter or underscore are variables, other
// names, integers, and double-quoted strings are constants. A bare lowercase
// name in goal position is a zero-argument predicate.
package parse

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	p "github.com/vektah/goparsify"

	"github.com/pdiddy/fol-reasoner/internal/kb"
	"github.com/pdiddy/fol-reasoner/internal/term"
)

var (
	// ErrSyntax is wrapped by every error for text that does not follow the
	// notation.
	ErrSyntax = errors.New("syntax error")

	// ErrUnsupported is wrapped by errors for well-formed constructs the
	// reasoner does not implement, such as negated goals.
	ErrUnsupported = errors.New("unsupported construct")
)

// Error locates a parse failure. It wraps ErrSyntax or ErrUnsupported.
type Error struct {
	File    string
	Line    int
	Column  int
	Details string
	Err     error
}

func (e *Error) Error() string {
	loc := fmt.Sprintf("line %d column %d", e.Line, e.Column)
	if e.File != "" {
		loc = fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %v: %s", loc, e.Err, e.Details)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// statement is one parsed clause before validation.
type statement struct {
	pos  int
	head any
	body []any
}

// negation marks a goal written as not(G), not G, or \+ G.
type negation struct {
	op   string
	goal any
}

var (
	program    p.Parser
	queryRoot  p.Parser
	singleTerm p.Parser
)

func init() {
	var value p.Parser

	name := identifier()
	number := integer().Map(func(n *p.Result) {
		if v, err := strconv.ParseInt(n.Token, 10, 64); err == nil {
			n.Result = term.Int(v)
			return
		}
		n.Result = term.Atom(n.Token)
	})
	str := p.StringLit(`"`).Map(func(n *p.Result) {
		n.Result = term.Atom(n.Token)
	})
	symbol := name.Map(func(n *p.Result) {
		n.Result = symbolTerm(n.Token)
	})
	compound := p.Seq(name, "(", p.Cut(), p.Some(&value, ","), ")").Map(func(n *p.Result) {
		args := make([]term.Term, 0, len(n.Child[3].Child))
		for _, c := range n.Child[3].Child {
			args = append(args, c.Result.(term.Term))
		}
		if len(args) == 0 {
			args = nil
		}
		n.Result = term.Compound{Functor: n.Child[0].Token, Args: args}
	})
	value = p.Any(compound, number, str, symbol)

	negated := p.Seq(p.Any(keyword("not"), `\+`), value).Map(func(n *p.Result) {
		n.Result = negation{op: n.Child[0].Token, goal: n.Child[1].Result}
	})
	goal := p.Any(negated, value)
	body := p.Seq(":-", p.Cut(), p.Many(goal, ",")).Map(func(n *p.Result) {
		goals := make([]any, len(n.Child[2].Child))
		for i, c := range n.Child[2].Child {
			goals[i] = c.Result
		}
		n.Result = goals
	})
	clause := p.Seq(goal, p.Maybe(body), ".").Map(func(n *p.Result) {
		st := &statement{head: n.Child[0].Result}
		if goals, ok := n.Child[1].Result.([]any); ok {
			st.body = goals
		}
		n.Result = st
	})

	program = p.Some(positioned(clause))
	queryRoot = p.Seq(goal, p.Maybe(p.Any("?", "."))).Map(func(n *p.Result) {
		n.Result = n.Child[0].Result
	})
	singleTerm = value
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

func isName(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i], i == 0) {
			return false
		}
	}
	return s != ""
}

// identifier matches a name: a letter or underscore followed by letters,
// digits, and underscores.
func identifier() p.Parser {
	return p.NewParser("name", func(s *p.State, r *p.Result) {
		s.WS(s)
		end := s.Pos
		for end < len(s.Input) && isIdentByte(s.Input[end], end == s.Pos) {
			end++
		}
		if end == s.Pos {
			s.ErrorHere("name")
			return
		}
		r.Token = s.Input[s.Pos:end]
		s.Pos = end
	})
}

// integer matches an optionally negative run of decimal digits.
func integer() p.Parser {
	return p.NewParser("integer", func(s *p.State, r *p.Result) {
		s.WS(s)
		end := s.Pos
		if end < len(s.Input) && s.Input[end] == '-' {
			end++
		}
		digits := end
		for end < len(s.Input) && s.Input[end] >= '0' && s.Input[end] <= '9' {
			end++
		}
		if end == digits {
			s.ErrorHere("integer")
			return
		}
		r.Token = s.Input[s.Pos:end]
		s.Pos = end
	})
}

// keyword matches word only when it is not the prefix of a longer name.
func keyword(word string) p.Parser {
	return p.NewParser(word, func(s *p.State, r *p.Result) {
		s.WS(s)
		in := s.Get()
		if !strings.HasPrefix(in, word) || (len(in) > len(word) && isIdentByte(in[len(word)], false)) {
			s.ErrorHere(word)
			return
		}
		s.Advance(len(word))
		r.Token = word
	})
}

// positioned records the offset where a statement starts.
func positioned(inner p.Parser) p.Parser {
	return p.NewParser("clause", func(s *p.State, r *p.Result) {
		s.WS(s)
		start := s.Pos
		inner(s, r)
		if s.Errored() {
			return
		}
		if st, ok := r.Result.(*statement); ok {
			st.pos = start
		}
	})
}

func symbolTerm(tok string) term.Term {
	if tok[0] == '_' || (tok[0] >= 'A' && tok[0] <= 'Z') {
		return term.NewVar(tok)
	}
	return term.Atom(tok)
}

// whitespace skips blanks and % comments running to the end of the line.
func whitespace(s *p.State) {
	for s.Pos < len(s.Input) {
		switch s.Input[s.Pos] {
		case ' ', '\t', '\r', '\n':
			s.Pos++
		case '%':
			for s.Pos < len(s.Input) && s.Input[s.Pos] != '\n' {
				s.Pos++
			}
		default:
			return
		}
	}
}

// Parse reads every clause in src. file names the source in errors and in
// each clause's Source. The clauses are not validated beyond the notation;
// kb.New does that.
func Parse(file, src string) ([]kb.Clause, error) {
	res, err := run(file, src, program)
	if err != nil {
		return nil, err
	}

	var clauses []kb.Clause
	for _, child := range res.Child {
		st := child.Result.(*statement)
		c, err := st.clause(file, src)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// ParseReader is Parse over the contents of r.
func ParseReader(file string, r io.Reader) ([]kb.Clause, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return Parse(file, string(data))
}

// ParseQuery reads a single goal such as "NeedsCooling(X)?". A trailing "?"
// or "." is optional.
func ParseQuery(src string) (term.Term, error) {
	res, err := run("", src, queryRoot)
	if err != nil {
		return nil, err
	}
	var n int
	return goalTerm(res.Result, &n, func(details string) error {
		return &Error{Line: 1, Column: 1, Details: details, Err: ErrUnsupported}
	})
}

// ParseTerm reads a single term.
func ParseTerm(src string) (term.Term, error) {
	res, err := run("", src, singleTerm)
	if err != nil {
		return nil, err
	}
	return res.Result.(term.Term), nil
}

// run applies root to src and requires it to consume the whole input.
func run(file, src string, root p.Parser) (*p.Result, error) {
	state := p.NewState(src)
	state.WS = whitespace

	result := &p.Result{}
	root(state, result)
	if state.Errored() {
		line, col := coordinates(src, state.Error.Pos())
		return nil, &Error{File: file, Line: line, Column: col, Details: expected(&state.Error), Err: ErrSyntax}
	}
	state.WS(state)
	if rest := state.Get(); rest != "" {
		line, col := coordinates(src, state.Pos)
		return nil, &Error{File: file, Line: line, Column: col, Details: fmt.Sprintf("unexpected %q", firstLine(rest)), Err: ErrSyntax}
	}
	return result, nil
}

func (st *statement) clause(file, src string) (kb.Clause, error) {
	line, col := coordinates(src, st.pos)
	unsupported := func(details string) error {
		return &Error{File: file, Line: line, Column: col, Details: details, Err: ErrUnsupported}
	}

	var anon int
	head, err := goalTerm(st.head, &anon, unsupported)
	if err != nil {
		return kb.Clause{}, err
	}
	c := kb.Clause{Head: head, Source: kb.Source{File: file, Line: line}}
	for _, g := range st.body {
		t, err := goalTerm(g, &anon, unsupported)
		if err != nil {
			return kb.Clause{}, err
		}
		c.Body = append(c.Body, t)
	}
	return c, nil
}

// goalTerm turns a parsed goal into a term: bare lowercase names become
// zero-argument predicates and each "_" becomes its own variable.
func goalTerm(v any, anon *int, unsupported func(string) error) (term.Term, error) {
	if neg, ok := v.(negation); ok {
		return nil, unsupported(fmt.Sprintf("negated goal %s %s", neg.op, neg.goal.(term.Term)))
	}
	t := anonymize(v.(term.Term), anon)
	switch x := t.(type) {
	case term.Constant:
		if name := x.Name(); name != "" && name[0] >= 'a' && name[0] <= 'z' && isName(name) {
			return term.Compound{Functor: name}, nil
		}
	case term.Compound:
		if x.Functor == "not" && len(x.Args) == 1 {
			return nil, unsupported(fmt.Sprintf("negated goal %s", x))
		}
	}
	return t, nil
}

func anonymize(t term.Term, n *int) term.Term {
	switch x := t.(type) {
	case term.Var:
		if x.Name == "_" {
			*n++
			return term.NewVar("_" + strconv.Itoa(*n))
		}
	case term.Compound:
		if len(x.Args) == 0 {
			return x
		}
		args := make([]term.Term, len(x.Args))
		for i, a := range x.Args {
			args[i] = anonymize(a, n)
		}
		return term.Compound{Functor: x.Functor, Args: args}
	}
	return t
}

// coordinates returns the 1-based line and column of offset in input.
func coordinates(input string, offset int) (line, col int) {
	offset = min(offset, len(input))
	before := input[:offset]
	line = strings.Count(before, "\n") + 1
	col = offset - strings.LastIndexByte(before, '\n')
	return line, col
}

// expected extracts the "expected ..." part of a goparsify error.
func expected(e *p.Error) string {
	msg := e.Error()
	if i := strings.Index(msg, "expected"); i >= 0 {
		return msg[i:]
	}
	return msg
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
