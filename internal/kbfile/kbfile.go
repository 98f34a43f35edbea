// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package kbfile loads knowledge bases from clause-notation text and from
// structured YAML or JSON documents, on disk or over HTTP(S).
package kbfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/fol-reasoner/internal/httputil"
	"github.com/pdiddy/fol-reasoner/internal/kb"
	"github.com/pdiddy/fol-reasoner/internal/parse"
	"github.com/pdiddy/fol-reasoner/internal/term"
)

// ErrUnknownFormat is returned for sources whose extension names no
// supported format.
var ErrUnknownFormat = errors.New("unknown knowledge base format")

// Format identifies a knowledge base encoding.
type Format string

const (
	FormatText Format = "fol"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Extensions lists the file extensions Load understands.
var Extensions = []string{".fol", ".pl", ".yaml", ".yml", ".json"}

// FormatOf picks the format from the extension of a path or URL.
func FormatOf(source string) (Format, error) {
	p := source
	if u, err := url.Parse(source); err == nil && isRemote(u) {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".fol", ".pl":
		return FormatText, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, source)
}

// ParseFormat accepts a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "fol", "pl", "text":
		return FormatText, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}

// Document is the structured form of a knowledge base.
type Document struct {
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Clauses []ClauseNode `json:"clauses" yaml:"clauses"`
}

// ClauseNode is one clause of a Document. A clause without a body is a fact.
type ClauseNode struct {
	Head term.Node   `json:"head" yaml:"head"`
	Body []term.Node `json:"body,omitempty" yaml:"body,omitempty"`
}

// NewDocument encodes clauses into a Document.
func NewDocument(name string, clauses []kb.Clause) Document {
	doc := Document{Name: name, Clauses: make([]ClauseNode, len(clauses))}
	for i, c := range clauses {
		n := ClauseNode{Head: term.Encode(c.Head)}
		for _, g := range c.Body {
			n.Body = append(n.Body, term.Encode(g))
		}
		doc.Clauses[i] = n
	}
	return doc
}

// Clauses decodes the document. file is recorded as each clause's source and
// the clause's position in the document as its line.
func (d Document) Clauses(file string) ([]kb.Clause, error) {
	clauses := make([]kb.Clause, 0, len(d.Clauses))
	for i, n := range d.Clauses {
		head, err := n.Head.Decode()
		if err != nil {
			return nil, fmt.Errorf("%s: clause %d head: %w", file, i+1, err)
		}
		c := kb.Clause{Head: head, Source: kb.Source{File: file, Line: i + 1}}
		for j, g := range n.Body {
			t, err := g.Decode()
			if err != nil {
				return nil, fmt.Errorf("%s: clause %d goal %d: %w", file, i+1, j+1, err)
			}
			c.Body = append(c.Body, t)
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// Decode reads clauses from data in format f.
func Decode(file string, f Format, data []byte) ([]kb.Clause, error) {
	switch f {
	case FormatText:
		return parse.Parse(file, string(data))
	case FormatYAML:
		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", file, err)
		}
		return doc.Clauses(file)
	case FormatJSON:
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", file, err)
		}
		return doc.Clauses(file)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Encode writes clauses to w in format f.
func Encode(w io.Writer, f Format, name string, clauses []kb.Clause) error {
	switch f {
	case FormatText:
		return parse.Write(w, clauses)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(name, clauses)); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewDocument(name, clauses)); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Loader reads knowledge base sources. The zero value reads local files and
// fetches URLs with http.DefaultClient.
type Loader struct {
	Fetcher *httputil.Fetcher
	Logger  *zap.Logger
}

// Load reads the clauses of one source: a local path or an http(s) URL.
func (l *Loader) Load(ctx context.Context, source string) ([]kb.Clause, error) {
	f, err := FormatOf(source)
	if err != nil {
		return nil, err
	}
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}
	clauses, err := Decode(source, f, data)
	if err != nil {
		return nil, err
	}
	l.logger().Debug("loaded knowledge base",
		zap.String("source", source),
		zap.String("format", string(f)),
		zap.Int("clauses", len(clauses)),
	)
	return clauses, nil
}

// LoadKB reads every source in order and builds one knowledge base from the
// concatenated clauses.
func (l *Loader) LoadKB(ctx context.Context, sources ...string) (*kb.KnowledgeBase, error) {
	var all []kb.Clause
	for _, src := range sources {
		clauses, err := l.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		all = append(all, clauses...)
	}
	return kb.New(all...)
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if u, err := url.Parse(source); err == nil && isRemote(u) {
		fetcher := l.Fetcher
		if fetcher == nil {
			fetcher = &httputil.Fetcher{Logger: l.Logger}
		}
		return fetcher.Fetch(ctx, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return data, nil
}

func (l *Loader) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

// Load reads one source with a zero Loader.
func Load(ctx context.Context, source string) ([]kb.Clause, error) {
	var l Loader
	return l.Load(ctx, source)
}

func isRemote(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}
