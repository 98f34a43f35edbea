// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/fol-reasoner/internal/term"
)

// Result is a materialized query outcome, shaped for reports.
type Result struct {
	Query     string   `json:"query" yaml:"query"`
	Answers   []Answer `json:"answers" yaml:"answers"`
	Truncated bool     `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Steps     int      `json:"steps" yaml:"steps"`

	// Err is the incomplete-search reason (see Answers.Err); Error is its
	// text for encoded reports.
	Err   error  `json:"-" yaml:"-"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Proved reports whether the query has at least one answer.
func (r Result) Proved() bool {
	return len(r.Answers) > 0
}

// Ask runs q and collects up to limit answers (all when limit <= 0).
// Truncated is set when more answers exist beyond limit. The returned error
// is non-nil only for an invalid query or a cancelled context; depth and
// step limits are recorded in Result.Err.
func (e *Engine) Ask(ctx context.Context, q term.Term, limit int) (Result, error) {
	ans, err := e.QueryContext(ctx, q)
	if err != nil {
		return Result{}, err
	}

	res := Result{Query: q.String()}
	for a := range ans.All() {
		if limit > 0 && len(res.Answers) == limit {
			res.Truncated = true
			break
		}
		res.Answers = append(res.Answers, a)
	}
	res.Steps = ans.Steps()
	if !res.Truncated {
		res.Err = ans.Err()
	}
	if res.Err != nil {
		res.Error = res.Err.Error()
	}
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("asking %s: %w", q, err)
	}
	return res, nil
}

// AskAll runs independent queries concurrently over the shared knowledge
// base. Results are in input order. The first invalid query or context
// error cancels the remaining queries and is returned.
func (e *Engine) AskAll(ctx context.Context, queries []term.Term, limit int) ([]Result, error) {
	results := make([]Result, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, q := range queries {
		g.Go(func() error {
			res, err := e.Ask(gctx, q, limit)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
