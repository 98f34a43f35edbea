// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/fol-reasoner/internal/builtin"
	"github.com/pdiddy/fol-reasoner/internal/kb"
	"github.com/pdiddy/fol-reasoner/internal/metrics"
	"github.com/pdiddy/fol-reasoner/internal/parse"
	"github.com/pdiddy/fol-reasoner/internal/query"
	"github.com/pdiddy/fol-reasoner/internal/resolve"
	"github.com/pdiddy/fol-reasoner/internal/term"
)

var queryCmd = &cobra.Command{
	Use:   "query GOAL...",
	Short: "Prove goals against a knowledge base",
	Long: `Query proves each goal against the knowledge base loaded from --kb
sources or from the store entry named by --store. Goals run concurrently;
each prints its variable bindings one answer per line, "yes" for a proved
goal without variables, or "no".

A search cut short by the depth budget reports "depth limit reached" after
any answers it found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	goals := make([]term.Term, len(args))
	for i, a := range args {
		g, err := parse.ParseQuery(a)
		if err != nil {
			return fmt.Errorf("goal %d: %w", i+1, err)
		}
		goals[i] = g
	}

	k, err := knowledgeBaseFromFlags(ctx, cmd)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	opts := []query.Option{
		query.WithMaxDepth(cfg.Engine.MaxDepth),
		query.WithStepLimit(cfg.Engine.StepLimit),
		query.WithDistinct(cfg.Engine.Distinct),
		query.WithLogger(logger),
		query.WithMetrics(metrics.New(reg)),
	}
	if noBuiltins, _ := cmd.Flags().GetBool("no-builtins"); !noBuiltins {
		opts = append(opts, query.WithBuiltins(builtin.Default()))
	}
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		opts = append(opts, query.WithTracer(resolve.NewLogTracer(logger)))
	}
	engine := query.NewEngine(k, opts...)

	results, err := engine.AskAll(ctx, goals, cfg.Engine.MaxAnswers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printResults(out, results)
	}

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		return printStats(out, reg)
	}
	return nil
}

// knowledgeBaseFromFlags loads the --kb sources or the --store entry.
func knowledgeBaseFromFlags(ctx context.Context, cmd *cobra.Command) (*kb.KnowledgeBase, error) {
	sources, _ := cmd.Flags().GetStringSlice("kb")
	name, _ := cmd.Flags().GetString("store")

	switch {
	case len(sources) > 0 && name != "":
		return nil, errors.New("use either --kb or --store, not both")
	case name != "":
		s, err := openStore()
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.KnowledgeBase(ctx, name)
	case len(sources) > 0:
		return newLoader().LoadKB(ctx, sources...)
	}
	return nil, errors.New("knowledge base required: provide --kb or --store")
}

// printResults writes the plain-text report for each result.
func printResults(w io.Writer, results []query.Result) {
	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "?- %s\n", r.Query)
		}
		for _, a := range r.Answers {
			fmt.Fprintln(w, a)
		}
		switch {
		case errors.Is(r.Err, query.ErrDepthExceeded):
			fmt.Fprintln(w, "depth limit reached")
		case errors.Is(r.Err, resolve.ErrStepLimit):
			fmt.Fprintln(w, "step limit reached")
		case r.Truncated:
			fmt.Fprintln(w, "...")
		case !r.Proved():
			fmt.Fprintln(w, "no")
		}
		logger.Debug("query result",
			zap.String("query", r.Query),
			zap.Int("answers", len(r.Answers)),
			zap.Int("steps", r.Steps),
		)
	}
}

// printStats writes the collected metric values.
func printStats(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%-45s %g\n", mf.GetName(), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%-45s count=%d sum=%g\n", mf.GetName(), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

func init() {
	queryCmd.Flags().StringSlice("kb", nil, "knowledge base file or URL (repeatable)")
	queryCmd.Flags().String("store", "", "name of a stored knowledge base")
	queryCmd.Flags().Int("limit", 0, "maximum answers per goal (0 = all)")
	queryCmd.Flags().Int("max-depth", 0, "proof depth budget (default 100)")
	queryCmd.Flags().Int("step-limit", 0, "resolution step budget per goal (0 = none)")
	queryCmd.Flags().Bool("distinct", false, "drop repeated answers")
	queryCmd.Flags().Bool("no-builtins", false, "disable GreaterThan/LessThan")
	queryCmd.Flags().Bool("trace", false, "log each resolution step")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	queryCmd.Flags().Bool("stats", false, "print engine metrics after the results")

	viper.BindPFlag("engine.max_answers", queryCmd.Flags().Lookup("limit"))
	viper.BindPFlag("engine.max_depth", queryCmd.Flags().Lookup("max-depth"))
	viper.BindPFlag("engine.step_limit", queryCmd.Flags().Lookup("step-limit"))
	viper.BindPFlag("engine.distinct", queryCmd.Flags().Lookup("distinct"))

	rootCmd.AddCommand(queryCmd)
}
