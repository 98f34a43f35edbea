// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fol-reasoner/internal/kbfile"
	"github.com/pdiddy/fol-reasoner/internal/parse"
	"github.com/pdiddy/fol-reasoner/internal/store"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the clause store (ingest, list, show, export)",
	Long: `Kb manages a local SQLite store of knowledge bases. Ingest a directory
of knowledge base files once, then query entries by name with
"query --store NAME".`,
}

// --- ingest subcommand ---

var kbIngestCmd = &cobra.Command{
	Use:   "ingest DIR",
	Short: "Import every knowledge base file in a directory",
	Long: `Ingest reads the .fol, .pl, .yaml, .yml, and .json files in DIR and
stores each as a knowledge base named after the file. Unchanged files are
skipped on subsequent runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBIngest,
}

func runKBIngest(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(commandContext(cmd), args[0], cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed to load", summary.Failed)
	}
	return nil
}

// --- put subcommand ---

var kbPutCmd = &cobra.Command{
	Use:   "put NAME SOURCE...",
	Short: "Store knowledge base files or URLs under a name",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runKBPut,
}

func runKBPut(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	name, sources := args[0], args[1:]

	k, err := newLoader().LoadKB(ctx, sources...)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Put(ctx, name, strings.Join(sources, ","), k.Clauses()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%d clauses)\n", name, k.Len())
	return nil
}

// --- list subcommand ---

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored knowledge bases",
	Args:  cobra.NoArgs,
	RunE:  runKBList,
}

func runKBList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	infos, err := s.List(commandContext(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No knowledge bases stored.")
		return nil
	}
	fmt.Fprintf(out, "%-20s  %7s  %s\n", "Name", "Clauses", "Source")
	fmt.Fprintln(out, strings.Repeat("-", 70))
	for _, info := range infos {
		fmt.Fprintf(out, "%-20s  %7d  %s\n", info.Name, info.Clauses, info.Source)
	}
	return nil
}

// --- show subcommand ---

var kbShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print the clauses of a stored knowledge base",
	Long: `Show prints a stored knowledge base in clause notation. Use --pred
Name/Arity (or just Name) to print only the clauses defining one predicate.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBShow,
}

func runKBShow(cmd *cobra.Command, args []string) error {
	pred, _ := cmd.Flags().GetString("pred")
	opts, err := findOptions(args[0], pred)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	if _, err := s.Info(ctx, args[0]); err != nil {
		return err
	}
	clauses, err := s.Find(ctx, opts)
	if err != nil {
		return err
	}
	for _, c := range clauses {
		fmt.Fprintln(cmd.OutOrStdout(), parse.Format(c))
	}
	return nil
}

// findOptions parses a "Name/Arity" or "Name" predicate filter.
func findOptions(name, pred string) (store.FindOptions, error) {
	opts := store.FindOptions{KB: name, Arity: store.AnyArity}
	if pred == "" {
		return opts, nil
	}
	functor, arity, found := strings.Cut(pred, "/")
	opts.Functor = functor
	if found {
		n, err := strconv.Atoi(arity)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid predicate %q: want Name/Arity", pred)
		}
		opts.Arity = n
	}
	return opts, nil
}

// --- export subcommand ---

var kbExportCmd = &cobra.Command{
	Use:   "export NAME",
	Short: "Export a stored knowledge base as clause text, YAML, or JSON",
	Long: `Export writes a stored knowledge base to stdout, or to DIR/NAME.<format>
when --out is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBExport,
}

func runKBExport(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	f, err := kbfile.ParseFormat(formatName)
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("out")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	if outDir == "" {
		return s.Export(ctx, args[0], f, cmd.OutOrStdout())
	}
	path, err := s.ExportFile(ctx, args[0], f, outDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- rm subcommand ---

var kbRmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Remove a stored knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		return s.Delete(commandContext(cmd), args[0])
	},
}

// --- shared helpers ---

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	kbListCmd.Flags().Bool("json", false, "output as JSON")
	kbShowCmd.Flags().String("pred", "", "only clauses of this predicate (Name/Arity or Name)")
	kbExportCmd.Flags().String("format", "yaml", "export format: fol, yaml, or json")
	kbExportCmd.Flags().String("out", "", "write NAME.<format> into this directory instead of stdout")

	kbCmd.AddCommand(kbIngestCmd)
	kbCmd.AddCommand(kbPutCmd)
	kbCmd.AddCommand(kbListCmd)
	kbCmd.AddCommand(kbShowCmd)
	kbCmd.AddCommand(kbExportCmd)
	kbCmd.AddCommand(kbRmCmd)

	rootCmd.AddCommand(kbCmd)
}
