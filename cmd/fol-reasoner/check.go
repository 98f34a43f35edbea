// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fol-reasoner/internal/builtin"
	"github.com/pdiddy/fol-reasoner/internal/kb"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate a knowledge base",
	Long: `Check loads the knowledge base from --kb sources or --store, validates
every clause, and prints one row per predicate with its fact and rule counts.
Body goals that name neither a defined predicate nor a builtin are listed as
undefined; they can never be proved.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	k, err := knowledgeBaseFromFlags(ctx, cmd)
	if err != nil {
		return err
	}
	printSignatures(cmd.OutOrStdout(), k, builtin.Default())
	return nil
}

// printSignatures writes the predicate table and any undefined goals.
func printSignatures(w io.Writer, k *kb.KnowledgeBase, builtins *builtin.Registry) {
	fmt.Fprintf(w, "%-30s  %6s  %6s\n", "Predicate", "Facts", "Rules")
	fmt.Fprintln(w, strings.Repeat("-", 46))
	for _, sig := range k.Signatures() {
		var facts, rules int
		for _, c := range k.LookupSig(sig) {
			if c.IsFact() {
				facts++
			} else {
				rules++
			}
		}
		fmt.Fprintf(w, "%-30s  %6d  %6d\n", sig, facts, rules)
	}

	st := k.Stats()
	fmt.Fprintf(w, "\n%d clauses: %d facts, %d rules, %d predicates\n",
		k.Len(), st.Facts, st.Rules, st.Predicates)

	if undefined := undefinedGoals(k, builtins); len(undefined) > 0 {
		fmt.Fprintln(w, "\nundefined:")
		for _, sig := range undefined {
			fmt.Fprintf(w, "  %s\n", sig)
		}
	}
}

// undefinedGoals returns the signatures called from rule bodies that have
// neither clauses nor a builtin, in first-use order.
func undefinedGoals(k *kb.KnowledgeBase, builtins *builtin.Registry) []kb.Signature {
	seen := make(map[kb.Signature]bool)
	var out []kb.Signature
	for _, c := range k.Clauses() {
		for _, g := range c.Body {
			sig, ok := kb.SignatureOf(g)
			if !ok || seen[sig] {
				continue
			}
			seen[sig] = true
			if _, ok := builtins.Lookup(sig); !ok && len(k.LookupSig(sig)) == 0 {
				out = append(out, sig)
			}
		}
	}
	return out
}

func init() {
	checkCmd.Flags().StringSlice("kb", nil, "knowledge base file or URL (repeatable)")
	checkCmd.Flags().String("store", "", "name of a stored knowledge base")

	rootCmd.AddCommand(checkCmd)
}
