// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"
	"io"

	"github.com/pdiddy/fol-reasoner/internal/kb"
)

// Format renders c in the notation Parse reads.
func Format(c kb.Clause) string {
	return c.String()
}

// Write writes clauses one per line, grouping them under a comment that
// names their source file whenever the file changes.
func Write(w io.Writer, clauses []kb.Clause) error {
	file := ""
	for i, c := range clauses {
		if c.Source.File != file {
			file = c.Source.File
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%% %s\n", file); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, Format(c)); err != nil {
			return err
		}
	}
	return nil
}
