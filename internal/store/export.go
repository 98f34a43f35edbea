// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/fol-reasoner/internal/kbfile"
)

// Export writes the knowledge base name to w in format f.
func (s *Store) Export(ctx context.Context, name string, f kbfile.Format, w io.Writer) error {
	clauses, err := s.Clauses(ctx, name)
	if err != nil {
		return err
	}
	if err := kbfile.Encode(w, f, name, clauses); err != nil {
		return fmt.Errorf("exporting %s: %w", name, err)
	}
	return nil
}

// ExportFile writes the knowledge base name to dir/name.<ext> and returns the
// path written.
func (s *Store) ExportFile(ctx context.Context, name string, f kbfile.Format, dir string) (string, error) {
	if dir == "" {
		dir = filepath.Join(s.dir, "export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, name+"."+string(f))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := s.Export(ctx, name, f, out); err != nil {
		out.Close()
		return "", err
	}
	return path, out.Close()
}
