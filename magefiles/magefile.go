// Package main contains Mage build targets for fol-reasoner developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI expects.
var projectDirs = []string{
	"kb",
	".fol-reasoner",
}

const sampleKB = `% SmartHome example knowledge base
Room(kitchen).
Room(bedroom).
Temperature(kitchen, 30).
Temperature(bedroom, 20).

NeedsCooling(X) :- Room(X), Temperature(X, T), GreaterThan(T, 25).
`

// Init creates the project directories and a sample knowledge base.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	sample := filepath.Join("kb", "smarthome.fol")
	if _, err := os.Stat(sample); os.IsNotExist(err) {
		if err := os.WriteFile(sample, []byte(sampleKB), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", sample, err)
		}
		fmt.Println("  ", sample)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "fol-reasoner"
	cmdPkg  = "./cmd/fol-reasoner"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs go vet over every package.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs Lint and Test.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Stats prints project metrics: Go production/test LOC and the clause count
// of the knowledge bases under kb/.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	files, clauses, err := countClauses("kb")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Knowledge bases (kb/):          %d files, %d clauses\n", files, clauses)
	return nil
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		n, err := countLines(path, func(line string) bool { return line != "" })
		total += n
		return err
	})
	return total, err
}

// countClauses counts the clause-notation files under root and the
// statements they hold, taking every line that ends a statement with a period.
func countClauses(root string) (files, clauses int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || (filepath.Ext(path) != ".fol" && filepath.Ext(path) != ".pl") {
			return nil
		}
		files++
		n, err := countLines(path, func(line string) bool {
			return !strings.HasPrefix(line, "%") && strings.HasSuffix(line, ".")
		})
		clauses += n
		return err
	})
	return files, clauses, err
}

// countLines counts the trimmed lines of path accepted by keep.
func countLines(path string, keep func(string) bool) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if keep(strings.TrimSpace(sc.Text())) {
			n++
		}
	}
	return n, sc.Err()
}
