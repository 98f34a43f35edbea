package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Ingest builds the CLI and imports every knowledge base under kb/ into the
// local clause store.
func Ingest() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "kb", "ingest", "kb")
}

// Demo builds the CLI and runs the sample SmartHome queries.
func Demo() error {
	mg.Deps(Build, Init)
	return sh.RunV(filepath.Join(binDir, binName), "query",
		"--kb", filepath.Join("kb", "smarthome.fol"),
		"Room(R)?", "NeedsCooling(X)?", "GreaterThan(29, 25)?",
	)
}
