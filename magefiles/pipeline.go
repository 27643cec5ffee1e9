//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Process runs the full pipeline over every PDF in input/.
func Process() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "process")
}

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// History shows recent runs from the processing ledger.
func History() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "history")
}
