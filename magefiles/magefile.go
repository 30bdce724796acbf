//go:build mage

// Package main contains Mage build targets for whistle-consult developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "whistle-consult"
	cmdPkg  = "./cmd/whistle-consult"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	// go-sqlite3 needs cgo.
	env := map[string]string{"CGO_ENABLED": "1"}
	if err := sh.RunWithV(env, "go", "build",
		"-ldflags", "-X main.version="+version,
		"-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Corpus checks the built-in corpus and writes a SQLite term index to
// bin/corpus-index.db for inspection.
func Corpus() error {
	mg.Deps(Build)
	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "knowledge", "validate"); err != nil {
		return err
	}
	return sh.RunV(bin, "knowledge", "export", "--format", "sqlite", "--out", filepath.Join(binDir, "corpus-index.db"))
}

// Check runs every verification target in order.
func Check() {
	mg.SerialDeps(Vet, Test, Corpus)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}
