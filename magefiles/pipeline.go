//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// cli runs the built statute-engine binary with the given arguments.
func cli(args ...string) error {
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Fetch downloads the catalog sources into documents/.
func Fetch() error {
	mg.Deps(Build)
	return cli("fetch")
}

// Convert converts every text document under documents/txt/ to JSON.
func Convert() error {
	mg.Deps(Build)
	return cli("convert", "--batch")
}

// Ingest loads converted documents into the statute index.
func Ingest() error {
	mg.Deps(Build)
	return cli("index", "ingest")
}

// Export writes the statute index to index/export.yaml.
func Export() error {
	mg.Deps(Build)
	return cli("index", "export")
}
