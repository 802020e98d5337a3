//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract builds the CLI and extracts property records from every document
// in documents/ into knowledge/extracted/.
func Extract() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "extract")
}
