//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Store ingests extracted records into the SQLite record store.
func Store() error {
	mg.Deps(Extract)
	return sh.RunV(binPath(), "knowledge", "store")
}

// Serve runs the HTTP extraction service on the default address.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "serve")
}
