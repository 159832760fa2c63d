//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Test mg.Namespace

// Runs the unit tests of every package.
func (Test) Unit() error {
	return sh.RunV("go", "test", "./...")
}

// Runs the tests with the race detector.
func (Test) Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Runs the benchmarks of the root package.
func (Test) Bench() error {
	return sh.RunV("go", "test", "-run", "^$", "-bench", ".", "-benchmem", ".")
}

// Runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}
