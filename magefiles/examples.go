//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Examples mg.Namespace

// Builds every example into bin/.
func (Examples) Build() error {
	dirs, err := exampleDirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		out := filepath.Join("bin", filepath.Base(dir))
		if err := sh.RunV("go", "build", "-o", out, "./"+dir); err != nil {
			return fmt.Errorf("build %s: %w", dir, err)
		}
	}
	return nil
}

// Replays the batching example's touch script and exits.
func (Examples) Replay() error {
	mg.Deps(Examples.Build)
	return sh.RunV(filepath.Join("bin", "batching"), "-script", "examples/batching/taps.toml")
}

func exampleDirs() ([]string, error) {
	entries, err := os.ReadDir("examples")
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join("examples", e.Name()))
		}
	}
	return dirs, nil
}
