//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the engine with validation layers and debug shaders.
func (Run) Debug() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run engine (debug)...")
	_, err := executeCmd("go", withArgs("run", "-tags", "debug", "."), withStream())
	return err
}

// Runs the engine with release shaders.
func (Run) Release() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run engine...")
	_, err := executeCmd("go", withArgs("run", "."), withStream())
	return err
}
