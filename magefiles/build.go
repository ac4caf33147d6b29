//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const (
	shaderSrcDir = "shaders"
	shaderOutDir = "assets/shaders"
	binaryName   = "trigon"
)

var shaderStages = []string{"triangle.vert", "triangle.frag"}

// Compiles the GLSL stages into debug (-O0 -g) and release (-O) SPIR-V.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the binary with validation layers and debug shaders.
func (Build) Debug() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-tags", "debug", "-o", binaryName, "."), withStream())
	return err
}

// Builds the binary with optimized shaders and no validation.
func (Build) Release() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", binaryName, "."), withStream())
	return err
}

func buildShaders() error {
	if err := os.MkdirAll(shaderOutDir, 0o755); err != nil {
		return err
	}
	for _, stage := range shaderStages {
		src := filepath.Join(shaderSrcDir, stage)
		ext := filepath.Ext(stage)
		base := stage[:len(stage)-len(ext)]

		debugOut := filepath.Join(shaderOutDir, fmt.Sprintf("%s_debug%s.spv", base, ext))
		if _, err := executeCmd("glslc", withArgs("-O0", "-g", src, "-o", debugOut), withStream()); err != nil {
			return err
		}
		releaseOut := filepath.Join(shaderOutDir, fmt.Sprintf("%s_release%s.spv", base, ext))
		if _, err := executeCmd("glslc", withArgs("-O", src, "-o", releaseOut), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Runs the test suite.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}
